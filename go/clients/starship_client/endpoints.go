package starship_client

import "fmt"

const (
	// Base URL
	DefaultBaseURL = "http://localhost:9000"

	// API Endpoints
	StateEndpoint = "/state"
)

// ConnectEndpoint patches wire into port of bay.
func ConnectEndpoint(wire, port, bay int) string {
	return fmt.Sprintf("/connect/wire/%d/port/%d/bay/%d", wire, port, bay)
}

// DisconnectEndpoint unpatches port of bay.
func DisconnectEndpoint(port, bay int) string {
	return fmt.Sprintf("/disconnect/port/%d/bay/%d", port, bay)
}

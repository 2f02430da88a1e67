package dashboard

import (
	"encoding/json"

	"github.com/mcdev12/starship-console/go/internal/console"
	"github.com/mcdev12/starship-console/go/internal/ports"
	"github.com/mcdev12/starship-console/go/internal/statesync"
)

// MessageType tags every frame pushed to dashboard clients.
type MessageType string

const (
	MessageTypeView  MessageType = "view"
	MessageTypeAck   MessageType = "ack"
	MessageTypeError MessageType = "error"
)

// Message is the envelope written to the socket.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// AckPayload answers an operator request.
type AckPayload struct {
	Request console.OperatorRequest `json:"request"`
	Command ports.Command           `json:"command"`
	Outcome statesync.Outcome       `json:"outcome"`
}

// ErrorPayload reports a rejected operator request.
type ErrorPayload struct {
	Error string `json:"error"`
}

func encodeMessage(messageType MessageType, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: messageType, Data: data})
}

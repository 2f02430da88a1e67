package starship_client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mcdev12/starship-console/go/clients"
)

// StarshipClient talks to the game server. Every endpoint answers with the
// complete game state as JSON.
type StarshipClient struct {
	*clients.BaseClient
	commandMethod string
}

func NewStarshipClient(baseURL, commandMethod string) (*StarshipClient, error) {
	method := strings.ToUpper(commandMethod)
	switch method {
	case "":
		method = http.MethodGet
	case http.MethodGet, http.MethodPost:
	default:
		return nil, fmt.Errorf("unsupported command method %q", commandMethod)
	}

	client := &StarshipClient{
		BaseClient:    clients.NewBaseClient(baseURL),
		commandMethod: method,
	}
	client.SetHeader("Accept", "application/json")

	return client, nil
}

// FetchState returns the raw body of the state resource.
func (c *StarshipClient) FetchState(ctx context.Context) ([]byte, error) {
	body, err := c.Get(ctx, StateEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return body, nil
}

// SendCommand issues a connect or disconnect request and returns the raw body.
func (c *StarshipClient) SendCommand(ctx context.Context, endpoint string) ([]byte, error) {
	body, err := c.MakeRequest(ctx, c.commandMethod, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send command %s: %w", endpoint, err)
	}
	return body, nil
}

package starship_client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoints(t *testing.T) {
	assert.Equal(t, "/connect/wire/2/port/1/bay/0", ConnectEndpoint(2, 1, 0))
	assert.Equal(t, "/disconnect/port/3/bay/4", DisconnectEndpoint(3, 4))
}

func TestStarshipClient(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bays":[],"gameOver":false,"score":1}`))
	}))
	defer srv.Close()

	tests := []struct {
		name       string
		method     string
		wantMethod string
	}{
		{name: "default method", method: "", wantMethod: http.MethodGet},
		{name: "post", method: "post", wantMethod: http.MethodPost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewStarshipClient(srv.URL, tt.method)
			require.NoError(t, err)

			body, err := c.FetchState(context.Background())
			require.NoError(t, err)
			assert.Equal(t, http.MethodGet, gotMethod)
			assert.Equal(t, "/state", gotPath)
			assert.JSONEq(t, `{"bays":[],"gameOver":false,"score":1}`, string(body))

			_, err = c.SendCommand(context.Background(), ConnectEndpoint(0, 1, 2))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, gotMethod)
			assert.Equal(t, "/connect/wire/0/port/1/bay/2", gotPath)
		})
	}
}

func TestNewStarshipClient_RejectsMethod(t *testing.T) {
	_, err := NewStarshipClient(DefaultBaseURL, "DELETE")
	assert.Error(t, err)
}

func TestStarshipClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewStarshipClient(srv.URL, "")
	require.NoError(t, err)

	_, err = c.FetchState(context.Background())
	assert.ErrorContains(t, err, "failed to get state")
	assert.ErrorContains(t, err, "500")
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/coderunr/judge/internal/types"
	"github.com/coderunr/judge/internal/validator"
)

// streamValidate validates over /api/v2/connect, reporting each test case
// as the server finishes it
func streamValidate(ctx context.Context, baseURL string, req types.ValidateRequest, observe validator.Observer) (types.Verdict, error) {
	wsURL, err := convertToWebSocketURL(baseURL)
	if err != nil {
		return types.Verdict{}, fmt.Errorf("failed to convert URL: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"/api/v2/connect", nil)
	if err != nil {
		return types.Verdict{}, fmt.Errorf("failed to connect to WebSocket: %w", err)
	}
	defer conn.Close()

	// Unblock ReadJSON when the caller gives up
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	payload, err := json.Marshal(req)
	if err != nil {
		return types.Verdict{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := conn.WriteJSON(types.WebSocketMessage{Type: "init", Payload: payload}); err != nil {
		return types.Verdict{}, fmt.Errorf("failed to send validate request: %w", err)
	}

	for {
		var msg types.WebSocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return types.Verdict{}, ctx.Err()
			}
			return types.Verdict{}, fmt.Errorf("connection closed before verdict: %w", err)
		}

		switch msg.Type {
		case "result":
			var result types.ValidationResult
			if err := json.Unmarshal(msg.Payload, &result); err != nil {
				return types.Verdict{}, fmt.Errorf("invalid result message: %w", err)
			}
			observe(result)

		case "verdict":
			var verdict types.Verdict
			if err := json.Unmarshal(msg.Payload, &verdict); err != nil {
				return types.Verdict{}, fmt.Errorf("invalid verdict message: %w", err)
			}
			return verdict, nil

		case "error":
			return types.Verdict{}, fmt.Errorf("validation error: %s", msg.Error)
		}
	}
}

func convertToWebSocketURL(httpURL string) (string, error) {
	u, err := url.Parse(httpURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}

	return u.String(), nil
}

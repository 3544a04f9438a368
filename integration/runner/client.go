package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jwebster45206/mud-engine/internal/handlers"
	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/engine"
)

func send(ctx context.Context, client *http.Client, method, u string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned %d: %s", method, u, resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func characterURL(baseURL, id string) string {
	return baseURL + "/v1/characters/" + url.PathEscape(id)
}

// CreateCharacter creates a character via POST /v1/characters.
func CreateCharacter(ctx context.Context, client *http.Client, baseURL, name string) (*actor.Character, error) {
	var c actor.Character
	err := send(ctx, client, http.MethodPost, baseURL+"/v1/characters",
		handlers.CreateCharacterRequest{Name: name}, http.StatusCreated, &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCharacter retrieves a character via GET /v1/characters/{id}.
func GetCharacter(ctx context.Context, client *http.Client, baseURL, id string) (*actor.Character, error) {
	var c actor.Character
	if err := send(ctx, client, http.MethodGet, characterURL(baseURL, id), nil, http.StatusOK, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCharacter removes a character via DELETE /v1/characters/{id}.
func DeleteCharacter(ctx context.Context, client *http.Client, baseURL, id string) error {
	return send(ctx, client, http.MethodDelete, characterURL(baseURL, id), nil, http.StatusNoContent, nil)
}

// PostCommand runs one command via POST /v1/characters/{id}/commands.
func PostCommand(ctx context.Context, client *http.Client, baseURL, id, command string) (*engine.Result, error) {
	var res engine.Result
	err := send(ctx, client, http.MethodPost, characterURL(baseURL, id)+"/commands",
		handlers.CommandRequest{Command: command}, http.StatusOK, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

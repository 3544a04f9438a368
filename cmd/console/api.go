package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jwebster45206/mud-engine/internal/errors"
	"github.com/jwebster45206/mud-engine/internal/handlers"
	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/engine"
)

// Game is what the console needs from an engine, local or remote.
type Game interface {
	CreateCharacter(ctx context.Context, name string) (*actor.Character, error)
	GetCharacter(ctx context.Context, name string) (*actor.Character, error)
	Execute(ctx context.Context, characterID, raw string) (bool, string)
}

var (
	_ Game = (*engine.Engine)(nil)
	_ Game = (*apiClient)(nil)
)

// apiClient plays through a running API server.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(baseURL string, client *http.Client) *apiClient {
	return &apiClient{baseURL: baseURL, client: client}
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (a *apiClient) characterURL(name string, parts ...string) string {
	u := a.baseURL + "/v1/characters/" + url.PathEscape(actor.CharacterID(name))
	for _, p := range parts {
		u += "/" + p
	}
	return u
}

// do sends the request and decodes a 2xx body into out. Error bodies are
// turned back into coded errors.
func (a *apiClient) do(ctx context.Context, method, u string, in, out any) error {
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
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to send request")
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Code == "" {
			return errors.Newf(errors.CodeInternal, "API returned status %d: %s", resp.StatusCode, string(data))
		}
		return errors.New(errors.Code(errorResp.Code), errorResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (a *apiClient) CreateCharacter(ctx context.Context, name string) (*actor.Character, error) {
	var c actor.Character
	err := a.do(ctx, http.MethodPost, a.baseURL+"/v1/characters", handlers.CreateCharacterRequest{Name: name}, &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *apiClient) GetCharacter(ctx context.Context, name string) (*actor.Character, error) {
	var c actor.Character
	if err := a.do(ctx, http.MethodGet, a.characterURL(name), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Execute mirrors the engine: failures become a message, never an error.
func (a *apiClient) Execute(ctx context.Context, characterID, raw string) (bool, string) {
	var res engine.Result
	err := a.do(ctx, http.MethodPost, a.characterURL(characterID, "commands"), handlers.CommandRequest{Command: raw}, &res)
	if err != nil {
		return false, "Error: " + errors.GetMessage(err)
	}
	return res.Quit, res.Message
}

// loadOrCreate returns the named character, creating it on first play.
func loadOrCreate(ctx context.Context, game Game, name string) (*actor.Character, bool, error) {
	c, err := game.GetCharacter(ctx, name)
	if err == nil {
		return c, false, nil
	}
	if !errors.IsNotFound(err) {
		return nil, false, err
	}
	c, err = game.CreateCharacter(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

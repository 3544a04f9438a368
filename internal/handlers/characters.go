package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/mud-engine/internal/errors"
	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/engine"
)

const maxBodyBytes = 1 << 16

// Game is the part of the engine the HTTP surface needs.
type Game interface {
	CreateCharacter(ctx context.Context, name string) (*actor.Character, error)
	GetCharacter(ctx context.Context, name string) (*actor.Character, error)
	DeleteCharacter(ctx context.Context, name string) error
	ListCharacters(ctx context.Context) ([]*actor.Character, error)
	Execute(ctx context.Context, characterID, raw string) (bool, string)
}

var _ Game = (*engine.Engine)(nil)

type CharacterSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	World string `json:"world"`
	Room  string `json:"room"`
}

type CreateCharacterRequest struct {
	Name string `json:"name"`
}

type CommandRequest struct {
	Command string `json:"command"`
}

type CharacterHandler struct {
	game   Game
	logger *slog.Logger
}

func NewCharacterHandler(game Game, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{game: game, logger: logger}
}

// ServeHTTP routes:
// GET    /v1/characters                 - list characters
// POST   /v1/characters                 - create a character
// GET    /v1/characters/{name}          - read a character
// DELETE /v1/characters/{name}          - delete a character
// POST   /v1/characters/{name}/commands - run one command
func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/characters"), "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, parts[0])
		case http.MethodDelete:
			h.handleDelete(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "commands":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleCommand(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *CharacterHandler) handleList(w http.ResponseWriter, r *http.Request) {
	chars, err := h.game.ListCharacters(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	out := make([]CharacterSummary, 0, len(chars))
	for _, c := range chars {
		out = append(out, CharacterSummary{
			ID:    c.ID(),
			Name:  c.Name,
			Level: c.Stats.Level,
			World: c.World,
			Room:  c.CurrentRoom,
		})
	}
	writeJSON(w, h.logger, http.StatusOK, out)
}

func (h *CharacterHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateCharacterRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.game.CreateCharacter(r.Context(), req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("Character created via API", "character", c.ID())
	writeJSON(w, h.logger, http.StatusCreated, c)
}

func (h *CharacterHandler) handleGet(w http.ResponseWriter, r *http.Request, name string) {
	c, err := h.game.GetCharacter(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, c)
}

func (h *CharacterHandler) handleDelete(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.game.DeleteCharacter(r.Context(), name); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CharacterHandler) handleCommand(w http.ResponseWriter, r *http.Request, name string) {
	var req CommandRequest
	if !h.decode(w, r, &req) {
		return
	}
	// Resolve the character first so a missing one is a 404 rather than
	// a game message.
	c, err := h.game.GetCharacter(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	quit, msg := h.game.Execute(r.Context(), c.ID(), req.Command)
	writeJSON(w, h.logger, http.StatusOK, engine.Result{Quit: quit, Message: msg})
}

func (h *CharacterHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Warn("Invalid request body", "error", err, "path", r.URL.Path)
		writeError(w, h.logger, errors.InvalidArgument("invalid JSON body"))
		return false
	}
	return true
}

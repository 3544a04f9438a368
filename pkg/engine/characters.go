package engine

import (
	"context"

	"github.com/jwebster45206/mud-engine/internal/errors"
	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/storage"
)

// CreateCharacter stores a new character at the starting location.
func (e *Engine) CreateCharacter(ctx context.Context, name string) (*actor.Character, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := actor.CharacterID(name)
	if id == "" {
		return nil, errors.InvalidArgument("character name is required")
	}
	existing, err := e.repo.Get(ctx, storage.KindCharacter, id)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to check character")
	}
	if existing != nil {
		return nil, errors.AlreadyExistsf("character %q already exists", id)
	}

	c, err := actor.NewCharacter(name, e.startWorld, e.startRoom, e.clock.Now())
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid character")
	}
	if err := storage.Save(ctx, e.repo, storage.KindCharacter, id, c); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to save character")
	}
	e.logger.Info("character created", "character", id, "world", c.World, "room", c.CurrentRoom)
	return c, nil
}

func (e *Engine) GetCharacter(ctx context.Context, name string) (*actor.Character, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := actor.CharacterID(name)
	if id == "" {
		return nil, errors.InvalidArgument("character name is required")
	}
	c, err := e.loadCharacter(ctx, id)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to load character")
	}
	if c == nil {
		return nil, errors.NotFoundf("character %q not found", id)
	}
	return c, nil
}

func (e *Engine) DeleteCharacter(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := actor.CharacterID(name)
	if id == "" {
		return errors.InvalidArgument("character name is required")
	}
	deleted, err := e.repo.Delete(ctx, storage.KindCharacter, id)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete character")
	}
	if !deleted {
		return errors.NotFoundf("character %q not found", id)
	}
	e.logger.Info("character deleted", "character", id)
	return nil
}

// ListCharacters returns every stored character in creation order.
func (e *Engine) ListCharacters(ctx context.Context) ([]*actor.Character, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids, err := e.repo.List(ctx, storage.KindCharacter)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to list characters")
	}
	out := make([]*actor.Character, 0, len(ids))
	for _, id := range ids {
		c, err := e.loadCharacter(ctx, id)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to load character")
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// Package storage defines the entity repository: a keyed store of JSON
// records grouped by kind. Backends live here (memory) and in
// internal/storage (redis, sqlite).
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate mockgen -destination=mocks/repository.go -package=mocks -source=repository.go Repository

// Kind groups records in the repository.
type Kind string

const (
	KindItem      Kind = "item"
	KindNPC       Kind = "npc"
	KindMob       Kind = "mob"
	KindCharacter Kind = "character"
)

// Kinds lists every kind in seeding order.
var Kinds = []Kind{KindItem, KindNPC, KindMob, KindCharacter}

// Repository is a keyed record store. Get returns nil, nil when the record
// does not exist. List returns ids in first-insertion order; re-putting an
// existing id keeps its position.
type Repository interface {
	Ping(ctx context.Context) error
	Close() error

	Get(ctx context.Context, kind Kind, id string) ([]byte, error)
	List(ctx context.Context, kind Kind) ([]string, error)
	Put(ctx context.Context, kind Kind, id string, record []byte) error
	Delete(ctx context.Context, kind Kind, id string) (bool, error)
}

// Load decodes a record into a new T. It returns nil, nil when absent.
func Load[T any](ctx context.Context, repo Repository, kind Kind, id string) (*T, error) {
	data, err := repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %q: %w", kind, id, err)
	}
	return &v, nil
}

// Save encodes v and puts it under kind/id.
func Save(ctx context.Context, repo Repository, kind Kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %q: %w", kind, id, err)
	}
	return repo.Put(ctx, kind, id, data)
}

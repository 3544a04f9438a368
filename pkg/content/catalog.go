package content

import (
	"context"

	"github.com/jwebster45206/mud-engine/internal/errors"
	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/item"
	"github.com/jwebster45206/mud-engine/pkg/storage"
)

// Catalog holds the immutable templates the game runs against.
type Catalog struct {
	items    item.Index
	npcs     map[string]*actor.NPC
	mobs     map[string]*actor.Mob
	mobOrder []string
}

var _ item.Catalog = (*Catalog)(nil)

// NewCatalog builds a catalog from templates. Mob order is kept for
// room listings.
func NewCatalog(items []*item.Item, npcs []*actor.NPC, mobs []*actor.Mob) *Catalog {
	c := &Catalog{
		items: make(item.Index, len(items)),
		npcs:  make(map[string]*actor.NPC, len(npcs)),
		mobs:  make(map[string]*actor.Mob, len(mobs)),
	}
	for _, it := range items {
		c.items[it.ID] = it
	}
	for _, n := range npcs {
		c.npcs[n.ID] = n
	}
	for _, m := range mobs {
		if _, dup := c.mobs[m.ID]; !dup {
			c.mobOrder = append(c.mobOrder, m.ID)
		}
		c.mobs[m.ID] = m
	}
	return c
}

// LoadCatalog reads every item, NPC and mob template from the repository.
func LoadCatalog(ctx context.Context, repo storage.Repository) (*Catalog, error) {
	items, err := loadAll[item.Item](ctx, repo, storage.KindItem)
	if err != nil {
		return nil, err
	}
	npcs, err := loadAll[actor.NPC](ctx, repo, storage.KindNPC)
	if err != nil {
		return nil, err
	}
	mobs, err := loadAll[actor.Mob](ctx, repo, storage.KindMob)
	if err != nil {
		return nil, err
	}
	return NewCatalog(items, npcs, mobs), nil
}

func loadAll[T any](ctx context.Context, repo storage.Repository, kind storage.Kind) ([]*T, error) {
	ids, err := repo.List(ctx, kind)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s records", kind)
	}
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		v, err := storage.Load[T](ctx, repo, kind, id)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s %q", kind, id)
		}
		if v == nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Catalog) Item(id string) (*item.Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

func (c *Catalog) NPC(id string) (*actor.NPC, bool) {
	n, ok := c.npcs[id]
	return n, ok
}

func (c *Catalog) Mob(id string) (*actor.Mob, bool) {
	m, ok := c.mobs[id]
	return m, ok
}

// MobsIn returns the templates whose spawn areas include roomID, in
// catalog order.
func (c *Catalog) MobsIn(roomID string) []*actor.Mob {
	var out []*actor.Mob
	for _, id := range c.mobOrder {
		if m := c.mobs[id]; m.SpawnsIn(roomID) {
			out = append(out, m)
		}
	}
	return out
}

// Counts reports the number of templates per kind.
func (c *Catalog) Counts() map[storage.Kind]int {
	return map[storage.Kind]int{
		storage.KindItem: len(c.items),
		storage.KindNPC:  len(c.npcs),
		storage.KindMob:  len(c.mobs),
	}
}

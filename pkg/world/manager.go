package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/clock"
	"github.com/jwebster45206/mud-engine/pkg/item"
)

const DefaultEnhanceTimeout = 3 * time.Second

// Catalog is the template lookup the world needs.
type Catalog interface {
	item.Catalog
	NPC(id string) (*actor.NPC, bool)
	MobsIn(roomID string) []*actor.Mob
}

type Config struct {
	Source         Source
	Catalog        Catalog
	Clock          clock.Clock
	Enhancer       Enhancer
	EnhanceTimeout time.Duration
	Logger         *slog.Logger
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is required")
	}
	if c.Source == nil {
		return errors.New("source is required")
	}
	if c.Catalog == nil {
		return errors.New("catalog is required")
	}
	return nil
}

// Manager caches loaded worlds and owns their mutable room item lists.
type Manager struct {
	mu             sync.Mutex
	source         Source
	catalog        Catalog
	clock          clock.Clock
	enhancer       Enhancer
	enhanceTimeout time.Duration
	logger         *slog.Logger
	worlds         map[string]*World
}

func NewManager(cfg *Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		source:         cfg.Source,
		catalog:        cfg.Catalog,
		clock:          cfg.Clock,
		enhancer:       cfg.Enhancer,
		enhanceTimeout: cfg.EnhanceTimeout,
		logger:         cfg.Logger,
		worlds:         make(map[string]*World),
	}
	if m.clock == nil {
		m.clock = clock.New()
	}
	if m.enhancer == nil {
		m.enhancer = NopEnhancer{}
	}
	if m.enhanceTimeout <= 0 {
		m.enhanceTimeout = DefaultEnhanceTimeout
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m, nil
}

// LoadWorld returns the cached world, loading it on first use. A world
// without a file becomes an empty world.
func (m *Manager) LoadWorld(name string) (*World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(name)
}

func (m *Manager) loadLocked(name string) (*World, error) {
	if w, ok := m.worlds[name]; ok {
		return w, nil
	}
	rooms, err := m.source.Load(name)
	if errors.Is(err, ErrWorldNotFound) {
		m.logger.Warn("world not found, creating empty world", "world", name)
		rooms, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load world %q: %w", name, err)
	}
	w := newWorld(name, rooms)
	m.worlds[name] = w
	m.logger.Debug("world loaded", "world", name, "rooms", len(w.Rooms))
	return w, nil
}

// ChangeWorld loads the target world and points the character at it.
func (m *Manager) ChangeWorld(c *actor.Character, name string) error {
	if _, err := m.LoadWorld(name); err != nil {
		return err
	}
	c.World = name
	return nil
}

// room looks up a room, loading its world if needed. Callers hold mu.
func (m *Manager) room(worldName, roomID string) (*World, *Room) {
	w, err := m.loadLocked(worldName)
	if err != nil {
		m.logger.Error("world unavailable", "world", worldName, "error", err)
		return nil, nil
	}
	r, _ := w.Room(roomID)
	return w, r
}

// HasRoom reports whether the room exists in the world.
func (m *Manager) HasRoom(worldName, roomID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, r := m.room(worldName, roomID)
	return r != nil
}

// ResolveExit finds the exit in direction. Matching is case-insensitive.
func (m *Manager) ResolveExit(worldName, roomID, direction string) (Exit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, r := m.room(worldName, roomID)
	if r == nil {
		return Exit{}, false
	}
	e, ok := r.Exits[strings.ToLower(direction)]
	return e, ok
}

// CheckTransitionRequirements returns false and a reason when the
// character does not meet req.
func (m *Manager) CheckTransitionRequirements(c *actor.Character, req *Requirements) (bool, string) {
	if req == nil {
		return true, ""
	}
	if req.Level > 0 && c.Stats.Level < req.Level {
		return false, fmt.Sprintf("You need to be level %d to use this portal.", req.Level)
	}
	if req.Item != "" && !c.HasItem(req.Item) {
		return false, fmt.Sprintf("You need %s to use this portal.", item.ShortDesc(m.catalog, req.Item))
	}
	return true, ""
}

// RoomItems applies the character's pending respawns for the room and
// returns a copy of its item list.
func (m *Manager) RoomItems(c *actor.Character, roomID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, r := m.room(c.World, roomID)
	if r == nil {
		return nil
	}
	m.respawnLocked(w, r, c)
	return slices.Clone(r.Items)
}

func (m *Manager) RoomNPCs(worldName, roomID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, r := m.room(worldName, roomID)
	if r == nil {
		return nil
	}
	return slices.Clone(r.NPCs)
}

// RoomMobs returns the mob templates spawning in the room that the
// character has not defeated there.
func (m *Manager) RoomMobs(c *actor.Character, roomID string) []*actor.Mob {
	var out []*actor.Mob
	for _, mob := range m.catalog.MobsIn(roomID) {
		if !c.IsMobDefeated(roomID, mob.ID) {
			out = append(out, mob)
		}
	}
	return out
}

func (m *Manager) AddItemToRoom(worldName, roomID, itemID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, r := m.room(worldName, roomID)
	if r == nil {
		return false
	}
	r.Items = append(r.Items, itemID)
	return true
}

// RemoveItemFromRoom removes one instance of the item from the character's
// current world. Respawnable items leave a ticket on the character.
func (m *Manager) RemoveItemFromRoom(c *actor.Character, roomID, itemID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, r := m.room(c.World, roomID)
	if r == nil {
		return false
	}
	i := slices.Index(r.Items, itemID)
	if i < 0 {
		return false
	}
	r.Items = slices.Delete(r.Items, i, i+1)

	if it, ok := m.catalog.Item(itemID); ok && it.Properties.Respawnable {
		if c.WorldState.RemovedItems == nil {
			c.WorldState.RemovedItems = make(map[string]actor.RemovalRecord)
		}
		c.WorldState.RemovedItems[itemID] = actor.RemovalRecord{
			Room:      roomID,
			World:     w.Name,
			RemovedAt: m.clock.Now(),
		}
	}
	return true
}

// CheckItemRespawn puts back every item whose ticket for this room has
// expired.
func (m *Manager) CheckItemRespawn(c *actor.Character, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, r := m.room(c.World, roomID)
	if r == nil {
		return
	}
	m.respawnLocked(w, r, c)
}

func (m *Manager) respawnLocked(w *World, r *Room, c *actor.Character) {
	if len(c.WorldState.RemovedItems) == 0 {
		return
	}
	now := m.clock.Now()
	ids := slices.Sorted(maps.Keys(c.WorldState.RemovedItems))
	for _, id := range ids {
		rec := c.WorldState.RemovedItems[id]
		if rec.Room != r.ID || rec.World != w.Name {
			continue
		}
		it, ok := m.catalog.Item(id)
		if !ok || !it.Properties.Respawnable {
			continue
		}
		if now.Sub(rec.RemovedAt) >= it.RespawnDelay() {
			r.Items = append(r.Items, id)
			delete(c.WorldState.RemovedItems, id)
		}
	}
}

// Describe assembles the room text for the character. Only the base text
// is passed through the enhancer.
func (m *Manager) Describe(ctx context.Context, c *actor.Character, roomID string) string {
	m.mu.Lock()
	w, r := m.room(c.World, roomID)
	if r == nil {
		m.mu.Unlock()
		return "Error: Room not found"
	}
	m.respawnLocked(w, r, c)
	base, roomType := r.LongDesc, r.Type

	var b strings.Builder
	var normal, special []string
	for _, dir := range r.Directions() {
		e := r.Exits[dir]
		if e.Kind == ExitTransition {
			special = append(special, fmt.Sprintf("%s (%s)", dir, e.Description))
		} else {
			normal = append(normal, dir)
		}
	}
	if len(r.Exits) == 0 {
		b.WriteString("\nThere are no obvious exits.")
	}
	if len(normal) > 0 {
		b.WriteString("\nExits: " + strings.Join(normal, ", "))
	}
	if len(special) > 0 {
		b.WriteString("\nSpecial exits: " + strings.Join(special, ", "))
	}

	var seen []string
	for _, id := range r.Items {
		if it, ok := m.catalog.Item(id); ok {
			seen = append(seen, it.ShortDesc)
		}
	}
	if len(seen) > 0 {
		b.WriteString("\nYou see: " + strings.Join(seen, ", "))
	}

	var present []string
	for _, id := range r.NPCs {
		if npc, ok := m.catalog.NPC(id); ok {
			present = append(present, fmt.Sprintf("%s (%s)", npc.Name, npc.ShortDesc))
		}
	}
	if len(present) > 0 {
		b.WriteString("\nPresent here: " + strings.Join(present, ", "))
	}
	worldName := w.Name
	m.mu.Unlock()

	var enemies []string
	for _, mob := range m.RoomMobs(c, roomID) {
		enemies = append(enemies, mob.ShortDesc)
	}
	if len(enemies) > 0 {
		b.WriteString("\nEnemies here: " + strings.Join(enemies, ", "))
	}

	return m.enhance(ctx, base, EnhanceContext{
		TimeOfDay: TimeOfDay(m.clock.Now()),
		RoomType:  roomType,
		WorldName: DisplayName(worldName),
	}) + b.String()
}

func (m *Manager) enhance(ctx context.Context, text string, ec EnhanceContext) string {
	ctx, cancel := context.WithTimeout(ctx, m.enhanceTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		t, err := m.enhancer.Enhance(ctx, text, ec)
		done <- result{t, err}
	}()

	select {
	case res := <-done:
		if res.err == nil && ctx.Err() != nil {
			res.err = ctx.Err()
		}
		if res.err != nil {
			m.logger.Debug("enhancement failed, using original text", "error", res.err)
			return text
		}
		if strings.TrimSpace(res.text) == "" {
			return text
		}
		return res.text
	case <-ctx.Done():
		m.logger.Debug("enhancement timed out, using original text", "timeout", m.enhanceTimeout)
		return text
	}
}

// Snapshot captures the item lists of every loaded world.
type Snapshot map[string]map[string][]string

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := make(Snapshot, len(m.worlds))
	for name, w := range m.worlds {
		rooms := make(map[string][]string, len(w.Rooms))
		for _, r := range w.Rooms {
			rooms[r.ID] = slices.Clone(r.Items)
		}
		s[name] = rooms
	}
	return s
}

// Restore puts item lists back to a snapshot. Worlds loaded after the
// snapshot was taken are dropped from the cache and reload fresh.
func (m *Manager) Restore(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, w := range m.worlds {
		rooms, ok := s[name]
		if !ok {
			delete(m.worlds, name)
			continue
		}
		for _, r := range w.Rooms {
			r.Items = slices.Clone(rooms[r.ID])
		}
	}
}

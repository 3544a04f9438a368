package world

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/clock"
	"github.com/jwebster45206/mud-engine/pkg/content"
	"github.com/jwebster45206/mud-engine/pkg/item"
)

var start = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testCatalog() *content.Catalog {
	return content.NewCatalog(
		[]*item.Item{
			{ID: "potion", ShortDesc: "a healing potion", Properties: item.Properties{Type: item.Consumable, Respawnable: true, RespawnTime: 10}},
			{ID: "sword", ShortDesc: "a short sword", Properties: item.Properties{Type: item.Weapon, Weight: 5}},
			{ID: "spirit_amulet", ShortDesc: "a glowing amulet", Properties: item.Properties{Type: item.Amulet}},
		},
		[]*actor.NPC{{ID: "smith", Name: "Brom", ShortDesc: "a burly blacksmith"}},
		[]*actor.Mob{{ID: "wolf", Name: "Grey Wolf", ShortDesc: "a grey wolf", SpawnAreas: []string{"path"}}},
	)
}

func testSource() StaticSource {
	return StaticSource{
		"default": {
			{
				ID:       "clearing",
				LongDesc: "A quiet forest clearing.",
				Type:     "forest",
				Exits: map[string]Exit{
					"north": {Kind: ExitRoom, Target: "path"},
					"portal": {Kind: ExitTransition, TargetWorld: "spirit_realm", Target: "spirit_gate",
						Description: "A shimmering rift", Requirements: &Requirements{Level: 3}},
				},
			},
			{
				ID:       "path",
				LongDesc: "A narrow path.",
				Exits:    map[string]Exit{"South": {Kind: ExitRoom, Target: "clearing"}, "east": {Kind: ExitRoom, Target: "camp"}},
				Items:    []string{"potion", "sword"},
				NPCs:     []string{"smith"},
			},
			{
				ID:       "camp",
				LongDesc: "An abandoned camp.",
				Exits:    map[string]Exit{"west": {Kind: ExitRoom, Target: "path"}},
			},
		},
		"spirit_realm": {
			{ID: "spirit_gate", LongDesc: "Mist everywhere."},
		},
	}
}

func newTestManager(t *testing.T, opts ...func(*Config)) (*Manager, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(start)
	cfg := &Config{Source: testSource(), Catalog: testCatalog(), Clock: fake}
	for _, o := range opts {
		o(cfg)
	}
	m, err := NewManager(cfg)
	require.NoError(t, err)
	return m, fake
}

func newChar(t *testing.T, room string) *actor.Character {
	t.Helper()
	c, err := actor.NewCharacter("Aria", "default", room, start)
	require.NoError(t, err)
	return c
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(nil)
	assert.Error(t, err)
	_, err = NewManager(&Config{Catalog: testCatalog()})
	assert.Error(t, err)
	_, err = NewManager(&Config{Source: testSource()})
	assert.Error(t, err)
}

func TestLoadWorld(t *testing.T) {
	m, _ := newTestManager(t)

	w, err := m.LoadWorld("default")
	require.NoError(t, err)
	assert.Len(t, w.Rooms, 3)

	again, err := m.LoadWorld("default")
	require.NoError(t, err)
	assert.Same(t, w, again)

	empty, err := m.LoadWorld("nowhere")
	require.NoError(t, err)
	assert.Empty(t, empty.Rooms)
}

type failingSource struct{ calls int }

func (f *failingSource) Load(string) ([]*Room, error) {
	f.calls++
	return nil, errors.New("corrupt file")
}

func TestLoadWorld_ErrorNotCached(t *testing.T) {
	src := &failingSource{}
	m, err := NewManager(&Config{Source: src, Catalog: testCatalog()})
	require.NoError(t, err)

	_, err = m.LoadWorld("default")
	assert.Error(t, err)
	_, err = m.LoadWorld("default")
	assert.Error(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestChangeWorld(t *testing.T) {
	m, _ := newTestManager(t)
	c := newChar(t, "clearing")

	require.NoError(t, m.ChangeWorld(c, "spirit_realm"))
	assert.Equal(t, "spirit_realm", c.World)
	assert.True(t, m.HasRoom("spirit_realm", "spirit_gate"))
}

func TestResolveExit(t *testing.T) {
	m, _ := newTestManager(t)

	e, ok := m.ResolveExit("default", "clearing", "NORTH")
	require.True(t, ok)
	assert.Equal(t, ExitRoom, e.Kind)
	assert.Equal(t, "path", e.Target)

	e, ok = m.ResolveExit("default", "path", "south")
	require.True(t, ok, "exit keys are case-insensitive")
	assert.Equal(t, "clearing", e.Target)

	e, ok = m.ResolveExit("default", "clearing", "portal")
	require.True(t, ok)
	assert.Equal(t, ExitTransition, e.Kind)
	assert.Equal(t, "spirit_realm", e.TargetWorld)
	assert.Equal(t, "spirit_gate", e.Target)

	_, ok = m.ResolveExit("default", "clearing", "west")
	assert.False(t, ok)
	_, ok = m.ResolveExit("default", "missing", "north")
	assert.False(t, ok)
}

func TestCheckTransitionRequirements(t *testing.T) {
	m, _ := newTestManager(t)
	c := newChar(t, "clearing")

	ok, reason := m.CheckTransitionRequirements(c, nil)
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = m.CheckTransitionRequirements(c, &Requirements{Level: 3})
	assert.False(t, ok)
	assert.Equal(t, "You need to be level 3 to use this portal.", reason)

	ok, reason = m.CheckTransitionRequirements(c, &Requirements{Item: "spirit_amulet"})
	assert.False(t, ok)
	assert.Equal(t, "You need a glowing amulet to use this portal.", reason)

	c.Inventory = append(c.Inventory, "spirit_amulet")
	c.Stats.Level = 3
	ok, _ = m.CheckTransitionRequirements(c, &Requirements{Level: 3, Item: "spirit_amulet"})
	assert.True(t, ok)
}

func TestItemRespawn(t *testing.T) {
	m, fake := newTestManager(t)
	c := newChar(t, "path")

	require.True(t, m.RemoveItemFromRoom(c, "path", "potion"))
	require.Contains(t, c.WorldState.RemovedItems, "potion")
	rec := c.WorldState.RemovedItems["potion"]
	assert.Equal(t, "path", rec.Room)
	assert.Equal(t, "default", rec.World)
	assert.Equal(t, start, rec.RemovedAt)

	fake.Advance(5 * time.Second)
	assert.NotContains(t, m.RoomItems(c, "path"), "potion")

	fake.Advance(6 * time.Second)
	assert.Contains(t, m.RoomItems(c, "path"), "potion")
	assert.NotContains(t, c.WorldState.RemovedItems, "potion")

	// repeated access does not duplicate
	assert.Equal(t, []string{"sword", "potion"}, m.RoomItems(c, "path"))
}

func TestItemRespawn_PerCharacter(t *testing.T) {
	m, fake := newTestManager(t)
	aria := newChar(t, "path")
	brom, err := actor.NewCharacter("Brom", "default", "path", start)
	require.NoError(t, err)

	require.True(t, m.RemoveItemFromRoom(aria, "path", "potion"))
	fake.Advance(20 * time.Second)

	assert.NotContains(t, m.RoomItems(brom, "path"), "potion", "only the taker's ticket respawns the item")
	assert.Contains(t, m.RoomItems(aria, "path"), "potion")
}

func TestRemoveItemFromRoom_NotRespawnable(t *testing.T) {
	m, _ := newTestManager(t)
	c := newChar(t, "path")

	require.True(t, m.RemoveItemFromRoom(c, "path", "sword"))
	assert.Empty(t, c.WorldState.RemovedItems)
	assert.False(t, m.RemoveItemFromRoom(c, "path", "sword"))
	assert.False(t, m.RemoveItemFromRoom(c, "missing", "sword"))
}

func TestAddItemToRoomAndNPCs(t *testing.T) {
	m, _ := newTestManager(t)
	c := newChar(t, "camp")

	assert.True(t, m.AddItemToRoom("default", "camp", "sword"))
	assert.False(t, m.AddItemToRoom("default", "missing", "sword"))
	assert.Equal(t, []string{"sword"}, m.RoomItems(c, "camp"))
	assert.Equal(t, []string{"smith"}, m.RoomNPCs("default", "path"))
	assert.Empty(t, m.RoomNPCs("default", "camp"))
}

func TestDescribe(t *testing.T) {
	m, _ := newTestManager(t)
	c := newChar(t, "path")

	got := m.Describe(context.Background(), c, "path")
	want := strings.Join([]string{
		"A narrow path.",
		"Exits: south, east",
		"You see: a healing potion, a short sword",
		"Present here: Brom (a burly blacksmith)",
		"Enemies here: a grey wolf",
	}, "\n")
	assert.Equal(t, want, got)

	c.AddDefeatedMob("wolf")
	assert.NotContains(t, m.Describe(context.Background(), c, "path"), "Enemies here")
}

func TestDescribe_Exits(t *testing.T) {
	m, _ := newTestManager(t)
	c := newChar(t, "clearing")

	got := m.Describe(context.Background(), c, "clearing")
	assert.Contains(t, got, "\nExits: north")
	assert.Contains(t, got, "\nSpecial exits: portal (A shimmering rift)")

	c.World = "spirit_realm"
	got = m.Describe(context.Background(), c, "spirit_gate")
	assert.Equal(t, "Mist everywhere.\nThere are no obvious exits.", got)

	assert.Equal(t, "Error: Room not found", m.Describe(context.Background(), c, "nope"))
}

type funcEnhancer func(ctx context.Context, text string, ec EnhanceContext) (string, error)

func (f funcEnhancer) Enhance(ctx context.Context, text string, ec EnhanceContext) (string, error) {
	return f(ctx, text, ec)
}

func TestDescribe_Enhancer(t *testing.T) {
	var got EnhanceContext
	m, _ := newTestManager(t, func(cfg *Config) {
		cfg.Enhancer = funcEnhancer(func(_ context.Context, text string, ec EnhanceContext) (string, error) {
			got = ec
			return "Morning light falls on " + strings.ToLower(text), nil
		})
	})
	c := newChar(t, "clearing")

	out := m.Describe(context.Background(), c, "clearing")
	assert.True(t, strings.HasPrefix(out, "Morning light falls on a quiet forest clearing."))
	assert.Contains(t, out, "\nExits: north")
	assert.Equal(t, EnhanceContext{TimeOfDay: "morning", RoomType: "forest", WorldName: "Default"}, got)
}

func TestDescribe_EnhancerFallback(t *testing.T) {
	tests := []struct {
		name     string
		enhancer Enhancer
	}{
		{"error", funcEnhancer(func(context.Context, string, EnhanceContext) (string, error) {
			return "", errors.New("service unavailable")
		})},
		{"empty", funcEnhancer(func(context.Context, string, EnhanceContext) (string, error) {
			return "  ", nil
		})},
		{"timeout", funcEnhancer(func(ctx context.Context, text string, _ EnhanceContext) (string, error) {
			<-ctx.Done()
			return "too late", nil
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t, func(cfg *Config) {
				cfg.Enhancer = tt.enhancer
				cfg.EnhanceTimeout = 20 * time.Millisecond
			})
			c := newChar(t, "camp")
			out := m.Describe(context.Background(), c, "camp")
			assert.Equal(t, "An abandoned camp.\nExits: west", out)
		})
	}
}

func TestSnapshotRestore(t *testing.T) {
	m, _ := newTestManager(t)
	c := newChar(t, "path")
	_, err := m.LoadWorld("default")
	require.NoError(t, err)

	snap := m.Snapshot()
	require.True(t, m.RemoveItemFromRoom(c, "path", "sword"))
	require.True(t, m.AddItemToRoom("default", "camp", "sword"))
	require.NoError(t, m.ChangeWorld(c, "spirit_realm"))

	m.Restore(snap)

	c.World = "default"
	assert.Equal(t, []string{"potion", "sword"}, m.RoomItems(c, "path"))
	assert.Empty(t, m.RoomItems(c, "camp"))
}

func TestMap(t *testing.T) {
	m, _ := newTestManager(t)
	c := newChar(t, "path")

	out := m.Map(c)
	assert.Contains(t, out, "World Map: Default")
	assert.Contains(t, out, "*path")
	assert.Contains(t, out, " camp")

	lines := strings.Split(out, "\n")
	var clearingLine, pathLine int
	for i, l := range lines {
		if strings.Contains(l, "clearing") {
			clearingLine = i
		}
		if strings.Contains(l, "*path") {
			pathLine = i
		}
	}
	assert.Less(t, pathLine, clearingLine, "the path lies north of the clearing")
	assert.Contains(t, lines[clearingLine], "⊗", "the clearing has a portal")
	assert.Contains(t, lines[pathLine+1], "----")

	c.CurrentRoom = "nope"
	assert.Contains(t, m.Map(c), "Could not generate map")
}

func TestTimeOfDay(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2025, 1, 1, h, 0, 0, 0, time.UTC) }
	assert.Equal(t, "morning", TimeOfDay(at(5)))
	assert.Equal(t, "afternoon", TimeOfDay(at(12)))
	assert.Equal(t, "evening", TimeOfDay(at(20)))
	assert.Equal(t, "night", TimeOfDay(at(23)))
	assert.Equal(t, "night", TimeOfDay(at(2)))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Spirit Realm", DisplayName("spirit_realm"))
	assert.Equal(t, "Default", DisplayName("default"))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	worlds := filepath.Join(dir, "worlds")
	require.NoError(t, os.MkdirAll(worlds, 0o755))
	yamlWorld := `rooms:
  - id: gate
    long_desc: A stone gate.
    exits:
      North: yard
      rift:
        type: world_transition
        target_world: spirit_realm
        target_room: spirit_gate
        requirements:
          item: spirit_amulet
  - id: yard
    long_desc: A muddy yard.
    exits:
      south: gate
`
	require.NoError(t, os.WriteFile(filepath.Join(worlds, "keep.yaml"), []byte(yamlWorld), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(worlds, "broken.json"), []byte(`{"rooms":[{"id":"x"}]}`), 0o644))

	src := NewFileSource(dir)
	rooms, err := src.Load("keep")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	rift := rooms[0].Exits["rift"]
	assert.Equal(t, ExitTransition, rift.Kind)
	assert.Equal(t, DefaultPortalDescription, rift.Description)
	require.NotNil(t, rift.Requirements)
	assert.Equal(t, "spirit_amulet", rift.Requirements.Item)

	_, err = src.Load("missing")
	assert.ErrorIs(t, err, ErrWorldNotFound)

	_, err = src.Load("broken")
	assert.Error(t, err, "long_desc is required")

	_, err = src.Load("../etc")
	assert.Error(t, err)

	m, err := NewManager(&Config{Source: src, Catalog: testCatalog()})
	require.NoError(t, err)
	e, ok := m.ResolveExit("keep", "gate", "north")
	require.True(t, ok)
	assert.Equal(t, "yard", e.Target)
}

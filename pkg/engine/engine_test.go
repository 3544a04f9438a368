package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/clock"
	"github.com/jwebster45206/mud-engine/pkg/combat"
	"github.com/jwebster45206/mud-engine/pkg/content"
	"github.com/jwebster45206/mud-engine/pkg/item"
	"github.com/jwebster45206/mud-engine/pkg/storage"
	"github.com/jwebster45206/mud-engine/pkg/storage/mocks"
	"github.com/jwebster45206/mud-engine/pkg/world"
)

const (
	startWorld = "default"
	startRoom  = "forest_clearing_001"
	heroID     = "aria"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// fixedRoller returns the same face for every roll.
type fixedRoller struct{ face int }

func (r fixedRoller) Roll(int) (int, error) { return r.face, nil }

func (r fixedRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = r.face
	}
	return out, nil
}

func testCatalog() *content.Catalog {
	smithTopics := actor.NewTopics()
	smithTopics.Set("work", &actor.Topic{Prompt: "Ask about work", Response: "Always busy."})
	smithTopics.Set("weather", &actor.Topic{Response: "Cold again.", Simple: true})
	smithTopics.Set("secret", &actor.Topic{
		Prompt:          "Ask about secrets",
		Response:        "Not yet.",
		RequiresTopic:   "work",
		ItemRequirement: "letter",
		SuccessResponse: "Ah, the letter!",
		Effects: &actor.Effects{
			UnlockMerchant: true,
			RemoveItem:     true,
			AddMoney:       50,
			UnlockTopics:   []string{"forge"},
		},
	})
	smithTopics.Set("forge", &actor.Topic{Prompt: "Ask about the forge", Response: "It burns hot.", RequiresTopic: "secret"})
	smithTopics.Set("tip", &actor.Topic{
		Response:      "Here, for your trouble.",
		RequiresTopic: "weather",
		Effects:       &actor.Effects{AddMoney: 5},
	})

	return content.NewCatalog(
		[]*item.Item{
			{ID: "potion", ShortDesc: "a healing potion", LongDesc: "A red potion.",
				Properties: item.Properties{Type: item.Consumable, Weight: 0.5, Value: 10, Respawnable: true, RespawnTime: 10},
				UseEffect:  &item.UseEffect{Type: item.EffectHeal, Amount: 30}},
			{ID: "sword", ShortDesc: "a rusty sword", LongDesc: "Pitted but sharp.",
				Properties: item.Properties{Type: item.Weapon, Weight: 5, Damage: 4, Value: 20}},
			{ID: "mail", ShortDesc: "a chain mail", LongDesc: "Heavy rings.",
				Properties: item.Properties{Type: item.Armor, Weight: 10, Defense: 3}},
			{ID: "anvil", ShortDesc: "an iron anvil", LongDesc: "Far too heavy.",
				Properties: item.Properties{Weight: 25}},
			{ID: "pelt", ShortDesc: "a wolf pelt", LongDesc: "Coarse grey fur.",
				Properties: item.Properties{Weight: 1}},
			{ID: "gem", ShortDesc: "a blue gem", LongDesc: "It sparkles.",
				Properties: item.Properties{Type: item.Valuable, Weight: 0.1, Value: 100, Magic: true}},
			{ID: "letter", ShortDesc: "a sealed letter", LongDesc: "Addressed to Brom.",
				Properties: item.Properties{Type: item.Quest}},
			{ID: "lantern", ShortDesc: "a bright lantern", LongDesc: "Brass and glass.",
				Properties: item.Properties{Weight: 2}},
		},
		[]*actor.NPC{
			{
				ID: "smith", Name: "Brom", ShortDesc: "a burly blacksmith", LongDesc: "Soot covers his arms.",
				Dialogue: actor.Dialogue{Greeting: "Welcome to my forge.", Topics: smithTopics},
				MerchantData: &actor.MerchantData{
					Inventory: map[string]actor.Listing{
						"lantern": {Price: 20, Quantity: 2},
						"sword":   {Price: 15, Quantity: 1},
					},
					PremiumInventory: map[string]actor.Listing{"gem": {Price: 100, Quantity: 1}},
					BuyMultiplier:    0.5,
				},
			},
		},
		[]*actor.Mob{
			{ID: "wolf", Name: "Grey Wolf", ShortDesc: "a grey wolf", LongDesc: "Hungry eyes.", Level: 2,
				Stats:      actor.MobStats{MaxHP: 30, Attack: 10, Defense: 2, XPValue: 25},
				LootTable:  map[string]float64{"pelt": 1, "gem": 0},
				SpawnAreas: []string{"forest_path_001"}},
			{ID: "bear", Name: "Bear", ShortDesc: "a cave bear", LongDesc: "Huge.", Level: 5,
				Stats:      actor.MobStats{MaxHP: 1000, Attack: 10, Defense: 0, XPValue: 100},
				SpawnAreas: []string{"camp_001"}},
		},
	)
}

func testSource() world.StaticSource {
	return world.StaticSource{
		"default": {
			{
				ID:       startRoom,
				LongDesc: "A quiet forest clearing.",
				Exits: map[string]world.Exit{
					"north": {Kind: world.ExitRoom, Target: "forest_path_001"},
					"portal": {Kind: world.ExitTransition, TargetWorld: "spirit_realm", Target: "spirit_gate",
						Description: "A shimmering rift", Requirements: &world.Requirements{Level: 2}},
				},
			},
			{
				ID:       "forest_path_001",
				LongDesc: "A narrow forest path.",
				Exits: map[string]world.Exit{
					"south": {Kind: world.ExitRoom, Target: startRoom},
					"east":  {Kind: world.ExitRoom, Target: "camp_001"},
				},
				Items: []string{"potion", "anvil"},
				NPCs:  []string{"smith"},
			},
			{
				ID:       "camp_001",
				LongDesc: "An abandoned camp.",
				Exits:    map[string]world.Exit{"west": {Kind: world.ExitRoom, Target: "forest_path_001"}},
				Items:    []string{"sword", "pelt"},
			},
		},
		"spirit_realm": {
			{ID: "spirit_gate", LongDesc: "Mist everywhere."},
		},
	}
}

type fixture struct {
	engine *Engine
	repo   storage.Repository
	worlds *world.Manager
	clock  *clock.Fake
}

type fixtureOption func(*Config)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cat := testCatalog()
	fake := clock.NewFake(epoch)

	worlds, err := world.NewManager(&world.Config{Source: testSource(), Catalog: cat, Clock: fake})
	require.NoError(t, err)
	resolver, err := combat.NewResolver(&combat.Config{
		Catalog:    cat,
		Rooms:      worlds,
		Roller:     fixedRoller{face: 5},
		StartWorld: startWorld,
		StartRoom:  startRoom,
	})
	require.NoError(t, err)

	cfg := &Config{
		Repository: storage.NewMemoryRepository(),
		Catalog:    cat,
		Worlds:     worlds,
		Combat:     resolver,
		Clock:      fake,
		StartWorld: startWorld,
		StartRoom:  startRoom,
	}
	for _, o := range opts {
		o(cfg)
	}
	e, err := New(cfg)
	require.NoError(t, err)
	return &fixture{engine: e, repo: cfg.Repository, worlds: worlds, clock: fake}
}

// newHero stores a character named Aria in the given room.
func (f *fixture) newHero(t *testing.T, room string) {
	t.Helper()
	_, err := f.engine.CreateCharacter(context.Background(), "Aria")
	require.NoError(t, err)
	if room != startRoom {
		f.update(t, func(c *actor.Character) { c.CurrentRoom = room })
	}
}

func (f *fixture) exec(t *testing.T, raw string) string {
	t.Helper()
	quit, msg := f.engine.Execute(context.Background(), heroID, raw)
	assert.False(t, quit, "unexpected quit for %q", raw)
	return msg
}

func (f *fixture) hero(t *testing.T) *actor.Character {
	t.Helper()
	c, err := storage.Load[actor.Character](context.Background(), f.repo, storage.KindCharacter, heroID)
	require.NoError(t, err)
	require.NotNil(t, c)
	c.Normalize()
	return c
}

func (f *fixture) update(t *testing.T, fn func(*actor.Character)) {
	t.Helper()
	c := f.hero(t)
	fn(c)
	require.NoError(t, storage.Save(context.Background(), f.repo, storage.KindCharacter, heroID, c))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(&Config{Repository: storage.NewMemoryRepository()})
	assert.Error(t, err)
}

func TestExecute_EmptyUnknownAndMissing(t *testing.T) {
	f := newFixture(t)

	_, msg := f.engine.Execute(context.Background(), heroID, "   ")
	assert.Equal(t, msgEmpty, msg)

	_, msg = f.engine.Execute(context.Background(), "nobody", "look")
	assert.Equal(t, msgNoCharacter, msg)

	f.newHero(t, startRoom)
	assert.Equal(t, msgUnknown, f.exec(t, "dance wildly"))
	assert.Equal(t, helpText, f.exec(t, "HELP"))
}

func TestExecute_Quit(t *testing.T) {
	f := newFixture(t)
	f.newHero(t, startRoom)

	quit, msg := f.engine.Execute(context.Background(), "Aria", "q")
	assert.True(t, quit)
	assert.Equal(t, msgQuit, msg)
}

func TestExecute_PersistsBeforeReturning(t *testing.T) {
	f := newFixture(t)
	f.newHero(t, startRoom)

	f.exec(t, "north")
	assert.Equal(t, "forest_path_001", f.hero(t).CurrentRoom)

	f.clock.Advance(time.Minute)
	f.exec(t, "look")
	assert.True(t, f.hero(t).UpdatedAt.Equal(epoch.Add(time.Minute)))
}

func TestExecute_SaveFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	f := newFixture(t, func(c *Config) { c.Repository = repo })

	c, err := actor.NewCharacter("Aria", startWorld, "forest_path_001", epoch)
	require.NoError(t, err)
	data, err := json.Marshal(c)
	require.NoError(t, err)

	repo.EXPECT().Get(gomock.Any(), storage.KindCharacter, heroID).Return(data, nil)
	repo.EXPECT().Put(gomock.Any(), storage.KindCharacter, heroID, gomock.Any()).Return(errors.New("disk full"))

	_, msg := f.engine.Execute(context.Background(), heroID, "take potion")
	assert.Equal(t, msgFailure, msg)
	assert.Contains(t, f.worlds.RoomItems(c, "forest_path_001"), "potion")
}

func TestExecute_LoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	f := newFixture(t, func(c *Config) { c.Repository = repo })

	repo.EXPECT().Get(gomock.Any(), storage.KindCharacter, heroID).Return(nil, errors.New("connection refused"))

	_, msg := f.engine.Execute(context.Background(), heroID, "look")
	assert.Equal(t, msgFailure, msg)
}

// panickingCatalog fails every NPC lookup made by the engine.
type panickingCatalog struct{ *content.Catalog }

func (panickingCatalog) NPC(string) (*actor.NPC, bool) { panic("npc index corrupted") }

func TestExecute_PanicRollsBack(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.Catalog = panickingCatalog{c.Catalog.(*content.Catalog)}
	})
	f.newHero(t, "forest_path_001")
	f.exec(t, "take potion")
	before := f.hero(t)

	assert.Equal(t, msgFailure, f.exec(t, "talk brom"))
	after := f.hero(t)
	assert.Equal(t, before.Inventory, after.Inventory)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestExecute_CombatRestrictsVerbs(t *testing.T) {
	f := newFixture(t)
	f.newHero(t, "forest_path_001")

	assert.Equal(t, "You engage in combat with Grey Wolf!", f.exec(t, "attack wolf"))
	assert.True(t, f.hero(t).CombatState.Engaged())

	for _, raw := range []string{"look", "n", "take potion", "inventory", "quit"} {
		assert.Equal(t, msgCombatOnly, f.exec(t, raw), raw)
	}
	assert.Contains(t, f.exec(t, "st"), "COMBAT STATS")
	assert.Equal(t, "You flee from combat!", f.exec(t, "f"))
	assert.False(t, f.hero(t).CombatState.Engaged())
}

package combat

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/jwebster45206/d20"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwebster45206/mud-engine/internal/errors"
	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/item"
)

// scriptedRoller returns queued values, then repeats the last one.
type scriptedRoller struct {
	rolls []int
	sizes []int
}

func (s *scriptedRoller) Roll(size int) (int, error) {
	s.sizes = append(s.sizes, size)
	if len(s.rolls) == 0 {
		return 1, nil
	}
	v := s.rolls[0]
	if len(s.rolls) > 1 {
		s.rolls = s.rolls[1:]
	}
	return v, nil
}

func (s *scriptedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		v, _ := s.Roll(size)
		out[i] = v
	}
	return out, nil
}

type failingRoller struct{}

func (failingRoller) Roll(int) (int, error)          { return 0, fmt.Errorf("dice jammed") }
func (failingRoller) RollN(int, int) ([]int, error) { return nil, fmt.Errorf("dice jammed") }

type testCatalog struct {
	items item.Index
	mobs  map[string]*actor.Mob
}

func (tc testCatalog) Item(id string) (*item.Item, bool) { return tc.items.Item(id) }

func (tc testCatalog) Mob(id string) (*actor.Mob, bool) {
	m, ok := tc.mobs[id]
	return m, ok
}

type dropRecord struct{ world, room, item string }

type recordingSink struct{ drops []dropRecord }

func (s *recordingSink) AddItemToRoom(worldName, roomID, itemID string) bool {
	s.drops = append(s.drops, dropRecord{worldName, roomID, itemID})
	return true
}

func newCatalog() testCatalog {
	return testCatalog{
		items: item.Index{
			"pelt":  {ID: "pelt", ShortDesc: "a wolf pelt"},
			"tooth": {ID: "tooth", ShortDesc: "a wolf tooth"},
		},
		mobs: map[string]*actor.Mob{
			"wolf": {
				ID: "wolf", Name: "Grey Wolf", ShortDesc: "a grey wolf", Level: 2,
				Stats:      actor.MobStats{MaxHP: 30, Attack: 10, Defense: 2, XPValue: 25},
				LootTable:  map[string]float64{"tooth": 0, "pelt": 1},
				SpawnAreas: []string{"forest_path_001"},
			},
			"rat": {
				ID: "rat", Name: "Rat", Stats: actor.MobStats{MaxHP: 1, Attack: 1, Defense: 0, XPValue: 260},
			},
		},
	}
}

func newResolver(t *testing.T, roller dice.Roller) (*Resolver, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	r, err := NewResolver(&Config{
		Catalog:    newCatalog(),
		Rooms:      sink,
		Roller:     roller,
		StartWorld: "default",
		StartRoom:  "forest_clearing_001",
	})
	require.NoError(t, err)
	return r, sink
}

func newChar(t *testing.T) *actor.Character {
	t.Helper()
	c, err := actor.NewCharacter("Aria", "default", "forest_path_001", time.Unix(0, 0))
	require.NoError(t, err)
	return c
}

func buildActor(t *testing.T, attack, defense int) *d20.Actor {
	t.Helper()
	a, err := d20.NewActor("x").
		WithHP(10).
		WithAC(baseArmorClass + defense).
		WithAttributes(map[string]int{"attack": attack, "defense": defense}).
		Build()
	require.NoError(t, err)
	return a
}

func TestNewResolver_Validation(t *testing.T) {
	_, err := NewResolver(nil)
	assert.Error(t, err)
	_, err = NewResolver(&Config{Catalog: newCatalog(), Rooms: &recordingSink{}})
	assert.Error(t, err, "start room is required")

	r, err := NewResolver(&Config{Catalog: newCatalog(), Rooms: &recordingSink{}, StartWorld: "default", StartRoom: "a"})
	require.NoError(t, err)
	assert.Equal(t, dice.DefaultRoller, r.roller)
}

func TestDamage_Range(t *testing.T) {
	mob, player := buildActor(t, 10, 0), buildActor(t, 0, 5)
	for roll := 1; roll <= 5; roll++ {
		r, _ := newResolver(t, &scriptedRoller{rolls: []int{roll}})
		dmg, err := r.Damage(mob, player)
		require.NoError(t, err)
		assert.Equal(t, 5-3+roll, dmg)
		assert.GreaterOrEqual(t, dmg, 3)
		assert.LessOrEqual(t, dmg, 7)
	}
}

func TestDamage_NeverBelowOne(t *testing.T) {
	weak, tank := buildActor(t, 1, 0), buildActor(t, 0, 50)
	sr := &scriptedRoller{rolls: []int{1}}
	r, _ := newResolver(t, sr)
	dmg, err := r.Damage(weak, tank)
	require.NoError(t, err)
	assert.Equal(t, 1, dmg)
	assert.Equal(t, []int{5}, sr.sizes)

	for range 50 {
		r, _ := newResolver(t, dice.DefaultRoller)
		dmg, err := r.Damage(weak, tank)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, dmg, 1)
	}
}

func TestStart(t *testing.T) {
	r, _ := newResolver(t, &scriptedRoller{})
	c := newChar(t)

	msg, err := r.Start(c, "wolf")
	require.NoError(t, err)
	assert.Equal(t, "You engage in combat with Grey Wolf!", msg)
	assert.True(t, c.CombatState.InCombat)
	assert.Equal(t, "wolf", c.CombatState.Target)
	require.NotNil(t, c.CombatState.Mob)
	assert.Equal(t, 30, c.CombatState.Mob.Stats.CurrentHP)
	assert.Equal(t, 0, c.CombatState.Turns)

	msg, err = r.Start(c, "rat")
	require.NoError(t, err)
	assert.Equal(t, "You are already in combat!", msg)
	assert.Equal(t, "wolf", c.CombatState.Target)

	_, err = r.Start(newChar(t), "dragon")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProcessTurn_MobSurvives(t *testing.T) {
	// player hits 10-2 -3+3 = 8, wolf hits 10-5 -3+5 = 7
	r, _ := newResolver(t, &scriptedRoller{rolls: []int{3, 5}})
	c := newChar(t)
	_, err := r.Start(c, "wolf")
	require.NoError(t, err)

	out, err := r.ProcessTurn(c, "wolf")
	require.NoError(t, err)

	assert.Contains(t, out, "You hit Grey Wolf for 8 damage!")
	assert.Contains(t, out, "\nYour health: [====================] 100/100")
	assert.Contains(t, out, "Grey Wolf's health: [==============      ] 22/30\n")
	assert.Contains(t, out, "Grey Wolf hits you for 7 damage!")
	assert.Equal(t, 93, c.Stats.CurrentHP)
	assert.Equal(t, 22, c.CombatState.Mob.Stats.CurrentHP)
	assert.Equal(t, 1, c.CombatState.Turns)
	assert.True(t, c.CombatState.InCombat)

	tmpl, _ := r.catalog.Mob("wolf")
	assert.Equal(t, 0, tmpl.Stats.CurrentHP, "the template is never mutated")
}

func TestProcessTurn_Victory(t *testing.T) {
	// damage roll 5, then the pelt loot roll; tooth has p=0 and is never rolled
	sr := &scriptedRoller{rolls: []int{5, 10000}}
	r, sink := newResolver(t, sr)
	c := newChar(t)
	_, err := r.Start(c, "wolf")
	require.NoError(t, err)
	c.CombatState.Mob.Stats.CurrentHP = 5

	out, err := r.ProcessTurn(c, "wolf")
	require.NoError(t, err)

	assert.Contains(t, out, "You have defeated Grey Wolf!")
	assert.Contains(t, out, "You gained 25 experience!")
	assert.Contains(t, out, "\nLoot dropped: a wolf pelt")
	assert.NotContains(t, out, "hits you")
	assert.Equal(t, []dropRecord{{"default", "forest_path_001", "pelt"}}, sink.drops)
	assert.Equal(t, 25, c.Stats.XP)
	assert.True(t, c.IsMobDefeated("forest_path_001", "wolf"))
	assert.False(t, c.CombatState.InCombat)
	assert.Nil(t, c.CombatState.Mob)
	assert.Equal(t, []int{5, lootScale}, sr.sizes)
}

func TestProcessTurn_VictoryLevelsUpRepeatedly(t *testing.T) {
	r, _ := newResolver(t, &scriptedRoller{rolls: []int{1}})
	c := newChar(t)
	_, err := r.Start(c, "rat")
	require.NoError(t, err)

	out, err := r.ProcessTurn(c, "rat")
	require.NoError(t, err)

	assert.Contains(t, out, "\nLevel up! You are now level 2!")
	assert.Contains(t, out, "\nLevel up! You are now level 3!")
	assert.Less(t, strings.Index(out, "level 2"), strings.Index(out, "level 3"))
	assert.Equal(t, 3, c.Stats.Level)
	assert.NotContains(t, out, "Loot dropped")
}

func TestProcessTurn_PlayerDefeated(t *testing.T) {
	r, _ := newResolver(t, &scriptedRoller{rolls: []int{1, 5}})
	c := newChar(t)
	c.Stats.CurrentHP = 3
	c.Stats.XP, c.BaseStats.XP = 40, 40
	c.World = "spirit_realm"
	c.AddDefeatedMob("rat")
	_, err := r.Start(c, "wolf")
	require.NoError(t, err)

	out, err := r.ProcessTurn(c, "wolf")
	require.NoError(t, err)

	assert.Contains(t, out, "Grey Wolf hits you for 7 damage!")
	assert.Contains(t, out, "\nYou have been defeated!")
	assert.Contains(t, out, "You lose 10 XP and 10 coins.")
	assert.Contains(t, out, "You wake up back where your journey began, with half health...")
	assert.Equal(t, 50, c.Stats.CurrentHP)
	assert.Equal(t, 100, c.Stats.MaxHP)
	assert.Equal(t, "forest_clearing_001", c.CurrentRoom)
	assert.Equal(t, "default", c.World)
	assert.Equal(t, 30, c.Stats.XP)
	assert.Equal(t, 90, c.Money)
	assert.False(t, c.CombatState.InCombat)
	assert.Empty(t, c.DefeatedMobs)
}

func TestProcessTurn_DefeatFloorsAtZero(t *testing.T) {
	r, _ := newResolver(t, &scriptedRoller{rolls: []int{1, 5}})
	c := newChar(t)
	c.Stats.CurrentHP = 1
	c.Money = 5
	_, err := r.Start(c, "wolf")
	require.NoError(t, err)

	_, err = r.ProcessTurn(c, "wolf")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Stats.XP)
	assert.Equal(t, 5, c.Money, "floor(5/10) is zero")
}

func TestProcessTurn_UnknownMob(t *testing.T) {
	r, _ := newResolver(t, &scriptedRoller{})
	_, err := r.ProcessTurn(newChar(t), "dragon")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProcessTurn_RollerFailure(t *testing.T) {
	r, _ := newResolver(t, failingRoller{})
	c := newChar(t)
	_, err := r.Start(c, "wolf")
	require.NoError(t, err)

	_, err = r.ProcessTurn(c, "wolf")
	assert.ErrorContains(t, err, "dice jammed")
}

func TestFlee(t *testing.T) {
	r, _ := newResolver(t, &scriptedRoller{})
	c := newChar(t)
	_, err := r.Start(c, "wolf")
	require.NoError(t, err)

	assert.Equal(t, "You flee from combat!", r.Flee(c))
	assert.False(t, c.CombatState.InCombat)
	assert.Equal(t, 100, c.Stats.CurrentHP)
	assert.Equal(t, 100, c.Money)
}

func TestInstantDefeat(t *testing.T) {
	r, sink := newResolver(t, &scriptedRoller{rolls: []int{1}})
	c := newChar(t)

	msg, err := r.InstantDefeat(c, "wolf")
	require.NoError(t, err)
	assert.Equal(t, "You are not in combat.", msg)

	_, err = r.Start(c, "wolf")
	require.NoError(t, err)
	msg, err = r.InstantDefeat(c, "rat")
	require.NoError(t, err)
	assert.Equal(t, "That's not your current target.", msg)

	msg, err = r.InstantDefeat(c, "wolf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg, "You instantly defeat the enemy!\nYou gained 25 experience!"))
	assert.Len(t, sink.drops, 1)
	assert.True(t, c.IsMobDefeated(c.CurrentRoom, "wolf"))
	assert.False(t, c.CombatState.InCombat)
}

func TestRollLoot_Probabilities(t *testing.T) {
	r, _ := newResolver(t, dice.DefaultRoller)
	for range 200 {
		got, err := r.RollLoot(map[string]float64{"always": 1, "never": 0})
		require.NoError(t, err)
		assert.Equal(t, []string{"always"}, got)
	}
}

func TestRollLoot_IndependentEntries(t *testing.T) {
	r, _ := newResolver(t, &scriptedRoller{rolls: []int{5000, 5001, 1}})
	got, err := r.RollLoot(map[string]float64{"c": 0.5, "a": 0.5, "b": 0.5})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, got)
}

func TestHealthBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("=", 20), HealthBar(100, 100))
	assert.Equal(t, strings.Repeat("=", 10)+strings.Repeat(" ", 10), HealthBar(50, 100))
	assert.Equal(t, strings.Repeat(" ", 20), HealthBar(-4, 30))
	assert.Equal(t, strings.Repeat(" ", 20), HealthBar(0, 0))
}

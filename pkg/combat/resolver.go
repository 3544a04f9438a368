// Package combat resolves turn-based encounters between a character and a
// mob. The resolver mutates the character it is given and never persists;
// callers save the character afterwards.
package combat

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/jwebster45206/d20"

	apperrors "github.com/jwebster45206/mud-engine/internal/errors"
	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/item"
)

const healthBarLength = 20

// lootScale is the resolution of loot rolls: a probability p drops when a
// d10000 roll is at most p*lootScale.
const lootScale = 10000

type Catalog interface {
	item.Catalog
	Mob(id string) (*actor.Mob, bool)
}

// LootSink receives dropped loot.
type LootSink interface {
	AddItemToRoom(worldName, roomID, itemID string) bool
}

type Config struct {
	Catalog    Catalog
	Rooms      LootSink
	Roller     dice.Roller
	StartWorld string
	StartRoom  string
	Logger     *slog.Logger
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is required")
	}
	if c.Catalog == nil {
		return errors.New("catalog is required")
	}
	if c.Rooms == nil {
		return errors.New("rooms are required")
	}
	if c.StartWorld == "" || c.StartRoom == "" {
		return errors.New("start world and room are required")
	}
	return nil
}

type Resolver struct {
	catalog    Catalog
	rooms      LootSink
	roller     dice.Roller
	startWorld string
	startRoom  string
	logger     *slog.Logger
}

func NewResolver(cfg *Config) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{
		catalog:    cfg.Catalog,
		rooms:      cfg.Rooms,
		roller:     cfg.Roller,
		startWorld: cfg.StartWorld,
		startRoom:  cfg.StartRoom,
		logger:     cfg.Logger,
	}
	if r.roller == nil {
		r.roller = dice.DefaultRoller
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// Start engages the character with a fresh instance of the mob.
func (r *Resolver) Start(c *actor.Character, mobID string) (string, error) {
	if c.CombatState.Engaged() {
		return "You are already in combat!", nil
	}
	tmpl, ok := r.catalog.Mob(mobID)
	if !ok {
		return "", apperrors.NotFoundf("mob %q not found", mobID)
	}
	c.CombatState = actor.CombatState{
		InCombat: true,
		Target:   mobID,
		Mob:      actor.NewEncounter(tmpl),
	}
	r.logger.Debug("combat started", "character", c.ID(), "mob", mobID)
	return fmt.Sprintf("You engage in combat with %s!", tmpl.Name), nil
}

// ProcessTurn plays one round: the character strikes first, then the mob
// strikes back if it is still standing.
func (r *Resolver) ProcessTurn(c *actor.Character, mobID string) (string, error) {
	mob := c.CombatState.Mob
	if mob == nil || mob.ID != mobID {
		tmpl, ok := r.catalog.Mob(mobID)
		if !ok {
			return "", apperrors.NotFoundf("mob %q not found", mobID)
		}
		mob = actor.NewEncounter(tmpl)
		c.CombatState.Mob = mob
	}

	player, err := characterActor(c)
	if err != nil {
		return "", err
	}
	foe, err := mobActor(mob)
	if err != nil {
		return "", err
	}

	toMob, err := r.Damage(player, foe)
	if err != nil {
		return "", err
	}
	mob.TakeDamage(toMob)

	lines := []string{
		fmt.Sprintf("You hit %s for %d damage!", mob.Name, toMob),
		fmt.Sprintf("\nYour health: [%s] %d/%d", HealthBar(c.Stats.CurrentHP, c.Stats.MaxHP), c.Stats.CurrentHP, c.Stats.MaxHP),
		fmt.Sprintf("%s's health: [%s] %d/%d\n", mob.Name, HealthBar(mob.Stats.CurrentHP, mob.Stats.MaxHP), mob.Stats.CurrentHP, mob.Stats.MaxHP),
	}

	if mob.IsDefeated() {
		lines = append(lines, fmt.Sprintf("You have defeated %s!", mob.Name))
		victory, err := r.victory(c, mob)
		if err != nil {
			return "", err
		}
		return strings.Join(append(lines, victory...), "\n"), nil
	}

	toPlayer, err := r.Damage(foe, player)
	if err != nil {
		return "", err
	}
	c.TakeDamage(toPlayer)
	lines = append(lines, fmt.Sprintf("%s hits you for %d damage!", mob.Name, toPlayer))

	if c.Stats.CurrentHP <= 0 {
		xpLoss, moneyLoss := r.defeat(c)
		lines = append(lines,
			"\nYou have been defeated!",
			fmt.Sprintf("You lose %d XP and %d coins.", xpLoss, moneyLoss),
			"You wake up back where your journey began, with half health...",
		)
		return strings.Join(lines, "\n"), nil
	}

	c.CombatState.Turns++
	return strings.Join(lines, "\n"), nil
}

// Flee ends the encounter without penalty.
func (r *Resolver) Flee(c *actor.Character) string {
	c.CombatState.Reset()
	return "You flee from combat!"
}

// InstantDefeat wins the current encounter outright.
func (r *Resolver) InstantDefeat(c *actor.Character, mobID string) (string, error) {
	if !c.CombatState.Engaged() {
		return "You are not in combat.", nil
	}
	if c.CombatState.Target != mobID {
		return "That's not your current target.", nil
	}
	tmpl, ok := r.catalog.Mob(mobID)
	if !ok {
		return "", apperrors.NotFoundf("mob %q not found", mobID)
	}
	victory, err := r.victory(c, tmpl)
	if err != nil {
		return "", err
	}
	return strings.Join(append([]string{"You instantly defeat the enemy!"}, victory...), "\n"), nil
}

// victory awards XP and loot, marks the mob defeated and ends combat.
func (r *Resolver) victory(c *actor.Character, mob *actor.Mob) ([]string, error) {
	loot, err := r.RollLoot(mob.LootTable)
	if err != nil {
		return nil, err
	}

	lines := []string{fmt.Sprintf("You gained %d experience!", mob.Stats.XPValue)}
	levels := c.GainXP(mob.Stats.XPValue)
	for i := levels - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("\nLevel up! You are now level %d!", c.Stats.Level-i))
	}

	var dropped []string
	for _, id := range loot {
		if r.rooms.AddItemToRoom(c.World, c.CurrentRoom, id) {
			dropped = append(dropped, item.ShortDesc(r.catalog, id))
		}
	}
	if len(dropped) > 0 {
		lines = append(lines, "\nLoot dropped: "+strings.Join(dropped, ", "))
	}

	c.AddDefeatedMob(mob.ID)
	c.CombatState.Reset()
	r.logger.Debug("mob defeated", "character", c.ID(), "mob", mob.ID, "levels", levels, "loot", loot)
	return lines, nil
}

// defeat applies the death penalties and returns the XP and money lost.
func (r *Resolver) defeat(c *actor.Character) (int, int) {
	c.Stats.CurrentHP = c.Stats.MaxHP / 2
	c.World = r.startWorld
	c.SetCurrentRoom(r.startRoom)
	c.CombatState.Reset()

	xpLoss := c.Stats.XPToNextLevel / 10
	c.LoseXP(xpLoss)
	moneyLoss := c.Money / 10
	c.Money = max(0, c.Money-moneyLoss)

	r.logger.Debug("character defeated", "character", c.ID(), "xp_lost", xpLoss, "money_lost", moneyLoss)
	return xpLoss, moneyLoss
}

// Damage rolls one attack: base = max(1, attack-defense), then a uniform
// value in [base-2, base+2], never below 1.
func (r *Resolver) Damage(attacker, defender *d20.Actor) (int, error) {
	atk, _ := attacker.Attribute("attack")
	def, _ := defender.Attribute("defense")
	base := max(1, atk-def)
	roll, err := r.roller.Roll(5)
	if err != nil {
		return 0, fmt.Errorf("failed to roll damage: %w", err)
	}
	return max(1, base-3+roll), nil
}

// RollLoot rolls each loot table entry independently, in item id order.
func (r *Resolver) RollLoot(table map[string]float64) ([]string, error) {
	var out []string
	for _, id := range slices.Sorted(maps.Keys(table)) {
		threshold := int(math.Round(table[id] * lootScale))
		if threshold <= 0 {
			continue
		}
		roll, err := r.roller.Roll(lootScale)
		if err != nil {
			return nil, fmt.Errorf("failed to roll loot: %w", err)
		}
		if roll <= threshold {
			out = append(out, id)
		}
	}
	return out, nil
}

// HealthBar renders current/max as a fixed-width bar of '='.
func HealthBar(current, maxHP int) string {
	fill := 0
	if maxHP > 0 {
		fill = int(float64(current) / float64(maxHP) * healthBarLength)
	}
	fill = min(max(fill, 0), healthBarLength)
	return strings.Repeat("=", fill) + strings.Repeat(" ", healthBarLength-fill)
}

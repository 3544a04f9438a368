// Package engine interprets player commands. Every command runs as a
// transaction: the handler works on a copy of the character and the room
// item lists are snapshotted, so a failure leaves both untouched.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/clock"
	"github.com/jwebster45206/mud-engine/pkg/combat"
	"github.com/jwebster45206/mud-engine/pkg/item"
	"github.com/jwebster45206/mud-engine/pkg/storage"
	"github.com/jwebster45206/mud-engine/pkg/world"
)

const (
	msgFailure       = "Something went wrong. Please try again."
	msgEmpty         = "Please enter a command."
	msgNoCharacter   = "Character not found."
	msgUnknown       = "Unknown command. Type 'help' for a list of commands."
	msgCombatOnly    = "In combat, you can only: attack (a), flee (f), check stats (st), or godkill (gk/god)"
	msgQuit          = "Thanks for playing! Goodbye!"
	msgNotFoundHere  = "You don't see that here."
	msgDontHaveThat  = "You don't have that item."
	msgNoMerchant    = "There is no merchant here."
	msgNothingToTake = "There is nothing here to take."
)

// Catalog is every template lookup the commands need.
type Catalog interface {
	item.Catalog
	NPC(id string) (*actor.NPC, bool)
	Mob(id string) (*actor.Mob, bool)
	MobsIn(roomID string) []*actor.Mob
}

type Config struct {
	Repository storage.Repository
	Catalog    Catalog
	Worlds     *world.Manager
	Combat     *combat.Resolver
	Clock      clock.Clock
	StartWorld string
	StartRoom  string
	Logger     *slog.Logger
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is required")
	}
	if c.Repository == nil {
		return errors.New("repository is required")
	}
	if c.Catalog == nil {
		return errors.New("catalog is required")
	}
	if c.Worlds == nil {
		return errors.New("world manager is required")
	}
	if c.Combat == nil {
		return errors.New("combat resolver is required")
	}
	if c.StartWorld == "" || c.StartRoom == "" {
		return errors.New("start world and room are required")
	}
	return nil
}

// Engine runs one command at a time.
type Engine struct {
	mu         sync.Mutex
	repo       storage.Repository
	catalog    Catalog
	worlds     *world.Manager
	combat     *combat.Resolver
	clock      clock.Clock
	startWorld string
	startRoom  string
	logger     *slog.Logger
}

func New(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		repo:       cfg.Repository,
		catalog:    cfg.Catalog,
		worlds:     cfg.Worlds,
		combat:     cfg.Combat,
		clock:      cfg.Clock,
		startWorld: cfg.StartWorld,
		startRoom:  cfg.StartRoom,
		logger:     cfg.Logger,
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// Execute runs a raw command line for the character and returns whether the
// session should end along with the text to show the player.
func (e *Engine) Execute(ctx context.Context, characterID, raw string) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmd, args, ok := parseCommand(raw)
	if !ok {
		return false, msgEmpty
	}

	id := actor.CharacterID(characterID)
	stored, err := e.loadCharacter(ctx, id)
	if err != nil {
		e.logger.Error("failed to load character", "character", id, "error", err)
		return false, msgFailure
	}
	if stored == nil {
		return false, msgNoCharacter
	}

	c := stored.Clone()
	snap := e.worlds.Snapshot()

	res, err := e.dispatch(ctx, c, cmd, args)
	if err != nil {
		e.worlds.Restore(snap)
		e.logger.Error("command failed", "character", id, "command", cmd, "error", err)
		return false, msgFailure
	}

	c.UpdatedAt = e.clock.Now()
	if err := storage.Save(ctx, e.repo, storage.KindCharacter, id, c); err != nil {
		e.worlds.Restore(snap)
		e.logger.Error("failed to save character", "character", id, "command", cmd, "error", err)
		return false, msgFailure
	}

	e.logger.Debug("command executed", "character", id, "command", cmd, "quit", res.Quit)
	return res.Quit, res.Message
}

func (e *Engine) loadCharacter(ctx context.Context, id string) (*actor.Character, error) {
	c, err := storage.Load[actor.Character](ctx, e.repo, storage.KindCharacter, id)
	if err != nil || c == nil {
		return nil, err
	}
	c.Normalize()
	return c, nil
}

// dispatch runs the handler for cmd against c. A panicking handler is
// reported as an error so the caller can roll back.
func (e *Engine) dispatch(ctx context.Context, c *actor.Character, cmd commandType, args []string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %q panicked: %v", cmd, r)
		}
	}()

	if c.CombatState.Engaged() {
		return e.dispatchCombat(c, cmd)
	}

	var msg string
	switch cmd {
	case cmdGo:
		msg = e.cmdGo(ctx, c, args)
	case cmdLook:
		msg = e.cmdLook(ctx, c)
	case cmdInventory:
		msg = e.cmdInventory(c)
	case cmdExamine:
		msg = e.cmdExamine(c, args)
	case cmdEquip:
		msg = e.cmdEquip(c, args)
	case cmdUnequip:
		msg = e.cmdUnequip(c, args)
	case cmdUse:
		msg = e.cmdUse(c, args)
	case cmdTake:
		msg = e.cmdTake(c, args)
	case cmdDrop:
		msg = e.cmdDrop(c, args)
	case cmdTalk:
		msg = e.cmdTalk(c, args)
	case cmdAsk:
		msg = e.cmdAsk(c, args)
	case cmdList:
		msg = e.cmdList(c)
	case cmdBuy:
		msg = e.cmdBuy(c, args)
	case cmdSell:
		msg = e.cmdSell(c, args)
	case cmdAttack:
		msg, err = e.cmdAttack(c, args)
	case cmdFlee, cmdGodkill:
		msg = "You are not in combat."
	case cmdStats:
		msg = e.statsSheet(c)
	case cmdMap:
		msg = e.worlds.Map(c)
	case cmdSacrifice:
		msg = e.cmdSacrifice(c, args)
	case cmdHelp:
		msg = helpText
	case cmdQuit:
		return Result{Quit: true, Message: msgQuit}, nil
	default:
		msg = msgUnknown
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Message: msg}, nil
}

// dispatchCombat handles the restricted verb set available while engaged.
func (e *Engine) dispatchCombat(c *actor.Character, cmd commandType) (Result, error) {
	var (
		msg string
		err error
	)
	target := c.CombatState.Target
	switch cmd {
	case cmdStats:
		msg = e.statsSheet(c)
	case cmdAttack:
		msg, err = e.combat.ProcessTurn(c, target)
	case cmdFlee:
		msg = e.combat.Flee(c)
	case cmdGodkill:
		msg, err = e.combat.InstantDefeat(c, target)
	default:
		msg = msgCombatOnly
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Message: msg}, nil
}

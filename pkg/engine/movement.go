package engine

import (
	"context"
	"fmt"

	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/world"
)

func (e *Engine) cmdGo(ctx context.Context, c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Go where? Please specify a direction."
	}
	dir := args[0]
	exit, ok := e.worlds.ResolveExit(c.World, c.CurrentRoom, dir)
	if !ok {
		return fmt.Sprintf("You cannot go %s from here.", dir)
	}

	if exit.Kind != world.ExitTransition {
		c.SetCurrentRoom(exit.Target)
		return e.worlds.Describe(ctx, c, exit.Target)
	}

	if ok, reason := e.worlds.CheckTransitionRequirements(c, exit.Requirements); !ok {
		return reason
	}
	if err := e.worlds.ChangeWorld(c, exit.TargetWorld); err != nil {
		e.logger.Warn("world transition failed", "character", c.ID(), "world", exit.TargetWorld, "error", err)
		return "Error: Could not load target world."
	}
	c.SetCurrentRoom(exit.Target)
	return exit.Description + "\n\n" + e.worlds.Describe(ctx, c, exit.Target)
}

func (e *Engine) cmdLook(ctx context.Context, c *actor.Character) string {
	return e.worlds.Describe(ctx, c, c.CurrentRoom)
}

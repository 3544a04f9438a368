package engine

import (
	"strings"

	"github.com/jwebster45206/mud-engine/pkg/actor"
)

// cmdAttack engages a mob in the room. The named target is matched by exact
// name first, then by search terms; without a match the first mob present
// is engaged.
func (e *Engine) cmdAttack(c *actor.Character, args []string) (string, error) {
	mobs := e.worlds.RoomMobs(c, c.CurrentRoom)
	if len(mobs) == 0 {
		return "There are no enemies here.", nil
	}

	target := mobs[0]
	if len(args) > 0 {
		if m, ok := pickMob(mobs, args); ok {
			target = m
		}
	}
	return e.combat.Start(c, target.ID)
}

func pickMob(mobs []*actor.Mob, args []string) (*actor.Mob, bool) {
	name := strings.Join(args, " ")
	for _, m := range mobs {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	terms := searchTerms(args)
	for _, m := range mobs {
		if matches(terms, m.Name, m.ShortDesc) {
			return m, true
		}
	}
	return nil, false
}

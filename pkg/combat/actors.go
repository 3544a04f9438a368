package combat

import (
	"fmt"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/mud-engine/pkg/actor"
)

// baseArmorClass offsets defense into a d20 armor class.
const baseArmorClass = 10

func characterActor(c *actor.Character) (*d20.Actor, error) {
	a, err := d20.NewActor(c.ID()).
		WithHP(c.Stats.MaxHP).
		WithAC(baseArmorClass + c.Stats.Defense).
		WithAttributes(map[string]int{
			"attack":  c.Stats.Attack,
			"defense": c.Stats.Defense,
			"level":   c.Stats.Level,
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor for %s: %w", c.ID(), err)
	}
	if hp := c.Stats.CurrentHP; hp > 0 && hp != c.Stats.MaxHP {
		if err := a.SetHP(hp); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return a, nil
}

func mobActor(m *actor.Mob) (*d20.Actor, error) {
	a, err := d20.NewActor(m.ID).
		WithHP(m.Stats.MaxHP).
		WithAC(baseArmorClass + m.Stats.Defense).
		WithAttributes(map[string]int{
			"attack":  m.Stats.Attack,
			"defense": m.Stats.Defense,
			"level":   m.Level,
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor for %s: %w", m.ID, err)
	}
	if hp := m.Stats.CurrentHP; hp > 0 && hp != m.Stats.MaxHP {
		if err := a.SetHP(hp); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return a, nil
}

package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/item"
)

// findItem returns the first id in ids whose short description matches
// the search terms.
func (e *Engine) findItem(ids []string, terms []string) (string, *item.Item, bool) {
	for _, id := range ids {
		it, ok := e.catalog.Item(id)
		if !ok {
			continue
		}
		if matches(terms, it.ShortDesc) {
			return id, it, true
		}
	}
	return "", nil, false
}

func (e *Engine) cmdTake(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Take what?"
	}
	room := c.CurrentRoom
	roomItems := e.worlds.RoomItems(c, room)
	if len(roomItems) == 0 {
		return msgNothingToTake
	}

	if args[0] == "all" {
		var taken, heavy []string
		for _, id := range roomItems {
			it, ok := e.catalog.Item(id)
			if !ok {
				continue
			}
			if !c.CanCarry(e.catalog, it.Weight()) {
				heavy = append(heavy, it.ShortDesc)
				continue
			}
			if c.AddToInventory(e.catalog, id) {
				e.worlds.RemoveItemFromRoom(c, room, id)
				taken = append(taken, it.ShortDesc)
			}
		}
		if len(taken) == 0 && len(heavy) == 0 {
			return msgNothingToTake
		}
		var out []string
		if len(taken) > 0 {
			out = append(out, "You take: "+strings.Join(taken, ", "))
		}
		if len(heavy) > 0 {
			out = append(out, "Too heavy to take: "+strings.Join(heavy, ", "))
		}
		return strings.Join(out, "\n")
	}

	id, it, ok := e.findItem(roomItems, searchTerms(args))
	if !ok {
		return msgNotFoundHere
	}
	if !c.CanCarry(e.catalog, it.Weight()) {
		return fmt.Sprintf("That's too heavy! (%.1f/%.1fkg carried)", c.CalculateTotalWeight(e.catalog), c.Stats.WeightLimit)
	}
	if !c.AddToInventory(e.catalog, id) {
		return "Failed to take item."
	}
	e.worlds.RemoveItemFromRoom(c, room, id)
	return fmt.Sprintf("You take %s.", it.ShortDesc)
}

func (e *Engine) cmdDrop(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Drop what?"
	}
	id, it, ok := e.findItem(c.Inventory, searchTerms(args))
	if !ok {
		return "You don't have that."
	}
	if !e.worlds.AddItemToRoom(c.World, c.CurrentRoom, id) {
		return "Failed to drop item."
	}
	c.RemoveFromInventory(id)
	return fmt.Sprintf("You drop %s.", it.ShortDesc)
}

func (e *Engine) cmdUse(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Use what?"
	}
	id, it, ok := e.findItem(c.Inventory, searchTerms(args))
	if !ok {
		return msgDontHaveThat
	}
	if it.UseEffect == nil {
		return fmt.Sprintf("You can't use %s.", it.ShortDesc)
	}
	switch it.UseEffect.Type {
	case item.EffectHeal:
		healed := c.Heal(it.UseEffect.Amount)
		c.RemoveFromInventory(id)
		return fmt.Sprintf("You use %s and recover %d HP.", it.ShortDesc, healed)
	default:
		return "This item's effect is not implemented yet."
	}
}

func (e *Engine) cmdEquip(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Equip what?"
	}
	id, it, ok := e.findItem(c.Inventory, searchTerms(args))
	if !ok {
		return msgDontHaveThat
	}
	if _, _, err := c.Equip(e.catalog, id); err != nil {
		if errors.Is(err, actor.ErrNotEquippable) {
			return fmt.Sprintf("You can't equip %s.", it.ShortDesc)
		}
		return msgDontHaveThat
	}
	return fmt.Sprintf("You equip %s.", it.ShortDesc)
}

func (e *Engine) cmdUnequip(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Unequip what?"
	}
	terms := searchTerms(args)
	for _, slot := range item.Slots {
		id := c.Equipment.Get(slot)
		if id == "" {
			continue
		}
		it, ok := e.catalog.Item(id)
		if !ok || !matches(terms, it.ShortDesc) {
			continue
		}
		if _, err := c.Unequip(e.catalog, slot); err != nil {
			continue
		}
		return fmt.Sprintf("You unequip %s.", it.ShortDesc)
	}
	return "You don't have that equipped."
}

// cmdSacrifice destroys one matching item for a single point of XP.
func (e *Engine) cmdSacrifice(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Sacrifice what?"
	}
	id, it, ok := e.findItem(c.Inventory, searchTerms(args))
	if !ok {
		return msgDontHaveThat
	}
	if !c.RemoveFromInventory(id) {
		return "Failed to sacrifice item."
	}
	msg := fmt.Sprintf("You sacrifice %s to the gods. (+1 XP)", it.ShortDesc)
	if levels := c.GainXP(1); levels > 0 {
		msg += fmt.Sprintf("\nLevel up! You are now level %d!", c.Stats.Level)
	}
	return msg
}

func (e *Engine) cmdExamine(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Examine what?"
	}
	terms := searchTerms(args)

	if _, it, ok := e.findItem(c.Inventory, terms); ok {
		return describeItem(it)
	}
	if _, it, ok := e.findItem(e.worlds.RoomItems(c, c.CurrentRoom), terms); ok {
		return describeItem(it)
	}
	if npc, ok := e.findNPC(c, terms); ok {
		return npc.LongDesc
	}
	for _, mob := range e.worlds.RoomMobs(c, c.CurrentRoom) {
		if matches(terms, mob.Name, mob.ShortDesc) {
			return describeMob(mob)
		}
	}
	return msgNotFoundHere
}

func describeItem(it *item.Item) string {
	var props []string
	p := it.Properties
	if p.Type != "" {
		props = append(props, fmt.Sprintf("Type: %s", p.Type))
	}
	if p.Damage != 0 {
		props = append(props, fmt.Sprintf("Damage: %d", p.Damage))
	}
	if p.Defense != 0 {
		props = append(props, fmt.Sprintf("Defense: %d", p.Defense))
	}
	if p.Value != 0 {
		props = append(props, fmt.Sprintf("Value: %d coins", p.Value))
	}
	if p.Magic {
		props = append(props, "Magical")
	}
	return it.LongDesc + "\n\n" + strings.Join(props, "\n")
}

func describeMob(m *actor.Mob) string {
	return strings.Join([]string{
		m.Name,
		m.LongDesc,
		fmt.Sprintf("\nLevel: %d", m.Level),
		fmt.Sprintf("HP: %d", m.Stats.MaxHP),
		fmt.Sprintf("Attack: %d", m.Stats.Attack),
		fmt.Sprintf("Defense: %d", m.Stats.Defense),
		fmt.Sprintf("XP Value: %d", m.Stats.XPValue),
	}, "\n")
}

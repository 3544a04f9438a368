package engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/mud-engine/pkg/actor"
)

func assertBoxed(t *testing.T, out string) {
	t.Helper()
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "╔"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "╚"))
	for _, l := range lines {
		assert.Equal(t, boxWidth+2, utf8.RuneCountInString(l), "line %q", l)
	}
}

func TestInventory(t *testing.T) {
	f := newFixture(t)
	f.newHero(t, startRoom)
	assert.Equal(t, "Your inventory is empty.", f.exec(t, "i"))

	f.update(t, func(c *actor.Character) { c.Inventory = []string{"potion", "sword", "potion", "pelt", "gem"} })
	f.exec(t, "equip sword")

	out := f.exec(t, "inventory")
	assertBoxed(t, out)
	assert.Contains(t, out, "INVENTORY")
	assert.Contains(t, out, "EQUIPPED ITEMS")
	assert.Contains(t, out, "  Weapon  : a rusty sword (5.0kg)")
	assert.Contains(t, out, "CONSUMABLES")
	assert.Contains(t, out, "a healing potion (x2) [0.5kg]")
	assert.Contains(t, out, "VALUABLES")
	assert.Contains(t, out, "MISCELLANEOUS")
	assert.Contains(t, out, "a wolf pelt [1.0kg]")
	assert.Contains(t, out, "Money: 100 coins")
	assert.NotContains(t, out, "WEAPONS")

	// Categories appear in a fixed order.
	assert.Less(t, strings.Index(out, "CONSUMABLES"), strings.Index(out, "VALUABLES"))
	assert.Less(t, strings.Index(out, "VALUABLES"), strings.Index(out, "MISCELLANEOUS"))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.newHero(t, startRoom)
	f.update(t, func(c *actor.Character) {
		c.Inventory = []string{"mail", "letter"}
		c.Stats.CurrentHP = 50
		c.Stats.XP = 25
	})
	f.exec(t, "equip mail")

	out := f.exec(t, "stats")
	assertBoxed(t, out)
	assert.Contains(t, out, "Aria")
	assert.Contains(t, out, "Level: 1")
	assert.Contains(t, out, "Gold: 100")
	assert.Contains(t, out, "HP: 50/100")
	assert.Contains(t, out, "[██████████░░░░░░░░░░]  50%")
	assert.Contains(t, out, "XP: 25/100")
	assert.Contains(t, out, "[█████░░░░░░░░░░░░░░░]  25%")
	assert.Contains(t, out, "Attack:  10")
	assert.Contains(t, out, "Defense: 8")
	assert.Contains(t, out, "Weapon:  None")
	assert.Contains(t, out, "Armor:   a chain mail (10.0kg)")
	assert.Contains(t, out, "QUEST ITEMS")
	assert.Contains(t, out, "a sealed letter [0.0kg]")
}

func TestProgressBar(t *testing.T) {
	bar, pct := progressBar(0, 0)
	assert.Equal(t, strings.Repeat("░", progressLength), bar)
	assert.Equal(t, 0, pct)

	bar, pct = progressBar(150, 100)
	assert.Equal(t, strings.Repeat("█", progressLength), bar)
	assert.Equal(t, 100, pct)
}

func TestBox_RowsKeepWidth(t *testing.T) {
	var b box
	b.top()
	b.blank()
	b.row("x")
	b.row("%s", strings.Repeat("long ", 20))
	b.center("TITLE")
	b.bottom()

	out := b.String()
	assertBoxed(t, out)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "║"+strings.Repeat(" ", boxWidth)+"║", lines[1])
	assert.Equal(t, "║x"+strings.Repeat(" ", boxWidth-1)+"║", lines[2])
}

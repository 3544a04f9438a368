package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/item"
	"github.com/jwebster45206/mud-engine/pkg/world"
)

const (
	boxWidth       = 58
	progressLength = 20
	equipWidth     = 23
)

var categoryTitles = []string{"WEAPONS", "ARMOR", "CONSUMABLES", "QUEST ITEMS", "VALUABLES", "MISCELLANEOUS"}

func categoryTitle(c item.Category) string {
	switch c {
	case item.Weapon:
		return "WEAPONS"
	case item.Armor:
		return "ARMOR"
	case item.Consumable:
		return "CONSUMABLES"
	case item.Quest:
		return "QUEST ITEMS"
	case item.Valuable:
		return "VALUABLES"
	}
	return "MISCELLANEOUS"
}

// box builds a fixed-width frame drawn with box characters.
type box struct {
	lines []string
}

func (b *box) top()     { b.lines = append(b.lines, "╔"+strings.Repeat("═", boxWidth)+"╗") }
func (b *box) divider() { b.lines = append(b.lines, "╠"+strings.Repeat("═", boxWidth)+"╣") }
func (b *box) bottom()  { b.lines = append(b.lines, "╚"+strings.Repeat("═", boxWidth)+"╝") }
func (b *box) blank()   { b.row("") }

func (b *box) row(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	s = truncate.String(s, boxWidth)
	pad := max(0, boxWidth-ansi.PrintableRuneWidth(s))
	b.lines = append(b.lines, "║"+s+strings.Repeat(" ", pad)+"║")
}

func (b *box) center(s string) {
	left := max(0, (boxWidth-len([]rune(s)))/2)
	b.row("%s%s", strings.Repeat(" ", left), s)
}

func (b *box) String() string {
	return strings.Join(b.lines, "\n")
}

func progressBar(current, maximum int) (string, int) {
	pct := 0
	if maximum > 0 {
		pct = current * 100 / maximum
	}
	pct = min(max(pct, 0), 100)
	fill := pct * progressLength / 100
	return strings.Repeat("█", fill) + strings.Repeat("░", progressLength-fill), pct
}

// inventorySections groups carried items by category. Each line carries a
// count for duplicates and the unit weight.
func (e *Engine) inventorySections(c *actor.Character, b *box) {
	counts := make(map[string]int)
	details := make(map[string]*item.Item)
	for _, id := range c.Inventory {
		it, ok := e.catalog.Item(id)
		if !ok {
			continue
		}
		counts[it.ShortDesc]++
		details[it.ShortDesc] = it
	}

	grouped := make(map[string][]string)
	for name, it := range details {
		line := "  " + name
		if n := counts[name]; n > 1 {
			line += fmt.Sprintf(" (x%d)", n)
		}
		line += fmt.Sprintf(" [%.1fkg]", it.Weight())
		title := categoryTitle(it.Category())
		grouped[title] = append(grouped[title], line)
	}

	for _, title := range categoryTitles {
		lines := grouped[title]
		if len(lines) == 0 {
			continue
		}
		slices.Sort(lines)
		b.row("  %s", title)
		b.row("  ──────────────")
		for _, l := range lines {
			b.row("  %s", l)
		}
		b.blank()
	}
}

func (e *Engine) cmdInventory(c *actor.Character) string {
	if len(c.Inventory) == 0 {
		return "Your inventory is empty."
	}

	var b box
	b.top()
	b.center("INVENTORY")
	b.divider()
	b.row("  Total Weight: %.1fkg", c.CalculateTotalWeight(e.catalog))
	b.blank()

	equipped := false
	for _, slot := range item.Slots {
		id := c.Equipment.Get(slot)
		if id == "" {
			continue
		}
		if !equipped {
			b.row("  EQUIPPED ITEMS")
			b.row("  ──────────────")
			equipped = true
		}
		it, ok := e.catalog.Item(id)
		if !ok {
			continue
		}
		b.row("  %-8s: %s (%.1fkg)", world.DisplayName(string(slot)), it.ShortDesc, it.Weight())
	}
	if equipped {
		b.blank()
	}

	e.inventorySections(c, &b)
	b.row("  Money: %s", formatPrice(c.Money))
	b.bottom()
	return b.String()
}

// statsSheet renders the character sheet: progression bars, combat stats,
// equipment and the categorized inventory.
func (e *Engine) statsSheet(c *actor.Character) string {
	s := c.Stats
	hpBar, hpPct := progressBar(s.CurrentHP, s.MaxHP)
	xpBar, xpPct := progressBar(s.XP, s.XPToNextLevel)

	equip := make(map[item.Slot]string, len(item.Slots))
	for _, slot := range item.Slots {
		equip[slot] = "None"
		if id := c.Equipment.Get(slot); id != "" {
			if it, ok := e.catalog.Item(id); ok {
				equip[slot] = truncate.String(fmt.Sprintf("%s (%.1fkg)", it.ShortDesc, it.Weight()), equipWidth)
			}
		}
	}

	var b box
	b.top()
	b.center(c.Name)
	b.divider()
	b.row("  %-28sGold: %d", fmt.Sprintf("Level: %d", s.Level), c.Money)
	b.row("  Weight Carried: %.1fkg / %.1fkg", c.CalculateTotalWeight(e.catalog), s.WeightLimit)
	b.blank()
	b.row("  HP: %d/%d", s.CurrentHP, s.MaxHP)
	b.row("  [%s] %3d%%", hpBar, hpPct)
	b.blank()
	b.row("  XP: %d/%d", s.XP, s.XPToNextLevel)
	b.row("  [%s] %3d%%", xpBar, xpPct)
	b.divider()
	b.row("  %-24s%s", "COMBAT STATS", "EQUIPMENT")
	b.row("  %-24s%s", "───────────────", "──────────")
	b.row("  %-24sWeapon:  %s", fmt.Sprintf("Attack:  %d", s.Attack), equip[item.SlotWeapon])
	b.row("  %-24sArmor:   %s", fmt.Sprintf("Defense: %d", s.Defense), equip[item.SlotArmor])
	b.row("  %-24sRing:    %s", "", equip[item.SlotRing])
	b.row("  %-24sAmulet:  %s", "", equip[item.SlotAmulet])
	b.divider()
	b.center("INVENTORY")
	b.divider()
	e.inventorySections(c, &b)
	b.bottom()
	return b.String()
}

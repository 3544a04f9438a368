package actor

import (
	"maps"
	"slices"
)

type MobStats struct {
	MaxHP     int `json:"max_hp"`
	CurrentHP int `json:"current_hp,omitempty"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	XPValue   int `json:"xp_value"`
}

// Mob is a creature template loaded from the catalog. An encounter works on
// a copy made by NewEncounter, never on the template itself.
type Mob struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	ShortDesc  string             `json:"short_desc"`
	LongDesc   string             `json:"long_desc"`
	Level      int                `json:"level"`
	Stats      MobStats           `json:"stats"`
	LootTable  map[string]float64 `json:"loot_table,omitempty"`
	SpawnAreas []string           `json:"spawn_areas,omitempty"`
}

// NewEncounter creates a fresh instance of a mob template with full HP.
func NewEncounter(template *Mob) *Mob {
	if template == nil {
		return nil
	}
	m := template.Clone()
	m.Stats.CurrentHP = m.Stats.MaxHP
	return m
}

// Clone deep-copies the mob, including its current HP.
func (m *Mob) Clone() *Mob {
	out := *m
	out.LootTable = maps.Clone(m.LootTable)
	out.SpawnAreas = slices.Clone(m.SpawnAreas)
	return &out
}

// SpawnsIn reports whether the mob appears in the given room.
func (m *Mob) SpawnsIn(roomID string) bool {
	return slices.Contains(m.SpawnAreas, roomID)
}

// TakeDamage reduces the mob's HP. HP may go negative so the killing blow
// is visible in combat output.
func (m *Mob) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	m.Stats.CurrentHP -= n
}

// IsDefeated returns true if the mob's HP is 0 or less.
func (m *Mob) IsDefeated() bool {
	return m.Stats.CurrentHP <= 0
}

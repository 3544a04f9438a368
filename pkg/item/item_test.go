package item

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItem_Slot(t *testing.T) {
	tests := []struct {
		category Category
		slot     Slot
		ok       bool
	}{
		{Weapon, SlotWeapon, true},
		{Armor, SlotArmor, true},
		{Ring, SlotRing, true},
		{Amulet, SlotAmulet, true},
		{Consumable, "", false},
		{Quest, "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			it := &Item{Properties: Properties{Type: tt.category}}
			slot, ok := it.Slot()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.slot, slot)
		})
	}
}

func TestItem_RespawnDelay(t *testing.T) {
	it := &Item{Properties: Properties{Respawnable: true}}
	assert.Equal(t, DefaultRespawnTime, it.RespawnDelay())

	it.Properties.RespawnTime = 10
	assert.Equal(t, 10*time.Second, it.RespawnDelay())
}

func TestIndex(t *testing.T) {
	idx := Index{"sword": {ID: "sword", ShortDesc: "a rusty sword"}}

	assert.Equal(t, "a rusty sword", ShortDesc(idx, "sword"))
	assert.Equal(t, "ghost", ShortDesc(idx, "ghost"))

	var nilItem *Item
	assert.Zero(t, nilItem.Weight())
	assert.Equal(t, Misc, (&Item{}).Category())
}

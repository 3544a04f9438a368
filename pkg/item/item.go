// Package item holds the immutable item templates referenced by rooms,
// inventories and equipment slots.
package item

import "time"

// DefaultRespawnTime applies to respawnable items that do not set respawn_time.
const DefaultRespawnTime = 1800 * time.Second

// Category is the "type" property of an item.
type Category string

const (
	Weapon     Category = "weapon"
	Armor      Category = "armor"
	Ring       Category = "ring"
	Amulet     Category = "amulet"
	Consumable Category = "consumable"
	Quest      Category = "quest"
	Valuable   Category = "valuable"
	Misc       Category = "misc"
)

// Slot is an equipment slot on a character.
type Slot string

const (
	SlotWeapon Slot = "weapon"
	SlotArmor  Slot = "armor"
	SlotRing   Slot = "ring"
	SlotAmulet Slot = "amulet"
)

// Slots lists the equipment slots in display order.
var Slots = []Slot{SlotWeapon, SlotArmor, SlotRing, SlotAmulet}

// UseEffect describes what happens when a consumable is used.
type UseEffect struct {
	Type   string `json:"type"`
	Amount int    `json:"amount,omitempty"`
}

const EffectHeal = "heal"

type Properties struct {
	Type        Category `json:"type,omitempty"`
	Weight      float64  `json:"weight,omitempty"`
	Damage      int      `json:"damage,omitempty"`
	Defense     int      `json:"defense,omitempty"`
	Value       int      `json:"value,omitempty"`
	Magic       bool     `json:"magic,omitempty"`
	Respawnable bool     `json:"respawnable,omitempty"`
	RespawnTime int      `json:"respawn_time,omitempty"` // seconds
}

// Item is a catalog entry. Rooms and characters refer to items by ID only.
type Item struct {
	ID         string     `json:"id"`
	ShortDesc  string     `json:"short_desc"`
	LongDesc   string     `json:"long_desc"`
	Properties Properties `json:"properties"`
	UseEffect  *UseEffect `json:"use_effect,omitempty"`
}

func (it *Item) Weight() float64 {
	if it == nil {
		return 0
	}
	return it.Properties.Weight
}

// Category returns the item type, defaulting to Misc.
func (it *Item) Category() Category {
	if it.Properties.Type == "" {
		return Misc
	}
	return it.Properties.Type
}

// Slot returns the equipment slot the item occupies, if any.
func (it *Item) Slot() (Slot, bool) {
	switch it.Properties.Type {
	case Weapon:
		return SlotWeapon, true
	case Armor:
		return SlotArmor, true
	case Ring:
		return SlotRing, true
	case Amulet:
		return SlotAmulet, true
	}
	return "", false
}

// RespawnDelay is how long a respawnable item stays gone once taken.
func (it *Item) RespawnDelay() time.Duration {
	if it.Properties.RespawnTime <= 0 {
		return DefaultRespawnTime
	}
	return time.Duration(it.Properties.RespawnTime) * time.Second
}

// Catalog resolves item templates by ID.
type Catalog interface {
	Item(id string) (*Item, bool)
}

// Index is a map-backed Catalog.
type Index map[string]*Item

func (idx Index) Item(id string) (*Item, bool) {
	it, ok := idx[id]
	return it, ok
}

// ShortDesc returns the item's short description, or the raw ID when the
// catalog does not know it.
func ShortDesc(c Catalog, id string) string {
	if it, ok := c.Item(id); ok {
		return it.ShortDesc
	}
	return id
}

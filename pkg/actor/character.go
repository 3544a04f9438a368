package actor

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/jwebster45206/mud-engine/pkg/item"
)

// Starting values for newly created characters.
const (
	StartLevel       = 1
	StartHP          = 100
	StartAttack      = 10
	StartDefense     = 5
	StartXPToNext    = 100
	StartWeightLimit = 20.0
	StartMoney       = 100
)

var (
	ErrNotCarried     = errors.New("item not carried")
	ErrUnknownItem    = errors.New("unknown item")
	ErrNotEquippable  = errors.New("item cannot be equipped")
	ErrSlotEmpty      = errors.New("nothing equipped in slot")
	ErrInvalidSlot    = errors.New("invalid equipment slot")
	ErrEmptyCharacter = errors.New("character name cannot be empty")
)

// Stats holds a character's progression values. BaseStats carries the
// unmodified values, Stats additionally reflects equipped item bonuses.
type Stats struct {
	Level         int     `json:"level"`
	MaxHP         int     `json:"max_hp"`
	CurrentHP     int     `json:"current_hp"`
	Attack        int     `json:"attack"`
	Defense       int     `json:"defense"`
	XP            int     `json:"xp"`
	XPToNextLevel int     `json:"xp_to_next_level"`
	WeightLimit   float64 `json:"weight_limit"`
}

// Equipment has one fixed slot per item.Slot. Empty string means empty slot.
type Equipment struct {
	Weapon string `json:"weapon,omitempty"`
	Armor  string `json:"armor,omitempty"`
	Ring   string `json:"ring,omitempty"`
	Amulet string `json:"amulet,omitempty"`
}

func (e *Equipment) Get(slot item.Slot) string {
	switch slot {
	case item.SlotWeapon:
		return e.Weapon
	case item.SlotArmor:
		return e.Armor
	case item.SlotRing:
		return e.Ring
	case item.SlotAmulet:
		return e.Amulet
	}
	return ""
}

func (e *Equipment) set(slot item.Slot, id string) {
	switch slot {
	case item.SlotWeapon:
		e.Weapon = id
	case item.SlotArmor:
		e.Armor = id
	case item.SlotRing:
		e.Ring = id
	case item.SlotAmulet:
		e.Amulet = id
	}
}

// Equipped returns the non-empty slots.
func (e *Equipment) Equipped() map[item.Slot]string {
	out := make(map[item.Slot]string)
	for _, s := range item.Slots {
		if id := e.Get(s); id != "" {
			out[s] = id
		}
	}
	return out
}

// CombatState tracks the character's current encounter.
type CombatState struct {
	InCombat bool   `json:"in_combat"`
	Target   string `json:"target,omitempty"`
	Turns    int    `json:"turns_in_combat"`
	Mob      *Mob   `json:"mob_state,omitempty"`
}

// Engaged reports whether an encounter is active.
func (cs *CombatState) Engaged() bool {
	return cs.InCombat
}

// Reset returns the state machine to idle.
func (cs *CombatState) Reset() {
	*cs = CombatState{}
}

// RemovalRecord is a respawn ticket for an item taken from a room.
type RemovalRecord struct {
	Room      string    `json:"room"`
	World     string    `json:"world"`
	RemovedAt time.Time `json:"time"`
}

type WorldState struct {
	RemovedItems map[string]RemovalRecord `json:"removed_items"`
}

// Character is the player's persistent record.
type Character struct {
	Name         string                    `json:"name"`
	World        string                    `json:"world"`
	CurrentRoom  string                    `json:"current_room"`
	Inventory    []string                  `json:"inventory"`
	Equipment    Equipment                 `json:"equipment"`
	BaseStats    Stats                     `json:"base_stats"`
	Stats        Stats                     `json:"stats"`
	Money        int                       `json:"money"`
	KnownTopics  map[string][]string       `json:"known_topics"`
	DefeatedMobs map[string][]string       `json:"defeated_mobs"`
	WorldState   WorldState                `json:"world_state"`
	CombatState  CombatState               `json:"combat_state"`
	Merchants    map[string]*MerchantState `json:"merchants,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// CharacterID normalizes a character name into its repository key.
func CharacterID(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewCharacter builds a character with the default starting stats.
func NewCharacter(name, world, room string, now time.Time) (*Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCharacter
	}
	stats := Stats{
		Level:         StartLevel,
		MaxHP:         StartHP,
		CurrentHP:     StartHP,
		Attack:        StartAttack,
		Defense:       StartDefense,
		XPToNextLevel: StartXPToNext,
		WeightLimit:   StartWeightLimit,
	}
	c := &Character{
		Name:        name,
		World:       world,
		CurrentRoom: room,
		Inventory:   []string{},
		BaseStats:   stats,
		Stats:       stats,
		Money:       StartMoney,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.ensureMaps()
	return c, nil
}

func (c *Character) ID() string {
	return CharacterID(c.Name)
}

func (c *Character) ensureMaps() {
	if c.Inventory == nil {
		c.Inventory = []string{}
	}
	if c.KnownTopics == nil {
		c.KnownTopics = make(map[string][]string)
	}
	if c.DefeatedMobs == nil {
		c.DefeatedMobs = make(map[string][]string)
	}
	if c.WorldState.RemovedItems == nil {
		c.WorldState.RemovedItems = make(map[string]RemovalRecord)
	}
	if c.Merchants == nil {
		c.Merchants = make(map[string]*MerchantState)
	}
}

// Normalize fills nil collections after decoding a stored record.
func (c *Character) Normalize() {
	c.ensureMaps()
}

// Clone returns a deep copy of the character.
func (c *Character) Clone() *Character {
	out := *c
	out.Inventory = slices.Clone(c.Inventory)
	if out.Inventory == nil {
		out.Inventory = []string{}
	}
	out.KnownTopics = cloneSets(c.KnownTopics)
	out.DefeatedMobs = cloneSets(c.DefeatedMobs)
	out.WorldState.RemovedItems = make(map[string]RemovalRecord, len(c.WorldState.RemovedItems))
	for k, v := range c.WorldState.RemovedItems {
		out.WorldState.RemovedItems[k] = v
	}
	if c.CombatState.Mob != nil {
		out.CombatState.Mob = c.CombatState.Mob.Clone()
	}
	out.Merchants = make(map[string]*MerchantState, len(c.Merchants))
	for k, v := range c.Merchants {
		out.Merchants[k] = v.clone()
	}
	return &out
}

func cloneSets(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}

// Inventory and weight

// CalculateTotalWeight sums inventory and equipped item weights. Items the
// catalog does not know, or that carry no weight, count as zero.
func (c *Character) CalculateTotalWeight(cat item.Catalog) float64 {
	var total float64
	for _, id := range c.Inventory {
		if it, ok := cat.Item(id); ok {
			total += it.Weight()
		}
	}
	for _, id := range c.Equipment.Equipped() {
		if it, ok := cat.Item(id); ok {
			total += it.Weight()
		}
	}
	return total
}

// CanCarry reports whether additional weight fits under the weight limit.
func (c *Character) CanCarry(cat item.Catalog, additional float64) bool {
	return c.CalculateTotalWeight(cat)+additional <= c.Stats.WeightLimit
}

// AddToInventory appends an item if it is known and fits. It returns false
// without mutating anything otherwise.
func (c *Character) AddToInventory(cat item.Catalog, id string) bool {
	it, ok := cat.Item(id)
	if !ok {
		return false
	}
	if !c.CanCarry(cat, it.Weight()) {
		return false
	}
	c.Inventory = append(c.Inventory, id)
	return true
}

// RemoveFromInventory removes the first instance of id.
func (c *Character) RemoveFromInventory(id string) bool {
	i := slices.Index(c.Inventory, id)
	if i < 0 {
		return false
	}
	c.Inventory = slices.Delete(c.Inventory, i, i+1)
	return true
}

func (c *Character) HasItem(id string) bool {
	return slices.Contains(c.Inventory, id)
}

// Equipment

// Equip moves an inventory item into its slot. A previous occupant goes back
// to the inventory and is returned.
func (c *Character) Equip(cat item.Catalog, id string) (item.Slot, string, error) {
	if !c.HasItem(id) {
		return "", "", ErrNotCarried
	}
	it, ok := cat.Item(id)
	if !ok {
		return "", "", ErrUnknownItem
	}
	slot, ok := it.Slot()
	if !ok {
		return "", "", ErrNotEquippable
	}
	prev := c.Equipment.Get(slot)
	c.RemoveFromInventory(id)
	if prev != "" {
		c.Inventory = append(c.Inventory, prev)
	}
	c.Equipment.set(slot, id)
	c.applyEquipment(cat)
	return slot, prev, nil
}

// Unequip moves the item in slot back to the inventory.
func (c *Character) Unequip(cat item.Catalog, slot item.Slot) (string, error) {
	if !slices.Contains(item.Slots, slot) {
		return "", ErrInvalidSlot
	}
	id := c.Equipment.Get(slot)
	if id == "" {
		return "", ErrSlotEmpty
	}
	c.Equipment.set(slot, "")
	c.Inventory = append(c.Inventory, id)
	c.applyEquipment(cat)
	return id, nil
}

// applyEquipment recomputes current attack and defense from base stats plus
// the bonuses of everything equipped.
func (c *Character) applyEquipment(cat item.Catalog) {
	attack, defense := c.BaseStats.Attack, c.BaseStats.Defense
	for _, id := range c.Equipment.Equipped() {
		it, ok := cat.Item(id)
		if !ok {
			continue
		}
		attack += it.Properties.Damage
		defense += it.Properties.Defense
	}
	c.Stats.Attack = attack
	c.Stats.Defense = defense
}

// Money

func (c *Character) AddMoney(amount int) {
	if amount <= 0 {
		return
	}
	c.Money += amount
}

// RemoveMoney fails without mutation when the balance is short.
func (c *Character) RemoveMoney(amount int) bool {
	if amount < 0 || c.Money < amount {
		return false
	}
	c.Money -= amount
	return true
}

// Dialogue memory

func (c *Character) Topics(npcID string) []string {
	return c.KnownTopics[npcID]
}

func (c *Character) KnowsTopic(npcID, topicID string) bool {
	return slices.Contains(c.KnownTopics[npcID], topicID)
}

// AddKnownTopic is an idempotent set insert.
func (c *Character) AddKnownTopic(npcID, topicID string) {
	if c.KnownTopics == nil {
		c.KnownTopics = make(map[string][]string)
	}
	if c.KnowsTopic(npcID, topicID) {
		return
	}
	c.KnownTopics[npcID] = append(c.KnownTopics[npcID], topicID)
}

// Progression

// LevelUp applies one level of growth. Callers loop while
// Stats.XP >= Stats.XPToNextLevel.
func (c *Character) LevelUp() {
	for _, s := range []*Stats{&c.BaseStats, &c.Stats} {
		s.Level++
		s.MaxHP += 10
		s.CurrentHP = s.MaxHP
		s.Attack += 2
		s.Defense++
		s.WeightLimit += 2.0
		s.XP -= s.XPToNextLevel
		next := s.XPToNextLevel * 3 / 2
		if next <= s.XPToNextLevel {
			next = s.XPToNextLevel + 1
		}
		s.XPToNextLevel = next
	}
}

// GainXP adds experience and levels up as many times as it allows. It returns
// the levels gained.
func (c *Character) GainXP(amount int) int {
	c.Stats.XP += amount
	c.BaseStats.XP = c.Stats.XP
	levels := 0
	for c.Stats.XP >= c.Stats.XPToNextLevel {
		c.LevelUp()
		levels++
	}
	return levels
}

// LoseXP removes experience, never dropping below zero.
func (c *Character) LoseXP(amount int) {
	c.Stats.XP = max(0, c.Stats.XP-amount)
	c.BaseStats.XP = c.Stats.XP
}

// Heal restores HP up to the maximum and returns the amount actually healed.
func (c *Character) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := c.Stats.CurrentHP
	c.Stats.CurrentHP = min(c.Stats.MaxHP, c.Stats.CurrentHP+amount)
	return c.Stats.CurrentHP - before
}

// TakeDamage lowers HP, clamping at zero.
func (c *Character) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	c.Stats.CurrentHP = max(0, c.Stats.CurrentHP-n)
}

// Location

// SetCurrentRoom moves the character. Any real room change forgets every
// defeated mob, not only those of the room being left.
func (c *Character) SetCurrentRoom(roomID string) {
	if roomID != c.CurrentRoom {
		c.DefeatedMobs = make(map[string][]string)
	}
	c.CurrentRoom = roomID
}

// AddDefeatedMob marks a mob defeated in the current room.
func (c *Character) AddDefeatedMob(mobID string) {
	if c.DefeatedMobs == nil {
		c.DefeatedMobs = make(map[string][]string)
	}
	room := c.CurrentRoom
	if slices.Contains(c.DefeatedMobs[room], mobID) {
		return
	}
	c.DefeatedMobs[room] = append(c.DefeatedMobs[room], mobID)
}

func (c *Character) IsMobDefeated(roomID, mobID string) bool {
	return slices.Contains(c.DefeatedMobs[roomID], mobID)
}

// Merchant returns this character's view of an NPC's shop, cloning the
// template stock on first use. It returns nil for NPCs that do not trade.
func (c *Character) Merchant(npc *NPC) *MerchantState {
	if npc == nil || npc.MerchantData == nil {
		return nil
	}
	if c.Merchants == nil {
		c.Merchants = make(map[string]*MerchantState)
	}
	ms, ok := c.Merchants[npc.ID]
	if !ok {
		ms = NewMerchantState(npc.MerchantData)
		c.Merchants[npc.ID] = ms
	}
	return ms
}

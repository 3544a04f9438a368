package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/content"
	"github.com/jwebster45206/mud-engine/pkg/item"
	"github.com/jwebster45206/mud-engine/pkg/world"
)

// Validator collects problems across catalog and world files so that one
// run reports all of them.
type Validator struct {
	errors []string

	items  map[string]*item.Item
	npcs   map[string]*actor.NPC
	mobs   map[string]*actor.Mob
	worlds map[string][]*world.Room

	// checkRefs is false when validating world files without catalogs.
	checkRefs bool
}

func NewValidator() *Validator {
	return &Validator{
		items:  make(map[string]*item.Item),
		npcs:   make(map[string]*actor.NPC),
		mobs:   make(map[string]*actor.Mob),
		worlds: make(map[string][]*world.Room),
	}
}

func (v *Validator) Errors() []string {
	return v.errors
}

func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return fmt.Errorf("%d validation error(s):\n%s", len(v.errors), strings.Join(v.errors, "\n"))
}

func (v *Validator) addError(format string, args ...any) {
	v.errors = append(v.errors, "  - "+fmt.Sprintf(format, args...))
}

// ValidateDir checks every catalog and every world under dir, then the
// references between them.
func (v *Validator) ValidateDir(dir string) {
	v.checkRefs = true
	loadCatalog(v, dir, "items", content.SchemaItem, v.items)
	loadCatalog(v, dir, "npcs", content.SchemaNPC, v.npcs)
	loadCatalog(v, dir, "mobs", content.SchemaMob, v.mobs)

	var files []string
	for _, ext := range content.Extensions {
		matches, _ := filepath.Glob(filepath.Join(dir, "worlds", "*"+ext))
		files = append(files, matches...)
	}
	slices.Sort(files)
	if len(files) == 0 {
		v.addError("no world files found in %s", filepath.Join(dir, "worlds"))
	}
	v.loadWorlds(files)
	v.checkWorlds()
	v.checkCatalogRefs()
}

// ValidateWorldFiles checks world files on their own. Transitions are only
// followed into worlds named on the command line.
func (v *Validator) ValidateWorldFiles(files []string) {
	v.loadWorlds(files)
	v.checkWorlds()
}

func loadCatalog[T any](v *Validator, dir, base string, schema content.SchemaName, into map[string]*T) {
	path := content.FindFile(dir, base)
	if path == "" {
		v.addError("%s catalog not found in %s", base, dir)
		return
	}
	records, err := content.ReadRecords(path, base, schema)
	if err != nil {
		v.addError("%v", err)
		return
	}
	for _, r := range records {
		v.validateIDFormat(base+" id", r.ID)
		if _, dup := into[r.ID]; dup {
			v.addError("%s: duplicate id '%s'", filepath.Base(path), r.ID)
			continue
		}
		var t T
		if err := json.Unmarshal(r.Data, &t); err != nil {
			v.addError("%s: %s: %v", filepath.Base(path), r.ID, err)
			continue
		}
		into[r.ID] = &t
	}
}

func (v *Validator) loadWorlds(files []string) {
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		if !isValidID(name) {
			v.addError("world filename '%s' should be lowercase snake_case", filepath.Base(f))
		}
		if _, err := os.Stat(f); err != nil {
			v.addError("%v", err)
			continue
		}
		rooms, err := world.ReadFile(f)
		if err != nil {
			v.addError("%v", err)
			continue
		}
		v.worlds[name] = rooms
	}
}

func (v *Validator) hasRoom(worldName, roomID string) bool {
	for _, r := range v.worlds[worldName] {
		if r.ID == roomID {
			return true
		}
	}
	return false
}

func (v *Validator) checkWorlds() {
	names := make([]string, 0, len(v.worlds))
	for name := range v.worlds {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		seen := make(map[string]bool)
		for _, r := range v.worlds[name] {
			where := fmt.Sprintf("world %s room %s", name, r.ID)
			v.validateIDFormat("room id in world "+name, r.ID)
			if seen[r.ID] {
				v.addError("world %s: duplicate room id '%s'", name, r.ID)
			}
			seen[r.ID] = true

			for _, dir := range r.Directions() {
				v.checkExit(where, name, dir, r.Exits[dir])
			}
			if !v.checkRefs {
				continue
			}
			for _, id := range r.Items {
				if _, ok := v.items[id]; !ok {
					v.addError("%s: unknown item '%s'", where, id)
				}
			}
			for _, id := range r.NPCs {
				if _, ok := v.npcs[id]; !ok {
					v.addError("%s: unknown npc '%s'", where, id)
				}
			}
		}
	}
}

func (v *Validator) checkExit(where, worldName, dir string, e world.Exit) {
	switch e.Kind {
	case world.ExitRoom:
		if !v.hasRoom(worldName, e.Target) {
			v.addError("%s: exit %s leads to unknown room '%s'", where, dir, e.Target)
		}
	case world.ExitTransition:
		if _, loaded := v.worlds[e.TargetWorld]; !loaded {
			if v.checkRefs {
				v.addError("%s: exit %s leads to unknown world '%s'", where, dir, e.TargetWorld)
			}
		} else if !v.hasRoom(e.TargetWorld, e.Target) {
			v.addError("%s: exit %s leads to unknown room '%s' in world %s", where, dir, e.Target, e.TargetWorld)
		}
		if e.Requirements != nil && e.Requirements.Item != "" && v.checkRefs {
			if _, ok := v.items[e.Requirements.Item]; !ok {
				v.addError("%s: exit %s requires unknown item '%s'", where, dir, e.Requirements.Item)
			}
		}
	}
}

func (v *Validator) anyRoom(roomID string) bool {
	for name := range v.worlds {
		if v.hasRoom(name, roomID) {
			return true
		}
	}
	return false
}

func (v *Validator) requireItem(where, field, id string) {
	if id == "" {
		return
	}
	if _, ok := v.items[id]; !ok {
		v.addError("%s: %s references unknown item '%s'", where, field, id)
	}
}

func (v *Validator) checkCatalogRefs() {
	for _, id := range sortedKeys(v.mobs) {
		mob := v.mobs[id]
		where := "mob " + id
		for _, lootID := range sortedKeys(mob.LootTable) {
			v.requireItem(where, "loot_table", lootID)
		}
		for _, room := range mob.SpawnAreas {
			if !v.anyRoom(room) {
				v.addError("%s: spawn area '%s' is not a room in any world", where, room)
			}
		}
	}

	for _, id := range sortedKeys(v.npcs) {
		npc := v.npcs[id]
		where := "npc " + id
		topics := npc.Dialogue.Topics
		for _, topicID := range topics.IDs() {
			t, _ := topics.Get(topicID)
			tw := fmt.Sprintf("%s topic %s", where, topicID)
			if t.RequiresTopic != "" {
				if _, ok := topics.Get(t.RequiresTopic); !ok {
					v.addError("%s: requires unknown topic '%s'", tw, t.RequiresTopic)
				}
			}
			v.requireItem(tw, "item_requirement", t.ItemRequirement)
			if t.Effects != nil {
				v.requireItem(tw, "add_item", t.Effects.AddItem)
				for _, u := range t.Effects.UnlockTopics {
					if _, ok := topics.Get(u); !ok {
						v.addError("%s: unlocks unknown topic '%s'", tw, u)
					}
				}
				if t.Effects.UnlockMerchant && npc.MerchantData == nil {
					v.addError("%s: unlocks a merchant but the npc has no merchant_data", tw)
				}
			}
		}
		if npc.MerchantData != nil {
			for _, itemID := range sortedKeys(npc.MerchantData.Inventory) {
				v.requireItem(where, "merchant inventory", itemID)
			}
			for _, itemID := range sortedKeys(npc.MerchantData.PremiumInventory) {
				v.requireItem(where, "premium inventory", itemID)
			}
		}
	}
}

func (v *Validator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !isValidID(id) {
		v.addError("%s '%s' should be lowercase snake_case", fieldName, id)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

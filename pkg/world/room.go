// Package world owns the room graphs of every loaded world: exit
// resolution, item placement, per-character respawns and room descriptions.
package world

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const DefaultPortalDescription = "A portal to another realm."

type ExitKind int

const (
	ExitRoom ExitKind = iota
	ExitTransition
)

// Requirements gate a world transition. Zero values mean no requirement.
type Requirements struct {
	Level int    `json:"level,omitempty"`
	Item  string `json:"item,omitempty"`
}

// Exit is either a plain room id in the same world or a world transition.
type Exit struct {
	Kind         ExitKind
	Target       string
	TargetWorld  string
	Description  string
	Requirements *Requirements
}

type transitionJSON struct {
	Type         string        `json:"type"`
	TargetWorld  string        `json:"target_world"`
	TargetRoom   string        `json:"target_room"`
	Description  string        `json:"description,omitempty"`
	Requirements *Requirements `json:"requirements,omitempty"`
}

func (e *Exit) UnmarshalJSON(data []byte) error {
	var target string
	if err := json.Unmarshal(data, &target); err == nil {
		*e = Exit{Kind: ExitRoom, Target: target}
		return nil
	}
	var t transitionJSON
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("exit must be a room id or a transition: %w", err)
	}
	if t.Type != "world_transition" {
		return fmt.Errorf("unknown exit type %q", t.Type)
	}
	if t.Description == "" {
		t.Description = DefaultPortalDescription
	}
	*e = Exit{
		Kind:         ExitTransition,
		Target:       t.TargetRoom,
		TargetWorld:  t.TargetWorld,
		Description:  t.Description,
		Requirements: t.Requirements,
	}
	return nil
}

func (e Exit) MarshalJSON() ([]byte, error) {
	if e.Kind == ExitRoom {
		return json.Marshal(e.Target)
	}
	return json.Marshal(transitionJSON{
		Type:         "world_transition",
		TargetWorld:  e.TargetWorld,
		TargetRoom:   e.Target,
		Description:  e.Description,
		Requirements: e.Requirements,
	})
}

type Room struct {
	ID        string          `json:"id"`
	ShortDesc string          `json:"short_desc,omitempty"`
	LongDesc  string          `json:"long_desc"`
	Type      string          `json:"type,omitempty"`
	Exits     map[string]Exit `json:"exits,omitempty"`
	Items     []string        `json:"items,omitempty"`
	NPCs      []string        `json:"npcs,omitempty"`
}

func (r *Room) clone() *Room {
	out := *r
	out.Exits = maps.Clone(r.Exits)
	out.Items = slices.Clone(r.Items)
	out.NPCs = slices.Clone(r.NPCs)
	return &out
}

var directionOrder = map[string]int{"north": 0, "south": 1, "east": 2, "west": 3, "up": 4, "down": 5}

// Directions returns the room's exit directions, compass directions first
// and anything else alphabetically.
func (r *Room) Directions() []string {
	dirs := slices.Collect(maps.Keys(r.Exits))
	slices.SortFunc(dirs, func(a, b string) int {
		ia, oka := directionOrder[a]
		ib, okb := directionOrder[b]
		switch {
		case oka && okb:
			return ia - ib
		case oka:
			return -1
		case okb:
			return 1
		}
		return strings.Compare(a, b)
	})
	return dirs
}

// World is a named room graph.
type World struct {
	Name  string
	Rooms []*Room
	index map[string]*Room
}

func newWorld(name string, rooms []*Room) *World {
	w := &World{Name: name, index: make(map[string]*Room, len(rooms))}
	for _, r := range rooms {
		if r == nil {
			continue
		}
		if len(r.Exits) > 0 {
			exits := make(map[string]Exit, len(r.Exits))
			for dir, e := range r.Exits {
				exits[strings.ToLower(dir)] = e
			}
			r.Exits = exits
		}
		w.Rooms = append(w.Rooms, r)
		w.index[r.ID] = r
	}
	return w
}

func (w *World) Room(id string) (*Room, bool) {
	r, ok := w.index[id]
	return r, ok
}

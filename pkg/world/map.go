package world

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/mud-engine/pkg/actor"
)

const mapCellWidth = 21

var mapOffsets = map[string][2]int{
	"north": {0, -1},
	"south": {0, 1},
	"east":  {1, 0},
	"west":  {-1, 0},
	"up":    {0, -1},
	"down":  {0, 1},
}

type mapPos struct{ x, y int }

// Map renders the character's current world as an ASCII grid, laid out
// breadth-first from the current room. Up and down are drawn as north and
// south; portal exits are not followed.
func (m *Manager) Map(c *actor.Character) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.loadLocked(c.World)
	if err != nil {
		return fmt.Sprintf("Could not generate map - world %s is unavailable.", c.World)
	}
	if _, ok := w.Room(c.CurrentRoom); !ok {
		return fmt.Sprintf("Could not generate map - room %s not found in world %s.", c.CurrentRoom, c.World)
	}

	type visit struct {
		id  string
		pos mapPos
	}
	grid := make(map[mapPos]string)
	visited := make(map[string]bool)
	queue := []visit{{c.CurrentRoom, mapPos{}}}
	minX, maxX, minY, maxY := 0, 0, 0, 0

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if visited[v.id] {
			continue
		}
		if _, taken := grid[v.pos]; taken {
			continue
		}
		visited[v.id] = true
		grid[v.pos] = v.id
		minX, maxX = min(minX, v.pos.x), max(maxX, v.pos.x)
		minY, maxY = min(minY, v.pos.y), max(maxY, v.pos.y)

		r, ok := w.Room(v.id)
		if !ok {
			continue
		}
		for _, dir := range r.Directions() {
			e := r.Exits[dir]
			off, ok := mapOffsets[dir]
			if e.Kind != ExitRoom || !ok {
				continue
			}
			next := mapPos{v.pos.x + off[0], v.pos.y + off[1]}
			if _, taken := grid[next]; !taken {
				queue = append(queue, visit{e.Target, next})
			}
		}
	}

	lines := []string{
		"",
		"World Map: " + DisplayName(w.Name),
		strings.Repeat("=", 40),
		"Legend: * = You are here",
		"       ─ | = Regular connections",
		"       ⊗ = Portal to another realm",
		"",
	}
	blank := strings.Repeat(" ", mapCellWidth)
	for y := minY; y <= maxY; y++ {
		var rooms, horiz, vert strings.Builder
		for x := minX; x <= maxX; x++ {
			id, ok := grid[mapPos{x, y}]
			if !ok {
				rooms.WriteString(blank)
				horiz.WriteString(blank)
				vert.WriteString(blank)
				continue
			}
			r, _ := w.Room(id)
			marker, portal := " ", " "
			if id == c.CurrentRoom {
				marker = "*"
			}
			if r != nil && hasPortal(r) {
				portal = "⊗"
			}
			rooms.WriteString(fmt.Sprintf("%s%-19s%s", marker, id, portal))

			if r != nil && hasRoomExit(r, "east") && grid[mapPos{x + 1, y}] != "" {
				horiz.WriteString("----" + strings.Repeat("─", mapCellWidth-4))
			} else {
				horiz.WriteString(blank)
			}
			if r != nil && y < maxY && grid[mapPos{x, y + 1}] != "" && (hasRoomExit(r, "south") || hasRoomExit(r, "down")) {
				vert.WriteString("     |" + strings.Repeat(" ", mapCellWidth-6))
			} else {
				vert.WriteString(blank)
			}
		}
		lines = append(lines, strings.TrimRight(rooms.String(), " "))
		if s := strings.TrimRight(horiz.String(), " "); s != "" {
			lines = append(lines, s)
		}
		if s := strings.TrimRight(vert.String(), " "); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

func hasPortal(r *Room) bool {
	for _, e := range r.Exits {
		if e.Kind == ExitTransition {
			return true
		}
	}
	return false
}

func hasRoomExit(r *Room, dir string) bool {
	e, ok := r.Exits[dir]
	return ok && e.Kind == ExitRoom
}

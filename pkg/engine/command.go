package engine

import "strings"

type commandType string

const (
	cmdGo        commandType = "go"
	cmdLook      commandType = "look"
	cmdInventory commandType = "inventory"
	cmdExamine   commandType = "examine"
	cmdEquip     commandType = "equip"
	cmdUnequip   commandType = "unequip"
	cmdUse       commandType = "use"
	cmdTake      commandType = "take"
	cmdDrop      commandType = "drop"
	cmdTalk      commandType = "talk"
	cmdAsk       commandType = "ask"
	cmdList      commandType = "list"
	cmdBuy       commandType = "buy"
	cmdSell      commandType = "sell"
	cmdAttack    commandType = "attack"
	cmdFlee      commandType = "flee"
	cmdStats     commandType = "stats"
	cmdMap       commandType = "map"
	cmdSacrifice commandType = "sacrifice"
	cmdGodkill   commandType = "godkill"
	cmdHelp      commandType = "help"
	cmdQuit      commandType = "quit"
	cmdNone      commandType = "" // unrecognized verb
)

// Result is the outcome of one command.
type Result struct {
	Quit    bool   `json:"quit"`
	Message string `json:"response"`
}

var known = map[string]commandType{
	"go":        cmdGo,
	"look":      cmdLook,
	"l":         cmdLook,
	"inventory": cmdInventory,
	"i":         cmdInventory,
	"examine":   cmdExamine,
	"equip":     cmdEquip,
	"eq":        cmdEquip,
	"unequip":   cmdUnequip,
	"uneq":      cmdUnequip,
	"use":       cmdUse,
	"take":      cmdTake,
	"drop":      cmdDrop,
	"talk":      cmdTalk,
	"ask":       cmdAsk,
	"list":      cmdList,
	"buy":       cmdBuy,
	"sell":      cmdSell,
	"attack":    cmdAttack,
	"a":         cmdAttack,
	"kill":      cmdAttack,
	"k":         cmdAttack,
	"flee":      cmdFlee,
	"f":         cmdFlee,
	"stats":     cmdStats,
	"st":        cmdStats,
	"map":       cmdMap,
	"sacrifice": cmdSacrifice,
	"sac":       cmdSacrifice,
	"godkill":   cmdGodkill,
	"gk":        cmdGodkill,
	"god":       cmdGodkill,
	"help":      cmdHelp,
	"quit":      cmdQuit,
	"q":         cmdQuit,
}

// directions maps movement verbs to the exit they take.
var directions = map[string]string{
	"north": "north",
	"n":     "north",
	"south": "south",
	"s":     "south",
	"east":  "east",
	"e":     "east",
	"west":  "west",
	"w":     "west",
	"up":    "up",
	"u":     "up",
	"down":  "down",
	"d":     "down",
}

// parseCommand case-folds and splits the input. The first token is the
// verb. ok is false for blank input.
func parseCommand(input string) (cmd commandType, args []string, ok bool) {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return cmdNone, nil, false
	}
	verb, args := parts[0], parts[1:]
	if dir, isDir := directions[verb]; isDir {
		return cmdGo, []string{dir}, true
	}
	return known[verb], args, true
}

var articles = map[string]bool{"a": true, "an": true, "the": true}

// searchTerms drops articles from the argument tokens.
func searchTerms(args []string) []string {
	terms := make([]string, 0, len(args))
	for _, a := range args {
		if !articles[a] {
			terms = append(terms, a)
		}
	}
	return terms
}

// matches reports whether every term is a substring of at least one whole
// candidate string. Candidates are compared case-insensitively.
func matches(terms []string, candidates ...string) bool {
	for _, cand := range candidates {
		cand = strings.ToLower(cand)
		all := true
		for _, t := range terms {
			if !strings.Contains(cand, t) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

const helpText = `Movement:
  north (n), south (s), east (e), west (w), up (u), down (d)
  go <direction>

Looking:
  look (l) - Look around
  examine <target> - Examine an item, mob, or NPC
  map - Show world map with your location

Items:
  inventory (i) - Show inventory
  take <item> - Pick up an item
  take all - Pick up all items in the room
  drop <item> - Drop an item
  equip (eq) <item> - Equip an item
  unequip (uneq) <item> - Unequip an item
  use <item> - Use a consumable item
  sacrifice (sac) <item> - Sacrifice an item for 1 XP

NPCs:
  talk <npc> - Talk to an NPC
  ask <npc> <topic> - Ask an NPC about a topic
  list - View merchant's wares
  buy <item> - Buy an item from a merchant
  sell <item> - Sell an item to a merchant

Combat:
  attack (a) <target> - Attack a target
  flee (f) - Try to escape from combat
  stats (st) - Show your character stats
  godkill (gk/god) - Instantly defeat target (cheat)

Other:
  help - Show this help message
  quit - Exit the game`

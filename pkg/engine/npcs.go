package engine

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/jwebster45206/mud-engine/pkg/actor"
	"github.com/jwebster45206/mud-engine/pkg/item"
)

// defaultSellPrice is the base price of items a merchant does not stock.
const defaultSellPrice = 10

// findNPC matches the terms against the name and short description of the
// NPCs in the character's room.
func (e *Engine) findNPC(c *actor.Character, terms []string) (*actor.NPC, bool) {
	for _, id := range e.worlds.RoomNPCs(c.World, c.CurrentRoom) {
		npc, ok := e.catalog.NPC(id)
		if !ok {
			continue
		}
		if matches(terms, npc.Name, npc.ShortDesc) {
			return npc, true
		}
	}
	return nil, false
}

func (e *Engine) cmdTalk(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Talk to whom?"
	}
	npc, ok := e.findNPC(c, searchTerms(args))
	if !ok {
		return fmt.Sprintf("You don't see %s here.", strings.Join(args, " "))
	}

	greeting := npc.Dialogue.Greeting
	if greeting == "" {
		greeting = "The NPC has nothing to say."
	}
	lines := []string{fmt.Sprintf("%s says: \"%s\"", npc.Name, greeting)}

	topics := npc.Dialogue.Topics
	if topics.Len() > 0 {
		known := c.Topics(npc.ID)
		name := strings.ToLower(npc.Name)
		lines = append(lines, "\nAvailable topics:")
		for _, id := range topics.IDs() {
			t, _ := topics.Get(id)
			if !t.Unlocked(known) {
				continue
			}
			prompt := t.Prompt
			if t.Simple || prompt == "" {
				prompt = "Ask about " + id
			}
			lines = append(lines, fmt.Sprintf("- %s (say 'ask %s about %s')", prompt, name, id))
		}
	}
	return strings.Join(lines, "\n")
}

// cmdAsk resolves "ask <npc words> [about] <topic>". The last token is the
// topic id.
func (e *Engine) cmdAsk(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Ask who about what?"
	}
	npcWords, topicID := args[:len(args)-1], args[len(args)-1]
	if n := len(npcWords); n > 0 && npcWords[n-1] == "about" {
		npcWords = npcWords[:n-1]
	}
	if len(npcWords) == 0 {
		return "Ask who?"
	}

	npc, ok := e.findNPC(c, searchTerms(npcWords))
	if !ok {
		return fmt.Sprintf("You don't see %s here.", strings.Join(npcWords, " "))
	}

	var (
		id    string
		topic *actor.Topic
	)
	for _, tid := range npc.Dialogue.Topics.IDs() {
		if strings.EqualFold(tid, topicID) {
			id = tid
			topic, _ = npc.Dialogue.Topics.Get(tid)
			break
		}
	}
	if topic == nil {
		return fmt.Sprintf("%s has nothing to say about that.", npc.Name)
	}
	if !topic.Unlocked(c.Topics(npc.ID)) {
		return fmt.Sprintf("%s isn't ready to discuss that yet.", npc.Name)
	}

	// Topics without an item requirement only pay out the first time they
	// are learned.
	response := topic.Response
	var extra []string
	applyEffects := topic.ItemRequirement == "" && !c.KnowsTopic(npc.ID, id)
	if topic.ItemRequirement != "" && c.HasItem(topic.ItemRequirement) {
		if topic.SuccessResponse != "" {
			response = topic.SuccessResponse
		}
		applyEffects = true
	}
	if applyEffects && topic.Effects != nil {
		extra = e.applyEffects(c, npc, topic)
	}

	c.AddKnownTopic(npc.ID, id)
	if topic.IsTrade {
		if ms := c.Merchant(npc); ms != nil {
			ms.Unlocked = true
		}
	}

	msg := fmt.Sprintf("%s says: \"%s\"", npc.Name, response)
	if len(extra) > 0 {
		msg += "\n" + strings.Join(extra, "\n")
	}
	return msg
}

// applyEffects runs a topic's side effects against the character and
// returns any notes worth showing the player.
func (e *Engine) applyEffects(c *actor.Character, npc *actor.NPC, topic *actor.Topic) []string {
	fx := topic.Effects
	var notes []string
	if fx.UnlockMerchant {
		if ms := c.Merchant(npc); ms != nil {
			ms.Unlocked = true
		}
	}
	if fx.RemoveItem && topic.ItemRequirement != "" {
		c.RemoveFromInventory(topic.ItemRequirement)
	}
	if fx.AddItem != "" {
		if !c.AddToInventory(e.catalog, fx.AddItem) {
			e.worlds.AddItemToRoom(c.World, c.CurrentRoom, fx.AddItem)
			notes = append(notes, fmt.Sprintf("You can't carry %s, so it is left on the ground.", item.ShortDesc(e.catalog, fx.AddItem)))
		}
	}
	c.AddMoney(fx.AddMoney)
	for _, t := range fx.UnlockTopics {
		c.AddKnownTopic(npc.ID, t)
	}
	return notes
}

// merchantHere returns the first trading NPC in the room.
func (e *Engine) merchantHere(c *actor.Character) (*actor.NPC, bool) {
	for _, id := range e.worlds.RoomNPCs(c.World, c.CurrentRoom) {
		if npc, ok := e.catalog.NPC(id); ok && npc.MerchantData != nil {
			return npc, true
		}
	}
	return nil, false
}

// tradeGate returns the merchant and its per-character state, or the
// message explaining why trading is not possible.
func (e *Engine) tradeGate(c *actor.Character) (*actor.NPC, *actor.MerchantState, string) {
	npc, ok := e.merchantHere(c)
	if !ok {
		return nil, nil, msgNoMerchant
	}
	if len(c.Topics(npc.ID)) == 0 {
		return nil, nil, fmt.Sprintf("%s isn't ready to trade. Try talking to them first.", npc.Name)
	}
	return npc, c.Merchant(npc), ""
}

type ware struct {
	id       string
	desc     string
	price    int
	stock    map[string]int
	quantity int
}

// wares lists what the merchant offers this character, regular stock first.
// Premium stock is only included once unlocked.
func (e *Engine) wares(npc *actor.NPC, ms *actor.MerchantState) (regular, premium []ware) {
	collect := func(listings map[string]actor.Listing, stock map[string]int) []ware {
		var out []ware
		for id, l := range listings {
			it, ok := e.catalog.Item(id)
			if !ok {
				continue
			}
			out = append(out, ware{id: id, desc: it.ShortDesc, price: l.Price, stock: stock, quantity: stock[id]})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
		return out
	}
	regular = collect(npc.MerchantData.Inventory, ms.Stock)
	if ms.Unlocked {
		premium = collect(npc.MerchantData.PremiumInventory, ms.PremiumStock)
	}
	return regular, premium
}

func (e *Engine) cmdList(c *actor.Character) string {
	npc, ms, reason := e.tradeGate(c)
	if npc == nil {
		return reason
	}
	regular, premium := e.wares(npc, ms)

	line := func(w ware) string {
		return fmt.Sprintf("- %s: %s (%d available)", w.desc, formatPrice(w.price), w.quantity)
	}
	lines := []string{fmt.Sprintf("%s's wares:", npc.Name)}
	for _, w := range regular {
		if w.quantity > 0 {
			lines = append(lines, line(w))
		}
	}
	if len(premium) > 0 {
		lines = append(lines, "\nPremium items:")
		for _, w := range premium {
			if w.quantity > 0 {
				lines = append(lines, line(w))
			}
		}
	}
	lines = append(lines, "\nYour money: "+formatPrice(c.Money))
	return strings.Join(lines, "\n")
}

func (e *Engine) cmdBuy(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Buy what?"
	}
	npc, ms, reason := e.tradeGate(c)
	if npc == nil {
		return reason
	}
	regular, premium := e.wares(npc, ms)
	terms := searchTerms(args)

	for _, w := range slices.Concat(regular, premium) {
		if !matches(terms, w.desc) {
			continue
		}
		if w.quantity <= 0 {
			return fmt.Sprintf("%s is out of stock of that item.", npc.Name)
		}
		if !c.RemoveMoney(w.price) {
			return fmt.Sprintf("You can't afford that. It costs %s.", formatPrice(w.price))
		}
		if !c.AddToInventory(e.catalog, w.id) {
			c.AddMoney(w.price)
			return "You can't carry that much weight."
		}
		w.stock[w.id]--
		return fmt.Sprintf("You buy %s for %s.", w.desc, formatPrice(w.price))
	}
	return fmt.Sprintf("%s doesn't have that item.", npc.Name)
}

func (e *Engine) cmdSell(c *actor.Character, args []string) string {
	if len(args) == 0 {
		return "Sell what?"
	}
	npc, _, reason := e.tradeGate(c)
	if npc == nil {
		return reason
	}
	id, it, ok := e.findItem(c.Inventory, searchTerms(args))
	if !ok {
		return msgDontHaveThat
	}
	base, listed := npc.MerchantData.PriceOf(id)
	if !listed {
		base = defaultSellPrice
	}
	price := int(float64(base) * npc.MerchantData.BuyMultiplier)

	c.RemoveFromInventory(id)
	c.AddMoney(price)
	return fmt.Sprintf("You sell %s for %s.", it.ShortDesc, formatPrice(price))
}

func formatPrice(n int) string {
	return fmt.Sprintf("%d coins", n)
}

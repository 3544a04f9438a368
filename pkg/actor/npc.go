package actor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// NPC is a non-player character with a dialogue graph and, for merchants,
// a shop.
type NPC struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	ShortDesc    string        `json:"short_desc"`
	LongDesc     string        `json:"long_desc"`
	Dialogue     Dialogue      `json:"dialogue"`
	MerchantData *MerchantData `json:"merchant_data,omitempty"`
}

type Dialogue struct {
	Greeting string `json:"greeting,omitempty"`
	Topics   Topics `json:"topics,omitempty"`
}

// Effects are applied when a topic's item requirement is met.
type Effects struct {
	UnlockMerchant bool     `json:"unlock_merchant,omitempty"`
	RemoveItem     bool     `json:"remove_item,omitempty"`
	AddItem        string   `json:"add_item,omitempty"`
	AddMoney       int      `json:"add_money,omitempty"`
	UnlockTopics   []string `json:"unlock_topics,omitempty"`
}

// Topic is one unit of dialogue. In data files a topic is either a plain
// response string or an object.
type Topic struct {
	Prompt          string   `json:"prompt,omitempty"`
	Response        string   `json:"response"`
	RequiresTopic   string   `json:"requires_topic,omitempty"`
	ItemRequirement string   `json:"item_requirement,omitempty"`
	SuccessResponse string   `json:"success_response,omitempty"`
	Effects         *Effects `json:"effects,omitempty"`
	IsTrade         bool     `json:"is_trade,omitempty"`

	// Simple is set for topics written as a bare string.
	Simple bool `json:"-"`
}

type topicFields Topic

func (t *Topic) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Topic{Response: s, Simple: true}
		return nil
	}
	var f topicFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("topic must be a string or an object: %w", err)
	}
	*t = Topic(f)
	return nil
}

func (t Topic) MarshalJSON() ([]byte, error) {
	if t.Simple {
		return json.Marshal(t.Response)
	}
	return json.Marshal(topicFields(t))
}

// Unlocked reports whether the topic can be listed or asked about given
// the topics the character already knows.
func (t *Topic) Unlocked(known []string) bool {
	return t.RequiresTopic == "" || slices.Contains(known, t.RequiresTopic)
}

// Topics keeps dialogue topics in the order they were written.
type Topics struct {
	order []string
	byID  map[string]*Topic
}

func NewTopics() Topics {
	return Topics{byID: make(map[string]*Topic)}
}

// Set adds or replaces a topic, keeping first-insertion order.
func (ts *Topics) Set(id string, t *Topic) {
	if ts.byID == nil {
		ts.byID = make(map[string]*Topic)
	}
	if _, ok := ts.byID[id]; !ok {
		ts.order = append(ts.order, id)
	}
	ts.byID[id] = t
}

func (ts Topics) Get(id string) (*Topic, bool) {
	t, ok := ts.byID[id]
	return t, ok
}

func (ts Topics) IDs() []string {
	return slices.Clone(ts.order)
}

func (ts Topics) Len() int {
	return len(ts.order)
}

func (ts *Topics) UnmarshalJSON(data []byte) error {
	*ts = NewTopics()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("topics must be an object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("topic key must be a string")
		}
		var t Topic
		if err := dec.Decode(&t); err != nil {
			return fmt.Errorf("topic %q: %w", key, err)
		}
		ts.Set(key, &t)
	}
	_, err = dec.Token()
	return err
}

func (ts Topics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range ts.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(ts.byID[id])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Listing is one line of merchant stock.
type Listing struct {
	Price    int `json:"price"`
	Quantity int `json:"quantity"`
}

// MerchantData is the shop template attached to an NPC.
type MerchantData struct {
	Inventory        map[string]Listing `json:"inventory"`
	PremiumInventory map[string]Listing `json:"premium_inventory,omitempty"`
	BuyMultiplier    float64            `json:"buy_multiplier"`
	Unlocked         bool               `json:"unlocked,omitempty"`
}

// PriceOf returns the listed price for an item from either stock list.
func (md *MerchantData) PriceOf(itemID string) (int, bool) {
	if l, ok := md.Inventory[itemID]; ok {
		return l.Price, true
	}
	if l, ok := md.PremiumInventory[itemID]; ok {
		return l.Price, true
	}
	return 0, false
}

// MerchantState is a character's own copy of a shop: remaining stock and
// whether premium stock has been unlocked for them.
type MerchantState struct {
	Unlocked     bool           `json:"unlocked"`
	Stock        map[string]int `json:"stock"`
	PremiumStock map[string]int `json:"premium_stock,omitempty"`
}

func NewMerchantState(md *MerchantData) *MerchantState {
	ms := &MerchantState{
		Unlocked:     md.Unlocked,
		Stock:        make(map[string]int, len(md.Inventory)),
		PremiumStock: make(map[string]int, len(md.PremiumInventory)),
	}
	for id, l := range md.Inventory {
		ms.Stock[id] = l.Quantity
	}
	for id, l := range md.PremiumInventory {
		ms.PremiumStock[id] = l.Quantity
	}
	return ms
}

func (ms *MerchantState) clone() *MerchantState {
	if ms == nil {
		return nil
	}
	return &MerchantState{
		Unlocked:     ms.Unlocked,
		Stock:        maps.Clone(ms.Stock),
		PremiumStock: maps.Clone(ms.PremiumStock),
	}
}

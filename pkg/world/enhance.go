package world

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EnhanceContext is the flavor passed to an Enhancer.
type EnhanceContext struct {
	TimeOfDay string
	RoomType  string
	WorldName string
}

// Enhancer rewrites a room's base text. Implementations may fail or be
// slow; callers fall back to the original text.
type Enhancer interface {
	Enhance(ctx context.Context, text string, ec EnhanceContext) (string, error)
}

// NopEnhancer returns the text unchanged.
type NopEnhancer struct{}

func (NopEnhancer) Enhance(_ context.Context, text string, _ EnhanceContext) (string, error) {
	return text, nil
}

// TimeOfDay buckets the hour of t.
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	case h >= 17 && h < 21:
		return "evening"
	default:
		return "night"
	}
}

// DisplayName turns a world id such as "spirit_realm" into "Spirit Realm".
func DisplayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

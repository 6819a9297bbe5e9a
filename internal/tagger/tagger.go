// Package tagger derives categorical tags for IDA plugins from repository
// topics, description, README and name.
package tagger

import (
	"strings"

	"github.com/asteroid-belt/idapm/internal/models"
)

// Input is the free text a plugin's tags are derived from.
type Input struct {
	Topics      []string
	Description string
	Readme      string
	Name        string
}

// Extract returns every matched tag. Tags found through topics come first,
// then description-only, README-only and name-only matches. Within each tier
// tags follow Taxonomy order. Extract never fails; no match yields nil.
func Extract(in Input) []string {
	seen := make(map[string]bool, len(Taxonomy))
	var out []string

	add := func(match func(Definition) bool) {
		for _, def := range Taxonomy {
			if !seen[def.Tag] && match(def) {
				seen[def.Tag] = true
				out = append(out, def.Tag)
			}
		}
	}

	topics := make(map[string]bool, len(in.Topics))
	for _, t := range in.Topics {
		topics[strings.ToLower(strings.TrimSpace(t))] = true
	}

	add(func(def Definition) bool {
		for _, t := range def.Topics {
			if topics[t] {
				return true
			}
		}
		return false
	})

	description := strings.ToLower(in.Description)
	add(func(def Definition) bool { return containsAny(description, def.Keywords) })

	readme := strings.ToLower(in.Readme)
	add(func(def Definition) bool { return containsAny(readme, def.Keywords) })

	name := strings.ToLower(in.Name)
	add(func(def Definition) bool {
		if containsAny(name, def.Keywords) {
			return true
		}
		for _, h := range nameHints {
			if h.tag == def.Tag && strings.Contains(name, h.substr) {
				return true
			}
		}
		return false
	})

	return out
}

func containsAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Display trims tags to the number shown in listings.
func Display(tags []string) []string {
	if len(tags) > models.MaxDisplayTags {
		return tags[:models.MaxDisplayTags]
	}
	return tags
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/shiva/propdispatch/internal/model"
)

// CategoryRule maps a category to the keywords that trigger it.
type CategoryRule struct {
	Category model.Category `mapstructure:"category"`
	Keywords []string       `mapstructure:"keywords"`
}

// ClassifierRules are the keyword tables used to triage maintenance requests.
//
// Categories are checked in slice order; the first rule with a matching keyword
// wins. UrgentKeywords are checked before HighKeywords.
type ClassifierRules struct {
	Categories     []CategoryRule `mapstructure:"categories"`
	UrgentKeywords []string       `mapstructure:"urgent_keywords"`
	HighKeywords   []string       `mapstructure:"high_keywords"`
}

// DefaultClassifierRules returns the built-in triage tables.
func DefaultClassifierRules() ClassifierRules {
	return ClassifierRules{
		Categories: []CategoryRule{
			{Category: model.CategoryPlumbing, Keywords: []string{"leak", "pipe", "drain", "water", "faucet", "toilet"}},
			{Category: model.CategoryElectrical, Keywords: []string{"light", "outlet", "power", "electric", "breaker", "wiring"}},
			{Category: model.CategoryHVAC, Keywords: []string{"heat", "ac", "air conditioning", "furnace", "thermostat", "ventilation"}},
			{Category: model.CategoryLandscaping, Keywords: []string{"lawn", "grass", "tree", "garden", "landscape"}},
			{Category: model.CategorySnowRemoval, Keywords: []string{"snow", "ice", "plow", "salt", "winter"}},
		},
		UrgentKeywords: []string{"emergency", "urgent", "immediately", "dangerous", "flooding", "fire"},
		HighKeywords:   []string{"broken", "not working", "leak", "problem", "issue"},
	}
}

// LoadClassifierRules reads rules from a YAML or JSON file. Keywords are
// lowercased; unknown categories are rejected.
//
//	categories:
//	  - category: plumbing
//	    keywords: [leak, pipe]
//	urgent_keywords: [flooding]
//	high_keywords: [broken]
func LoadClassifierRules(path string) (ClassifierRules, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return ClassifierRules{}, fmt.Errorf("config: read rules %s: %w", path, err)
	}

	var rules ClassifierRules
	if err := v.Unmarshal(&rules); err != nil {
		return ClassifierRules{}, fmt.Errorf("config: decode rules %s: %w", path, err)
	}

	for i, rule := range rules.Categories {
		if !rule.Category.Valid() {
			return ClassifierRules{}, fmt.Errorf("config: rules %s: unknown category %q", path, rule.Category)
		}
		rules.Categories[i].Keywords = lowerAll(rule.Keywords)
	}
	rules.UrgentKeywords = lowerAll(rules.UrgentKeywords)
	rules.HighKeywords = lowerAll(rules.HighKeywords)

	return rules, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

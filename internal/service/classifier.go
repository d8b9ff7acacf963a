package service

import (
	"strings"

	"github.com/shiva/propdispatch/config"
	"github.com/shiva/propdispatch/internal/model"
)

// Classifier triages free-text maintenance descriptions with keyword tables.
// It is pure and safe for concurrent use.
type Classifier struct {
	categories []config.CategoryRule
	urgent     []string
	high       []string
}

// NewClassifier creates a classifier over the given rules. Keywords are
// matched case-insensitively.
func NewClassifier(rules config.ClassifierRules) *Classifier {
	c := &Classifier{
		categories: make([]config.CategoryRule, 0, len(rules.Categories)),
		urgent:     lower(rules.UrgentKeywords),
		high:       lower(rules.HighKeywords),
	}
	for _, r := range rules.Categories {
		c.categories = append(c.categories, config.CategoryRule{
			Category: r.Category,
			Keywords: lower(r.Keywords),
		})
	}
	return c
}

// Categorize returns the first category, in table order, with a keyword that
// occurs as a substring of description. No match yields general.
func (c *Classifier) Categorize(description string) model.Category {
	text := strings.ToLower(description)
	for _, rule := range c.categories {
		if containsAny(text, rule.Keywords) {
			return rule.Category
		}
	}
	return model.CategoryGeneral
}

// AssessPriority returns urgent if an urgent keyword occurs, otherwise high
// if a high keyword occurs, otherwise medium. It never returns low.
func (c *Classifier) AssessPriority(description string) model.Priority {
	text := strings.ToLower(description)
	switch {
	case containsAny(text, c.urgent):
		return model.PriorityUrgent
	case containsAny(text, c.high):
		return model.PriorityHigh
	default:
		return model.PriorityMedium
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

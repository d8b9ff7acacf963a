package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shiva/propdispatch/config"
	"github.com/shiva/propdispatch/internal/model"
)

func TestClassifier_Categorize(t *testing.T) {
	c := NewClassifier(config.DefaultClassifierRules())

	tests := []struct {
		description string
		want        model.Category
	}{
		{"Water leak under the sink", model.CategoryPlumbing},
		{"Kitchen light flickers", model.CategoryElectrical},
		{"Furnace makes a grinding noise", model.CategoryHVAC},
		{"Overgrown grass in the yard", model.CategoryLandscaping},
		{"Snow blocking the front steps", model.CategorySnowRemoval},
		{"Squeaky door hinge", model.CategoryGeneral},
		{"", model.CategoryGeneral},
		// Table order decides when several categories match.
		{"Leaking pipe, lights out in the bathroom", model.CategoryPlumbing},
		{"WATER everywhere", model.CategoryPlumbing},
		{"the toilet is clogged", model.CategoryPlumbing},
		{"no power in the kitchen", model.CategoryElectrical},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.description))
		})
	}
}

func TestClassifier_AssessPriority(t *testing.T) {
	c := NewClassifier(config.DefaultClassifierRules())

	tests := []struct {
		description string
		want        model.Priority
	}{
		{"Basement flooding", model.PriorityUrgent},
		{"Heater is broken", model.PriorityHigh},
		{"Small leak at the faucet", model.PriorityHigh},
		{"Please repaint the fence", model.PriorityMedium},
		{"Emergency: broken pipe", model.PriorityUrgent},
		{"FLOODING", model.PriorityUrgent},
		{"", model.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got := c.AssessPriority(tt.description)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, model.PriorityLow, got)
		})
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewClassifier(config.DefaultClassifierRules())
	const text = "AC not working, thermostat broken"
	first := c.Categorize(text)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, c.Categorize(text))
		assert.Equal(t, model.PriorityHigh, c.AssessPriority(text))
	}
}

func TestClassifier_CustomRules(t *testing.T) {
	c := NewClassifier(config.ClassifierRules{
		Categories: []config.CategoryRule{
			{Category: model.CategoryHVAC, Keywords: []string{"Vent"}},
			{Category: model.CategoryPlumbing, Keywords: []string{"vent stack"}},
		},
		UrgentKeywords: []string{"GAS"},
	})

	assert.Equal(t, model.CategoryHVAC, c.Categorize("plumbing vent stack clogged"))
	assert.Equal(t, model.PriorityUrgent, c.AssessPriority("smell of gas"))
	assert.Equal(t, model.PriorityMedium, c.AssessPriority("broken"))
}

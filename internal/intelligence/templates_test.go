package intelligence_test

import (
	"testing"

	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"github.com/stretchr/testify/assert"
)

func TestComposeReminder(t *testing.T) {
	t.Run("mentions at most three products", func(t *testing.T) {
		msg := intelligence.ComposeReminder("Amina", []string{"Rice", "Oil", "Sugar", "Salt"}, intelligence.FixedSelector(0))
		assert.Equal(t, "Hi Amina! It's been a little while since your last order. Running low on Rice, Oil and Sugar? Just reply here and we'll set it up for you.", msg)
		assert.NotContains(t, msg, "Salt")
	})

	t.Run("generic text without products", func(t *testing.T) {
		msg := intelligence.ComposeReminder("Amina", nil, intelligence.FixedSelector(2))
		assert.Equal(t, "Hey Amina! Ready to restock? Reply here and we'll take care of it.", msg)
	})

	t.Run("falls back when the name is blank", func(t *testing.T) {
		msg := intelligence.ComposeReminder("  ", []string{"Rice"}, intelligence.FixedSelector(1))
		assert.Equal(t, "Hello there, hope all is well! Want us to get Rice ready for you again?", msg)
	})

	t.Run("selector index wraps", func(t *testing.T) {
		a := intelligence.ComposeReminder("Amina", []string{"Rice"}, intelligence.FixedSelector(0))
		b := intelligence.ComposeReminder("Amina", []string{"Rice"}, intelligence.FixedSelector(4))
		assert.Equal(t, a, b)
	})

	t.Run("random selector still produces a reminder", func(t *testing.T) {
		msg := intelligence.ComposeReminder("Amina", []string{"Rice"}, nil)
		assert.Contains(t, msg, "Amina")
		assert.Contains(t, msg, "Rice")
	})
}

func TestJoinProductNames(t *testing.T) {
	assert.Equal(t, "", intelligence.JoinProductNames(nil))
	assert.Equal(t, "Rice", intelligence.JoinProductNames([]string{"Rice"}))
	assert.Equal(t, "Rice and Oil", intelligence.JoinProductNames([]string{"Rice", "Oil"}))
	assert.Equal(t, "Rice, Oil and Sugar", intelligence.JoinProductNames([]string{"Rice", "Oil", "Sugar"}))
}

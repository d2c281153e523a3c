package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"only whitespace", "   \t\n  ", 0},
		{"single word", "hello", 1},
		{"simple sentence", "one two three", 3},
		{"runs of whitespace collapse", "one  two\t\tthree\n\nfour", 4},
		{"leading and trailing whitespace", "  padded text  ", 2},
		{"punctuation sticks to words", "well, that's two", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.content))
		})
	}
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "My Notes", Book{Title: "My Notes"}.DisplayTitle())
	assert.Equal(t, PlaceholderTitle, Book{}.DisplayTitle())
}

func TestReminderIntervalValid(t *testing.T) {
	for _, interval := range []ReminderInterval{
		ReminderDaily, ReminderEveryTwo, ReminderWeekly, ReminderBiweekly, ReminderMonthly,
	} {
		assert.True(t, interval.Valid(), string(interval))
	}
	assert.False(t, ReminderInterval("hourly").Valid())
	assert.False(t, ReminderInterval("").Valid())
}

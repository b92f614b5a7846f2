package pulse_test

import (
	"testing"

	"github.com/randalmurphal/pulse/pkg/pulse"
	"github.com/stretchr/testify/assert"
)

// TestMatches verifies wildcard pattern matching against event names.
func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		pattern string
		want    bool
	}{
		// Exact patterns
		{"exact match", "player.level_up", "player.level_up", true},
		{"exact mismatch", "player.level_up", "player.died", false},
		{"exact empty pattern", "player.level_up", "", false},

		// Global wildcard
		{"global matches anything", "fusion_completed", "*", true},
		{"global matches empty", "", "*", true},

		// Prefix patterns
		{"prefix match", "player.level_up", "player.*", true},
		{"prefix no separator", "player", "player.*", false},
		{"prefix wrong head", "guild.level_up", "player.*", false},

		// Suffix patterns
		{"suffix match", "guild.created", "*.created", true},
		{"suffix bare tail", "created", "*.created", false},
		{"suffix wrong tail", "guild.deleted", "*.created", false},

		// Sandwich patterns
		{"sandwich single char", "a.b.c", "a.*.c", true},
		{"sandwich multi char", "a.xyz.c", "a.*.c", true},
		{"sandwich nothing between", "a.c", "a.*.c", false},

		// Adjacent wildcard collapse
		{"double star collapses", "a.b.c", "a.**.c", true},
		{"double star nothing between", "a.c", "a.**.c", false},
		{"triple star collapses", "a.xyz.c", "a.***.c", true},

		// Interior segments
		{"interior in order", "one.two.three.four", "one.*three*four", true},
		{"interior out of order", "one.three.two.four", "one.*two*three*four", false},

		// Mid-string wildcards are plain substring gaps
		{"gap consumes nothing", "ab", "a*b", true},
		{"gap consumes text", "a__b", "a*b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pulse.Matches(tt.event, tt.pattern)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestMatchesConcurrent verifies Matches is safe under concurrent callers.
func TestMatchesConcurrent(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 1000; j++ {
				pulse.Matches("player.level_up", "player.*")
				pulse.Matches("guild.created", "*.created")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

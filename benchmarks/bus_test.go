package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/randalmurphal/pulse/pkg/pulse"
)

func nopListener(_ context.Context, _ pulse.Payload) (any, error) {
	return nil, nil
}

// BenchmarkPublish_SingleListener measures dispatch to one Normal listener.
func BenchmarkPublish_SingleListener(b *testing.B) {
	bus := pulse.New()
	bus.Subscribe("evt", nopListener)
	payload := pulse.Payload{"n": 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Publish(context.Background(), "evt", payload)
	}
}

// BenchmarkPublish_FanOut measures dispatch across many Normal listeners.
func BenchmarkPublish_FanOut(b *testing.B) {
	for _, n := range []int{10, 100} {
		b.Run(fmt.Sprintf("listeners-%d", n), func(b *testing.B) {
			bus := pulse.New()
			for i := 0; i < n; i++ {
				bus.Subscribe("evt", nopListener, pulse.WithID(fmt.Sprintf("l-%03d", i)))
			}
			payload := pulse.Payload{"n": 1}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				bus.Publish(context.Background(), "evt", payload)
			}
		})
	}
}

// BenchmarkPublish_Sequential measures the strictly ordered Critical tier.
func BenchmarkPublish_Sequential(b *testing.B) {
	bus := pulse.New()
	for i := 0; i < 10; i++ {
		bus.Subscribe("evt", nopListener,
			pulse.WithID(fmt.Sprintf("l-%03d", i)),
			pulse.WithPriority(pulse.Critical))
	}
	payload := pulse.Payload{"n": 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Publish(context.Background(), "evt", payload)
	}
}

// BenchmarkPublish_WildcardMatch measures routing cost with wildcard
// subscribers that match and exact subscribers that do not.
func BenchmarkPublish_WildcardMatch(b *testing.B) {
	bus := pulse.New()
	for i := 0; i < 50; i++ {
		bus.Subscribe(fmt.Sprintf("other.event.%d", i), nopListener, pulse.WithID(fmt.Sprintf("e-%03d", i)))
	}
	for i := 0; i < 10; i++ {
		bus.Subscribe("player.*", nopListener, pulse.WithID(fmt.Sprintf("w-%03d", i)))
	}
	payload := pulse.Payload{"n": 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Publish(context.Background(), "player.level_up", payload)
	}
}

// BenchmarkSubscribeUnsubscribe measures registry churn.
func BenchmarkSubscribeUnsubscribe(b *testing.B) {
	bus := pulse.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id, _ := bus.Subscribe("evt", nopListener, pulse.WithID("bench"))
		bus.Unsubscribe("evt", id)
	}
}

// BenchmarkMatches measures the pure pattern matcher.
func BenchmarkMatches(b *testing.B) {
	patterns := []struct{ name, event, pattern string }{
		{"exact", "player.level_up", "player.level_up"},
		{"prefix", "player.level_up", "player.*"},
		{"suffix", "guild.created", "*.created"},
		{"sandwich", "player.quest.rewarded", "player.*.rewarded"},
	}
	for _, p := range patterns {
		b.Run(p.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				pulse.Matches(p.event, p.pattern)
			}
		})
	}
}

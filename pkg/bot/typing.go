package bot

import (
	"math/rand"
	"time"
)

// TypingConfig controls typing simulation behavior
type TypingConfig struct {
	// Base characters per second for "typing"
	BaseCharsPerSecond float64
	// Minimum typing duration
	MinDuration time.Duration
	// Maximum typing duration
	MaxDuration time.Duration
	// Random variation factor (0.0 - 1.0)
	Variation float64
}

// DefaultTypingConfig provides sensible defaults for natural-feeling typing
var DefaultTypingConfig = TypingConfig{
	BaseCharsPerSecond: 40.0,
	MinDuration:        400 * time.Millisecond,
	MaxDuration:        3 * time.Second,
	Variation:          0.3, // ±30% random variation
}

// CalculateTypingDuration determines how long to "type" based on message length
func CalculateTypingDuration(messageLength int, config TypingConfig) time.Duration {
	baseDuration := time.Duration(float64(messageLength) / config.BaseCharsPerSecond * float64(time.Second))

	// Add random variation
	variation := 1.0 + (rand.Float64()*2-1)*config.Variation
	adjusted := time.Duration(float64(baseDuration) * variation)

	// Clamp to min/max
	if adjusted < config.MinDuration {
		adjusted = config.MinDuration
	}
	if adjusted > config.MaxDuration {
		adjusted = config.MaxDuration
	}

	return adjusted
}

// SimulateTyping shows the typing indicator for a calculated duration.
// Discord's indicator lasts ~10 seconds, so it is refreshed for long waits.
func (h *Handler) SimulateTyping(s Session, channelID string, messageLength int) {
	duration := CalculateTypingDuration(messageLength, DefaultTypingConfig)
	if duration <= 0 {
		return
	}

	s.ChannelTyping(channelID)

	refreshInterval := 8 * time.Second
	elapsed := time.Duration(0)

	for elapsed < duration {
		sleepTime := duration - elapsed
		if sleepTime > refreshInterval {
			sleepTime = refreshInterval
		}
		time.Sleep(sleepTime)
		elapsed += sleepTime

		if elapsed < duration {
			s.ChannelTyping(channelID)
		}
	}
}

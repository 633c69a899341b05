package driven

import (
	"context"

	"github.com/klartext/klartext/internal/core/domain"
)

// TTSResult is the synthesised audio for a piece of text.
type TTSResult struct {
	// Audio is the raw audio data, empty when the provider returned a URL.
	Audio []byte

	// URL points at externally hosted audio, empty when Audio is set.
	URL string

	// Format is the audio container format, e.g. "mp3".
	Format string
}

// TTSService converts simplified text to speech.
// This is an optional downstream service - when nil, the TTS endpoint
// reports domain.ErrTTSUnavailable. The core never depends on audio
// formats beyond passing them through.
type TTSService interface {
	// Synthesise converts text to audio in the given language.
	Synthesise(ctx context.Context, text string, lang domain.Language) (TTSResult, error)

	// Ping validates the provider is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

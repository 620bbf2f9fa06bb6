// Package tokens estimates how many tokens a subroutine's description will
// cost a downstream documentation generator. The core engine never reads
// these counts itself; it only attaches them to a Descriptor at
// registry-load time.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Encoder counts tokens in a string.
type Encoder interface {
	Count(text string) (int, error)
}

// tiktokenEncoder wraps a cl100k_base tiktoken encoding.
type tiktokenEncoder struct {
	encoding *tiktoken.Tiktoken
}

func (e *tiktokenEncoder) Count(text string) (int, error) {
	return len(e.encoding.Encode(text, nil, nil)), nil
}

// mockEncoder is a ~4-chars-per-token fallback for when a real BPE ranks
// file can't be loaded.
type mockEncoder struct{}

func (mockEncoder) Count(text string) (int, error) {
	n := len(text) / 4
	if n < 1 && len(text) > 0 {
		n = 1
	}
	return n, nil
}

var (
	defaultOnce sync.Once
	defaultEnc  Encoder
)

// DefaultEncoder returns a process-wide cl100k_base encoder, falling back to
// the character-based mock encoder if tiktoken's ranks can't be loaded (e.g.
// no network access to fetch them).
func DefaultEncoder() Encoder {
	defaultOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			defaultEnc = mockEncoder{}
			return
		}
		defaultEnc = &tiktokenEncoder{encoding: enc}
	})
	return defaultEnc
}

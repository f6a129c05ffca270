package chunker

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Precision levels reported by token counters.
const (
	PrecisionExact       = "exact"
	PrecisionApproximate = "approximate"
)

// TokenCounter measures or estimates the token length of a text span.
type TokenCounter interface {
	Count(text string) int
	// Precision reports whether counts are exact subword tokens or a
	// character-based approximation.
	Precision() string
}

// HeuristicCounter approximates token counts as characters divided by a
// constant. Fast and dependency-free, used when no encoding is available.
type HeuristicCounter struct {
	CharsPerToken int
}

// NewHeuristicCounter creates a counter using the common 4-chars-per-token
// approximation.
func NewHeuristicCounter() *HeuristicCounter {
	return &HeuristicCounter{CharsPerToken: 4}
}

// Count estimates tokens from character count.
func (c *HeuristicCounter) Count(text string) int {
	per := c.CharsPerToken
	if per <= 0 {
		per = 4
	}
	return utf8.RuneCountInString(text) / per
}

// Precision reports the approximation level.
func (c *HeuristicCounter) Precision() string { return PrecisionApproximate }

// TiktokenCounter counts exact subword tokens using the cl100k_base
// encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the cl100k_base encoding. Loading can fail when
// the encoding data is unavailable, in which case callers should fall back
// to the heuristic counter.
func NewTiktokenCounter() (*TiktokenCounter, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load cl100k_base encoding: %w", err)
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

// Count returns the exact token count.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Precision reports the approximation level.
func (c *TiktokenCounter) Precision() string { return PrecisionExact }

// NewTokenCounter returns the exact counter when the encoding loads,
// otherwise the heuristic counter.
func NewTokenCounter() TokenCounter {
	if counter, err := NewTiktokenCounter(); err == nil {
		return counter
	}
	return NewHeuristicCounter()
}

// Package roomcode generates the six-character codes that identify rooms.
package roomcode

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	// Length of every room code.
	Length = 6
	// Alphabet codes are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultMaxAttempts bounds the collision retries of Generate.
	DefaultMaxAttempts = 10000
)

// ErrExhaustedKeyspace is returned when every attempt collided.
var ErrExhaustedKeyspace = errors.New("room code keyspace exhausted")

// Lookup reports whether a code is already taken.
type Lookup interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Generator draws random codes until one is not taken. The check is a
// pre-filter: callers still have to handle a unique-constraint violation on
// insert.
type Generator struct {
	lookup      Lookup
	maxAttempts int
	intN        func(n int) int
}

// NewGenerator returns a Generator checking codes against lookup. A
// maxAttempts <= 0 selects DefaultMaxAttempts.
func NewGenerator(lookup Lookup, maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{
		lookup:      lookup,
		maxAttempts: maxAttempts,
		intN:        rand.IntN,
	}
}

// Generate returns a code that did not exist at the time of the check.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := g.candidate()
		taken, err := g.lookup.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check room code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhaustedKeyspace, g.maxAttempts)
}

func (g *Generator) candidate() string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(Alphabet[g.intN(len(Alphabet))])
	}
	return b.String()
}

// Normalize trims and upper-cases user input.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code is exactly Length characters from Alphabet.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

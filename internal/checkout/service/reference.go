package service

import (
	apperrors "bookly/pkg/errors"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

// ReferenceAlphabet leaves out characters that are easy to confuse when read aloud or
// copied by hand (0/O, 1/I).
const ReferenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const referenceSeparator = "-"

// ExistsFunc reports whether a booking with the reference is already stored.
type ExistsFunc func(ctx context.Context, tenant, id string) (bool, error)

type ReferenceGenerator struct {
	length      int
	chunk       int
	maxAttempts int
	random      io.Reader
}

func NewReferenceGenerator(length, chunk, maxAttempts int) *ReferenceGenerator {
	return &ReferenceGenerator{
		length:      length,
		chunk:       chunk,
		maxAttempts: maxAttempts,
		random:      rand.Reader,
	}
}

// Draw returns one candidate reference such as "K7PM-3QXA".
func (g *ReferenceGenerator) Draw() (string, error) {
	buf := make([]byte, g.length)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	var sb strings.Builder
	for i, b := range buf {
		if g.chunk > 0 && i > 0 && i%g.chunk == 0 {
			sb.WriteString(referenceSeparator)
		}
		// 256 is a multiple of the alphabet size, so the modulo is unbiased.
		sb.WriteByte(ReferenceAlphabet[int(b)%len(ReferenceAlphabet)])
	}
	return sb.String(), nil
}

// Unique draws references until one is not taken within the tenant.
func (g *ReferenceGenerator) Unique(ctx context.Context, tenant string, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		ref, err := g.Draw()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, tenant, ref)
		if err != nil {
			return "", fmt.Errorf("check reference %s: %w", ref, err)
		}
		if !taken {
			return ref, nil
		}
	}
	return "", apperrors.ReferenceExhausted(g.maxAttempts)
}

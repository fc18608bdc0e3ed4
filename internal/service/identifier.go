package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	SalePrefix = "SAL"
	SaleDigits = 8
	JobPrefix  = "SRV"
	JobDigits  = 6

	// DefaultMaxAttempts bounds the collision loop of a single generation.
	DefaultMaxAttempts = 20

	// uniqueRetries bounds how often a whole unit of work is replayed when
	// the unique index rejects an identifier that passed the existence check.
	uniqueRetries = 3
)

// ExistsFunc reports whether candidate is already persisted.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// DigitSource returns n decimal digits.
type DigitSource func(n int) (string, error)

// IdentifierGenerator produces prefixed business identifiers such as
// SAL12345678 and SRV123456.
type IdentifierGenerator struct {
	maxAttempts int
	digits      DigitSource
}

// NewIdentifierGenerator builds a generator. A nil source uses crypto/rand;
// maxAttempts < 1 falls back to DefaultMaxAttempts.
func NewIdentifierGenerator(maxAttempts int, digits DigitSource) *IdentifierGenerator {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if digits == nil {
		digits = randomDigits
	}
	return &IdentifierGenerator{maxAttempts: maxAttempts, digits: digits}
}

// Generate draws candidates until exists reports one as free. Each draw costs
// exactly one existence check.
func (g *IdentifierGenerator) Generate(ctx context.Context, prefix string, n int, exists ExistsFunc) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		suffix, err := g.digits(n)
		if err != nil {
			return "", fmt.Errorf("drawing identifier digits: %w", err)
		}
		candidate := prefix + suffix

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking identifier %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		log.Debug().Str("prefix", prefix).Int("attempt", attempt).Msg("identifier collision, retrying")
	}

	log.Error().Str("prefix", prefix).Int("attempts", g.maxAttempts).Msg("identifier generation exhausted")
	return "", fmt.Errorf("%w: %s after %d attempts", ErrGenerationExhausted, prefix, g.maxAttempts)
}

// SaleNumber draws a sale number, "SAL" followed by 8 digits, that exists
// reports as free. It returns ErrGenerationExhausted once the attempts run out.
func (g *IdentifierGenerator) SaleNumber(ctx context.Context, exists ExistsFunc) (string, error) {
	return g.Generate(ctx, SalePrefix, SaleDigits, exists)
}

// JobNumber is SaleNumber for service jobs: "SRV" followed by 6 digits.
func (g *IdentifierGenerator) JobNumber(ctx context.Context, exists ExistsFunc) (string, error) {
	return g.Generate(ctx, JobPrefix, JobDigits, exists)
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// withIdentifierRetry replays unit when a concurrent writer claimed the same
// identifier between the existence check and the insert.
func withIdentifierRetry(ctx context.Context, unit func() error) error {
	for attempt := 1; attempt <= uniqueRetries; attempt++ {
		err := unit()
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn().Int("attempt", attempt).Msg("identifier taken at insert, replaying unit of work")
	}
	log.Error().Int("attempts", uniqueRetries).Msg("identifier generation exhausted at insert")
	return fmt.Errorf("%w: %w", ErrGenerationExhausted, ErrDuplicateIdentifier)
}

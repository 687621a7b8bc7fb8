// Package numbering issues human-readable document numbers scoped per company.
//
// Estimates, quotes and work orders are numbered PREFIX-YYYY-NNNN by scanning
// the highest existing number for the year. Two concurrent callers can compute
// the same number; the unique index rejects one of them and the caller retries
// the whole unit of work through RetryOnCollision.
//
// Invoices, receipts and payments use a per-company counter that is
// incremented and read in a single statement and rendered through the counter
// format, for example "INV-YYYY-NNNNN".
package numbering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

const scanDigits = 4

var ErrInvalidFormat = errors.New("format must contain a run of N")

type Generator struct {
	now    func() time.Time
	suffix func() string
}

func NewGenerator() *Generator {
	return &Generator{
		now:    time.Now,
		suffix: randomSuffix,
	}
}

// Next returns the next number for docType within the transaction of counters.
func (g *Generator) Next(ctx context.Context, counters repository.CounterRepository, companyID uuid.UUID, docType model.DocumentType) (string, error) {
	if !docType.Valid() {
		return "", fmt.Errorf("unknown document type %q", docType)
	}
	year := g.now().Year()

	if docType.UsesCounter() {
		value, format, err := counters.Increment(ctx, companyID, docType)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Sprintf("%s-%d-%s", docType.Prefix(), year, g.suffix()), nil
		}
		if err != nil {
			return "", fmt.Errorf("increment %s counter: %w", docType, err)
		}
		return Format(format, year, value), nil
	}

	prefix := fmt.Sprintf("%s-%d-", docType.Prefix(), year)
	latest, err := counters.LatestNumber(ctx, companyID, docType, prefix)
	if err != nil {
		return "", fmt.Errorf("scan %s numbers: %w", docType, err)
	}
	return fmt.Sprintf("%s%0*d", prefix, scanDigits, ParseSequence(latest, prefix)+1), nil
}

// ParseSequence extracts the sequence from a number such as "EST-2026-0042".
// Anything after a further dash is ignored. Unparseable input yields 0.
func ParseSequence(number, prefix string) int {
	if !strings.HasPrefix(number, prefix) {
		return 0
	}
	rest := strings.TrimPrefix(number, prefix)
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		rest = rest[:i]
	}
	seq, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return seq
}

// Format renders a counter format. "YYYY" becomes the year and the longest
// standalone run of N (the last one on ties) becomes the value zero-padded to
// the run length. The N inside a word such as "INV" is not a run.
func Format(format string, year int, value int64) string {
	out := strings.ReplaceAll(format, "YYYY", strconv.Itoa(year))
	start, length := sequenceRun(out)
	if length == 0 {
		return out + strconv.FormatInt(value, 10)
	}
	return out[:start] + fmt.Sprintf("%0*d", length, value) + out[start+length:]
}

// ValidateFormat reports whether format can hold a sequence.
func ValidateFormat(format string) error {
	if _, length := sequenceRun(strings.ReplaceAll(format, "YYYY", "")); length == 0 {
		return ErrInvalidFormat
	}
	return nil
}

func sequenceRun(s string) (start, length int) {
	for i := 0; i < len(s); {
		if s[i] != 'N' {
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == 'N' {
			j++
		}
		standalone := (i == 0 || !isLetter(s[i-1])) && (j == len(s) || !isLetter(s[j]))
		if standalone && j-i >= length {
			start, length = i, j-i
		}
		i = j
	}
	return start, length
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

// RetryOnCollision runs fn up to attempts times while it fails with
// repository.ErrDuplicate. Each attempt must be a complete unit of work.
func RetryOnCollision(ctx context.Context, log zerolog.Logger, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("document number collision, retrying")
	}
	return fmt.Errorf("document number still colliding after %d attempts: %w", attempts, err)
}

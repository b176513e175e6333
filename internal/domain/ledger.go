package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one transaction record as delivered by a source connector,
// before normalization. Amount and date are kept as strings because sources
// disagree on formats; the normalizer owns parsing.
type RawRecord struct {
	AccountID    string
	SourceUID    string
	OccurredAt   string
	Amount       string
	Direction    string // "IN", "OUT" or empty when the amount is already signed
	Counterparty string
	Reference    string
	Source       string
	Status       string
}

// LedgerEntry is one canonical financial movement. Outflows are negative.
// Entries are immutable once ingested and uniquely keyed by
// (account_id, occurred_at, amount, payee); a re-ingested duplicate may only
// enrich the raw description.
type LedgerEntry struct {
	ID             string
	AccountID      string
	OccurredAt     time.Time
	Payee          string
	Amount         decimal.Decimal
	Source         string
	RawDescription string
	CreatedAt      time.Time
}

// NaturalKey returns the deduplication key for idempotent re-ingestion.
func (e *LedgerEntry) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		e.AccountID,
		e.OccurredAt.Format("2006-01-02"),
		e.Amount.String(),
		e.Payee,
	)
}

// IsOutflow reports whether the entry moves money out of the account.
func (e *LedgerEntry) IsOutflow() bool {
	return e.Amount.IsNegative()
}

// NormalizePayee collapses a raw counterparty string into a stable grouping
// key: uppercased, whitespace collapsed, trailing reference digits stripped.
// "Octopus Energy 4471" and "OCTOPUS ENERGY  4892" both map to
// "OCTOPUS ENERGY".
func NormalizePayee(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	fields := strings.Fields(s)

	// Drop trailing tokens that are purely digits or reference-shaped
	// (digits with separators); they vary per payment, not per payee.
	for len(fields) > 1 && isReferenceToken(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}

	return strings.Join(fields, " ")
}

func isReferenceToken(tok string) bool {
	if tok == "" {
		return false
	}

	digits := 0
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '-' || r == '/' || r == '*' || r == '#':
		default:
			return false
		}
	}

	return digits > 0
}

// SortEntries orders entries by occurrence date, then payee, then amount.
// Stable ordering keeps pipeline output deterministic for identical input.
func SortEntries(entries []*LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		if a.Payee != b.Payee {
			return a.Payee < b.Payee
		}
		return a.Amount.LessThan(b.Amount)
	})
}

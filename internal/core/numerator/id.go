// Package numerator provides domain contracts for daily sequential document identifiers.
// Pattern: PREFIX-YYYYMMDD-SSSS (e.g., INV-20240115-0001)
package numerator

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout renders the date segment of an identifier.
	DateLayout = "20060102"

	// SerialWidth is the zero-padded width of the serial segment.
	SerialWidth = 4

	// MaxSerial is the largest serial that still fits SerialWidth.
	// It is not enforced: 10000 renders as a 5-digit segment.
	MaxSerial = 9999
)

// Target is the caller-owned table/column pair that stores identifiers.
type Target struct {
	Table  string
	Column string
}

func (t Target) String() string {
	return t.Table + "." + t.Column
}

// ParseTarget reads "table.column" or "schema.table.column".
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return Target{}, fmt.Errorf("target %q: want table.column", s)
	}
	return Target{Table: s[:i], Column: s[i+1:]}, nil
}

// ScopeKey identifies one counting scope.
// Two identifiers share a scope iff Prefix and Date match exactly.
type ScopeKey struct {
	Prefix string
	Date   string // YYYYMMDD
}

// NewScopeKey builds the scope for prefix on the calendar day of t.
func NewScopeKey(prefix string, t time.Time) ScopeKey {
	return ScopeKey{Prefix: prefix, Date: t.Format(DateLayout)}
}

// Base returns the common leading part of every identifier in the scope ("INV-20240115-").
func (k ScopeKey) Base() string {
	return k.Prefix + "-" + k.Date + "-"
}

// GeneratedID is an identifier computed by the allocator.
// It is a value: persisting it into a record is the caller's job.
type GeneratedID struct {
	Prefix string
	Date   string
	Serial int
}

// String renders the canonical form.
func (id GeneratedID) String() string {
	return Format(id.Prefix, id.Date, id.Serial)
}

// Format renders prefix, date and serial as "{prefix}-{date}-{serial}" with
// the serial left-padded with zeros to SerialWidth. Serials above MaxSerial
// are rendered as-is (wider than SerialWidth).
func Format(prefix, date string, serial int) string {
	return fmt.Sprintf("%s-%s-%0*d", prefix, date, SerialWidth, serial)
}

// NextSerial computes the serial following lastMatch.
//
// A nil lastMatch yields 1. Otherwise the trailing SerialWidth characters are
// read as an unsigned decimal: parsing stops at the first non-digit and an
// empty digit run counts as 0. The suffix is not validated, so a malformed
// value in the scope produces a small or unrelated serial.
func NextSerial(lastMatch *string) int {
	if lastMatch == nil {
		return 1
	}

	s := *lastMatch
	if len(s) > SerialWidth {
		s = s[len(s)-SerialWidth:]
	}

	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n + 1
}

package numerator

import (
	"context"
	"regexp"
	"strings"
	"time"

	"docserial/internal/core/apperror"
)

// PrefixEntry maps a logical type ("invoice") to its short code ("INV").
// Owned by the seed/admin tooling; the allocator only reads it.
type PrefixEntry struct {
	Name      string    `db:"name" json:"name" yaml:"name"`
	Prefix    string    `db:"prefix" json:"prefix" yaml:"prefix"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" yaml:"-"`
}

// PrefixRegistry is the write side of the prefix table.
type PrefixRegistry interface {
	PrefixResolver
	List(ctx context.Context) ([]PrefixEntry, error)
	Upsert(ctx context.Context, entry PrefixEntry) (PrefixEntry, error)
	Delete(ctx context.Context, name string) error
}

var prefixPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// NormalizeEntry upper-cases the prefix and checks it fits the identifier
// format. Hyphens are rejected because they separate identifier segments.
func NormalizeEntry(e PrefixEntry) (PrefixEntry, error) {
	e.Name = strings.TrimSpace(e.Name)
	e.Prefix = strings.ToUpper(strings.TrimSpace(e.Prefix))

	if e.Name == "" {
		return e, apperror.NewValidation("type name is required")
	}
	if !prefixPattern.MatchString(e.Prefix) {
		return e, apperror.NewValidation("prefix must match [A-Z0-9]+").
			WithDetail("prefix", e.Prefix)
	}
	return e, nil
}

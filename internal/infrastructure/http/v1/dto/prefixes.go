package dto

import (
	"time"

	"docserial/internal/core/numerator"
)

// PrefixResponse is one registry entry.
type PrefixResponse struct {
	Name      string    `json:"name"`
	Prefix    string    `json:"prefix"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromPrefixEntry creates PrefixResponse from a registry entry.
func FromPrefixEntry(e numerator.PrefixEntry) PrefixResponse {
	return PrefixResponse{
		Name:      e.Name,
		Prefix:    e.Prefix,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// FromPrefixEntries maps a slice of registry entries.
func FromPrefixEntries(entries []numerator.PrefixEntry) []PrefixResponse {
	out := make([]PrefixResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromPrefixEntry(e))
	}
	return out
}

// SetPrefixRequest assigns a prefix to the type named in the URL.
type SetPrefixRequest struct {
	Prefix string `json:"prefix" binding:"required"`
}

// ToEntry builds the registry entry for name.
func (r SetPrefixRequest) ToEntry(name string) numerator.PrefixEntry {
	return numerator.PrefixEntry{Name: name, Prefix: r.Prefix}
}

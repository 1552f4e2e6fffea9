package dto

import (
	"docserial/internal/core/apperror"
	"docserial/internal/core/numerator"
)

// AllocateByTypeRequest asks for the next identifier of a registered type.
type AllocateByTypeRequest struct {
	Type   string `json:"type" binding:"required"`
	Table  string `json:"table" binding:"required"`
	Column string `json:"column" binding:"required"`
}

// Target returns the table/column the identifier is meant for.
func (r AllocateByTypeRequest) Target() numerator.Target {
	return numerator.Target{Table: r.Table, Column: r.Column}
}

// AllocateByPrefixRequest asks for the next identifier of an explicit prefix.
type AllocateByPrefixRequest struct {
	Prefix string `json:"prefix" binding:"required"`
	Table  string `json:"table" binding:"required"`
	Column string `json:"column" binding:"required"`
}

// Target returns the table/column the identifier is meant for.
func (r AllocateByPrefixRequest) Target() numerator.Target {
	return numerator.Target{Table: r.Table, Column: r.Column}
}

// AllocateResponse carries the identifier and whether it came from the fallback path.
type AllocateResponse struct {
	ID       string `json:"id"`
	Degraded bool   `json:"degraded"`
	Prefix   string `json:"prefix,omitempty"`
	Date     string `json:"date,omitempty"`
	Serial   int    `json:"serial,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// FromResult maps an allocation result. Degraded responses expose only the
// error code, never the underlying driver message.
func FromResult(res numerator.Result) AllocateResponse {
	if res.IsDegraded() {
		resp := AllocateResponse{ID: res.Fallback, Degraded: true, Reason: apperror.CodeInternal}
		if appErr, ok := apperror.AsAppError(res.Cause); ok {
			resp.Reason = appErr.Code
		}
		return resp
	}
	return AllocateResponse{
		ID:     res.ID.String(),
		Prefix: res.ID.Prefix,
		Date:   res.ID.Date,
		Serial: res.ID.Serial,
	}
}

package numerator

import (
	"context"
)

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	AllocateByTypeFunc   func(ctx context.Context, typ string, target Target) Result
	AllocateByPrefixFunc func(ctx context.Context, prefix string, target Target) Result
}

// AllocateByType implements Allocator.
func (m *MockAllocator) AllocateByType(ctx context.Context, typ string, target Target) Result {
	if m.AllocateByTypeFunc != nil {
		return m.AllocateByTypeFunc(ctx, typ, target)
	}
	// Default: return predictable mock number
	return AllocatedResult(GeneratedID{Prefix: "MOCK", Date: "20260101", Serial: 1})
}

// AllocateByPrefix implements Allocator.
func (m *MockAllocator) AllocateByPrefix(ctx context.Context, prefix string, target Target) Result {
	if m.AllocateByPrefixFunc != nil {
		return m.AllocateByPrefixFunc(ctx, prefix, target)
	}
	return AllocatedResult(GeneratedID{Prefix: "MOCK", Date: "20260101", Serial: 1})
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)

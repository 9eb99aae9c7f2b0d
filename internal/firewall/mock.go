package firewall

import (
	"context"
)

// MockManager is an in-memory Manager for tests. It keeps the set of open
// rules and records every call in order.
type MockManager struct {
	AddErr    error
	RemoveErr error
	Calls     []MockCall
	open      map[Rule]bool
}

// MockCall records one Manager call.
type MockCall struct {
	Op   string // "add" or "remove"
	Rule Rule
}

// NewMockManager creates an empty MockManager.
func NewMockManager() *MockManager {
	return &MockManager{open: make(map[Rule]bool)}
}

// AddIngressRule records the call and marks rule open.
// Adding an open rule again succeeds.
func (m *MockManager) AddIngressRule(ctx context.Context, rule Rule) error {
	m.Calls = append(m.Calls, MockCall{Op: "add", Rule: rule})
	if m.AddErr != nil {
		return m.AddErr
	}
	if m.open == nil {
		m.open = make(map[Rule]bool)
	}
	m.open[rule] = true
	return nil
}

// RemoveIngressRule records the call and marks rule closed.
// Removing a closed rule succeeds.
func (m *MockManager) RemoveIngressRule(ctx context.Context, rule Rule) error {
	m.Calls = append(m.Calls, MockCall{Op: "remove", Rule: rule})
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.open, rule)
	return nil
}

// IsOpen reports whether rule is currently open.
func (m *MockManager) IsOpen(rule Rule) bool {
	return m.open[rule]
}

// OpenRules returns the number of rules currently open.
func (m *MockManager) OpenRules() int {
	return len(m.open)
}

// Count returns how many calls of op were made.
func (m *MockManager) Count(op string) int {
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// HasIngressRule reports whether rule is open.
func (m *MockManager) HasIngressRule(ctx context.Context, rule Rule) (bool, error) {
	return m.IsOpen(rule), nil
}

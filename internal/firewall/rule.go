package firewall

import (
	"context"
	"fmt"
	"sync"
)

// Rule is a single-port ingress rule on a security group.
// FromPort and ToPort of the resulting permission are both Port.
type Rule struct {
	GroupID  string
	CIDR     string
	Port     int32
	Protocol string
}

// String formats the rule for log lines.
func (r Rule) String() string {
	return fmt.Sprintf("%s/%d from %s on %s", r.Protocol, r.Port, r.CIDR, r.GroupID)
}

// Manager adds and removes ingress rules on a cloud security group.
//
// Both calls are requests to an eventually consistent control plane: a nil
// return means the request was accepted, not that traffic already flows.
// Adding a rule that exists and removing one that does not are successes.
type Manager interface {
	AddIngressRule(ctx context.Context, rule Rule) error
	RemoveIngressRule(ctx context.Context, rule Rule) error
}

// ReleaseFunc removes a rule added by Open. Calls after the first are no-ops
// returning the first result.
type ReleaseFunc func(ctx context.Context) error

// Open adds rule through m and returns the func that removes it again.
// Callers defer the release immediately so the rule never outlives them.
func Open(ctx context.Context, m Manager, rule Rule) (ReleaseFunc, error) {
	if err := m.AddIngressRule(ctx, rule); err != nil {
		return nil, err
	}

	var (
		once sync.Once
		err  error
	)
	return func(ctx context.Context) error {
		once.Do(func() {
			err = m.RemoveIngressRule(ctx, rule)
		})
		return err
	}, nil
}

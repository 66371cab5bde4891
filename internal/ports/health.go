package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateChecker is returned by Register for a name already in use.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is a dependency that readiness depends on. The SQL store
// and the upstream quote client implement it.
type HealthChecker interface {
	// Name identifies the dependency in readiness output.
	Name() string

	// Check returns nil when the dependency is usable. It must honour ctx.
	Check(ctx context.Context) error
}

// HealthRegistry collects checkers at startup and runs them on demand.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the outcome of one check or of all of them.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is the readiness verdict. Status is unhealthy when any
// check failed.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of a single checker.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry runs its checkers concurrently. It is safe for
// concurrent use.
type DefaultHealthRegistry struct {
	mu           sync.RWMutex
	checkers     map[string]HealthChecker
	checkTimeout time.Duration
}

// HealthRegistryOption configures a DefaultHealthRegistry.
type HealthRegistryOption func(*DefaultHealthRegistry)

// WithCheckTimeout bounds each check. Zero leaves checks bounded only by
// the caller's context.
func WithCheckTimeout(timeout time.Duration) HealthRegistryOption {
	return func(r *DefaultHealthRegistry) {
		r.checkTimeout = timeout
	}
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry(opts ...HealthRegistryOption) *DefaultHealthRegistry {
	r := &DefaultHealthRegistry{checkers: make(map[string]HealthChecker)}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds checker under its name.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	name := checker.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.checkers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
	}

	r.checkers[name] = checker

	return nil
}

// CheckAll runs every checker and waits for all of them. A failing check
// never cancels the others.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, c := range r.checkers {
		checkers[name] = c
	}
	r.mu.RUnlock()

	results := make(map[string]*CheckResult, len(checkers))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	for name, checker := range checkers {
		g.Go(func() error {
			res := r.run(ctx, checker)

			mu.Lock()
			results[name] = res
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait() // checks report through results, never through the group

	status := HealthStatusHealthy
	for _, res := range results {
		if res.Status == HealthStatusUnhealthy {
			status = HealthStatusUnhealthy
		}
	}

	return &HealthResult{Status: status, Checks: results, Timestamp: time.Now()}
}

func (r *DefaultHealthRegistry) run(ctx context.Context, checker HealthChecker) *CheckResult {
	if r.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.checkTimeout)
		defer cancel()
	}

	start := time.Now()
	err := checker.Check(ctx)
	res := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}

	if err != nil {
		res.Status = HealthStatusUnhealthy
		res.Message = err.Error()
	}

	return res
}

package application

import (
	"expvar"
	"sync"
)

// Metrics are the account lifecycle counters published under the "accounts" expvar.
type Metrics struct {
	Registered     *expvar.Int
	Verified       *expvar.Int
	LoginSucceeded *expvar.Int
	LoginFailed    *expvar.Int
	Locked         *expvar.Int
}

var (
	publishOnce sync.Once
	published   *Metrics
)

// NewMetrics returns unpublished counters, for tests and tools.
func NewMetrics() *Metrics {
	return &Metrics{
		Registered:     new(expvar.Int),
		Verified:       new(expvar.Int),
		LoginSucceeded: new(expvar.Int),
		LoginFailed:    new(expvar.Int),
		Locked:         new(expvar.Int),
	}
}

// PublishedMetrics returns the process-wide counters, registering them with expvar on first use.
func PublishedMetrics() *Metrics {
	publishOnce.Do(func() {
		m := NewMetrics()
		accounts := expvar.NewMap("accounts")
		accounts.Set("registered", m.Registered)
		accounts.Set("verified", m.Verified)
		accounts.Set("login_succeeded", m.LoginSucceeded)
		accounts.Set("login_failed", m.LoginFailed)
		accounts.Set("locked", m.Locked)
		published = m
	})
	return published
}

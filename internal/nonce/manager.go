// Package nonce issues short-lived anti-forgery tokens bound to an action and
// a user.
package nonce

import (
	"strconv"
	"time"

	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/signing"
)

const (
	// DefaultLifetime is how long a token stays valid at most.
	DefaultLifetime = 24 * time.Hour
	// MinLifetime is the shortest lifetime a Manager accepts. Shorter
	// values are raised to it.
	MinLifetime = time.Minute
)

// Manager issues and verifies tokens. A token is valid during the half
// lifetime window it was issued in and the following one.
type Manager struct {
	signer   *signing.Signer
	lifetime time.Duration
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager signing with secret. A non-positive lifetime
// selects DefaultLifetime.
func NewManager(secret string, lifetime time.Duration, opts ...Option) *Manager {
	switch {
	case lifetime <= 0:
		lifetime = DefaultLifetime
	case lifetime < MinLifetime:
		lifetime = MinLifetime
	}
	m := &Manager{
		signer:   signing.NewSigner(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) tick() int64 {
	half := int64(m.lifetime / 2)
	return (m.now().UnixNano() + half - 1) / half
}

func (m *Manager) sign(action string, userID, tick int64) string {
	return m.signer.Sign(signing.Message(
		strconv.FormatInt(tick, 10),
		action,
		strconv.FormatInt(userID, 10),
	))
}

// Issue returns a token for action and userID.
func (m *Manager) Issue(action string, userID int64) string {
	return m.sign(action, userID, m.tick())
}

// Verify reports whether token was issued for action and userID within the
// current or previous window.
func (m *Manager) Verify(action string, userID int64, token string) bool {
	if token == "" {
		return false
	}
	tick := m.tick()
	return m.signer.Verify(signing.Message(strconv.FormatInt(tick, 10), action, strconv.FormatInt(userID, 10)), token) ||
		m.signer.Verify(signing.Message(strconv.FormatInt(tick-1, 10), action, strconv.FormatInt(userID, 10)), token)
}

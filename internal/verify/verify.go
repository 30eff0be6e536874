package verify

import (
	"context"
	"net"
	"net/mail"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Verifier decides whether a contact email address is valid enough to count
// toward completeness. Implementations must be safe for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, email string) bool
}

// Syntactic validates the local@domain shape only, no network access.
type Syntactic struct{}

// Verify reports whether email parses as an address with a dotted domain.
func (Syntactic) Verify(_ context.Context, email string) bool {
	return validShape(email)
}

func validShape(email string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return false
	}
	at := strings.LastIndex(addr.Address, "@")
	return at > 0 && strings.Contains(addr.Address[at+1:], ".")
}

// MX validates the address shape and that the domain publishes MX records.
// Lookups are cached per domain for the lifetime of the verifier, which is a
// single run.
type MX struct {
	resolver *net.Resolver
	timeout  time.Duration

	mu    sync.Mutex
	cache map[string]bool
}

// NewMX creates an MX verifier using the default resolver.
func NewMX(timeout time.Duration) *MX {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MX{
		resolver: net.DefaultResolver,
		timeout:  timeout,
		cache:    make(map[string]bool),
	}
}

// Verify reports whether email is syntactically valid and its domain has at
// least one MX record. Resolver failures count as unverified.
func (m *MX) Verify(ctx context.Context, email string) bool {
	if !validShape(email) {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]

	m.mu.Lock()
	cached, ok := m.cache[domain]
	m.mu.Unlock()
	if ok {
		return cached
	}

	lookupCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	records, err := m.resolver.LookupMX(lookupCtx, domain)
	valid := err == nil && len(records) > 0
	if err != nil {
		zap.L().Debug("verify: mx lookup failed",
			zap.String("domain", domain),
			zap.Error(err),
		)
	}

	m.mu.Lock()
	m.cache[domain] = valid
	m.mu.Unlock()

	return valid
}

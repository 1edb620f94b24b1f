// Package registry implements the cloudfest chat registry: user identities,
// an append-only message ledger (global, private and group-scoped), group
// membership and owner-gated administrative controls behind a pay-to-register
// gate. All state lives in process; every operation is applied atomically
// under a single serializing authority.
package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Registry is the single-authority state machine. Mutating operations are
// serialized by mu; queries take the read lock and observe a consistent
// snapshot. Entity records are append-only: users and groups are deactivated,
// never deleted, and messages are immutable once created, so len(messages)
// and len(groups) double as the monotonic id counters.
type Registry struct {
	logger *zap.SugaredLogger

	mu         sync.RWMutex
	inRegister int32 // reentrancy guard around the payment-accepting path
	clock      func() time.Time
	notify     Observer

	owner   Identity
	fee     uint64
	paused  bool
	balance uint64

	users      map[Identity]*User
	byUsername map[string]Identity
	usernames  []string

	messages []Message
	groups   []*group
}

// Option alters the default configuration of a Registry during construction.
type Option interface {
	apply(*Registry)
}

type optionFunc func(r *Registry)

func (f optionFunc) apply(r *Registry) { f(r) }

// RegistrationFee sets the initial fee gating Register.
func RegistrationFee(fee uint64) Option {
	return optionFunc(func(r *Registry) {
		r.fee = fee
	})
}

// Clock replaces the timestamp source, mainly for tests.
func Clock(now func() time.Time) Option {
	return optionFunc(func(r *Registry) {
		r.clock = now
	})
}

// Notify sets the event sink receiving committed-mutation notifications.
func Notify(obs Observer) Option {
	return optionFunc(func(r *Registry) {
		r.notify = obs
	})
}

// New returns an empty Registry owned by owner.
func New(logger *zap.SugaredLogger, owner Identity, opts ...Option) *Registry {
	r := &Registry{
		logger:     logger,
		clock:      time.Now,
		notify:     noopObserver{},
		owner:      owner,
		users:      make(map[Identity]*User),
		byUsername: make(map[string]Identity),
	}

	for _, opt := range opts {
		opt.apply(r)
	}

	return r
}

// Owner returns the identity holding the administrative capability.
func (r *Registry) Owner() Identity {
	return r.owner
}

// RegistrationFeeAmount returns the current fee gating Register.
func (r *Registry) RegistrationFeeAmount() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fee
}

// Balance returns the accumulated, not yet withdrawn registration payments.
func (r *Registry) Balance() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balance
}

// Paused reports the stored pause flag. The flag is owner-toggleable and
// kept for compatibility with existing callers; no mutating operation
// consults it.
func (r *Registry) Paused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// activeUser returns the caller's user record, or nil if the identity never
// registered or was deactivated. Callers must hold mu.
func (r *Registry) activeUser(id Identity) *User {
	u, ok := r.users[id]
	if !ok || !u.Active {
		return nil
	}
	return u
}

// beginRegister flips the reentrancy guard. The guard is checked before the
// mutex is acquired so a nested registration triggered from an observer
// callback is rejected instead of deadlocking.
func (r *Registry) beginRegister() bool {
	return atomic.CompareAndSwapInt32(&r.inRegister, 0, 1)
}

func (r *Registry) endRegister() {
	atomic.StoreInt32(&r.inRegister, 0)
}

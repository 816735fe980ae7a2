package larch

import (
	"errors"
	"io"
	"reflect"
	"sync"
)

// Provider is a resolution scope. The root provider returned by
// [Collection.Build] doubles as the singleton store; child scopes created
// with [Provider.CreateScope] live for one logical unit of work and are
// closed by their owner when that unit ends.
//
// Resolving the provider's own type, or [ScopeFactory], from any scope
// returns that scope itself.
type Provider struct {
	reg  *registry
	cfg  *config
	root *Provider

	mu      sync.Mutex
	cache   map[cacheKey]*entry
	tracked []io.Closer
	closed  bool
}

// cacheKey identifies one cache slot. Descriptor identity, not the service
// key, owns the slot: two registrations for the same key keep separate
// instances (visible through []T resolution), and an open registration keeps
// one instance per type argument.
type cacheKey struct {
	desc *Descriptor
	arg  reflect.Type
}

// ScopeFactory creates child scopes. Every [Provider] implements it, so a
// constructor can declare a ScopeFactory parameter to spawn scopes of its
// own without holding the full provider.
type ScopeFactory interface {
	CreateScope() (*Provider, error)
}

// entry is a per-key initialize-once cell. The scope lock only guards the
// cache map itself; construction runs under the entry's once, so resolving
// one key never blocks unrelated keys.
type entry struct {
	once sync.Once
	val  any
	err  error
}

func newRootProvider(reg *registry, cfg *config) *Provider {
	p := &Provider{
		reg:   reg,
		cfg:   cfg,
		cache: make(map[cacheKey]*entry),
	}
	p.root = p
	return p
}

// CreateScope returns a new child scope with an empty cache and disposal
// log. The child shares the sealed registry and reaches the same root for
// singleton storage regardless of nesting depth.
func (p *Provider) CreateScope() (*Provider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	return &Provider{
		reg:   p.reg,
		cfg:   p.cfg,
		root:  p.root,
		cache: make(map[cacheKey]*entry),
	}, nil
}

// IsRoot reports whether this provider is the container's root scope.
func (p *Provider) IsRoot() bool { return p == p.root }

// entryFor returns the initialize-once cell for the slot, creating it on
// first use.
func (p *Provider) entryFor(ck cacheKey) (*entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	e, ok := p.cache[ck]
	if !ok {
		e = &entry{}
		p.cache[ck] = e
	}
	return e, nil
}

// track records a constructed disposable so Close can release it. Instance
// registrations are never tracked.
func (p *Provider) track(v any) {
	closer, ok := v.(io.Closer)
	if !ok {
		return
	}
	p.mu.Lock()
	if !p.closed {
		p.tracked = append(p.tracked, closer)
	}
	p.mu.Unlock()
}

// Close disposes the scope. Every transient the scope constructed and every
// disposable instance in its own cache is released exactly once, in reverse
// order of creation. A failing Close on one instance does not stop the rest;
// failures are collected and joined. Closing a child scope never touches
// root-owned singletons. Close is idempotent.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	// The flag goes up before any teardown runs, so a Close re-entered from
	// within an instance's own teardown is a no-op.
	p.closed = true
	tracked := p.tracked
	p.tracked = nil
	p.mu.Unlock()

	var errs []error
	for i := len(tracked) - 1; i >= 0; i-- {
		if err := tracked[i].Close(); err != nil {
			errs = append(errs, err)
			p.cfg.logger.Debug("larch: dispose failed", "error", err)
		}
	}

	return errors.Join(errs...)
}

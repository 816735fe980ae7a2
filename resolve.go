package larch

import (
	"fmt"
	"reflect"
	"strings"
)

var (
	providerType     = reflect.TypeOf((*Provider)(nil))
	scopeFactoryType = reflect.TypeOf((*ScopeFactory)(nil)).Elem()
)

// resolution is the context threaded through one Resolve call. ambient
// widens to Singleton for the whole parameter subtree of a singleton
// resolution in progress; chain doubles as the visited set for cycle
// detection and as the error-message trail.
type resolution struct {
	ambient Lifetime
	chain   []Key
}

func (r *resolution) visiting(k Key) bool {
	for _, c := range r.chain {
		if c == k {
			return true
		}
	}
	return false
}

func (r *resolution) chainString(k Key) string {
	parts := make([]string, 0, len(r.chain)+1)
	for _, c := range r.chain {
		parts = append(parts, c.String())
	}
	parts = append(parts, k.String())
	return strings.Join(parts, " -> ")
}

// Resolve answers a service request against this scope.
//
// ok reports whether a registration matched: an unregistered key yields
// (nil, false, nil), never an error. A matching registration that fails to
// materialize — unsatisfiable constructor, captive dependency, dependency
// cycle — yields a non-nil error.
//
// Precedence: the provider's own type and [ScopeFactory] resolve to the
// scope itself; then the last exact registration for the key; then the
// parameterized forms — []T gathers every registration for T in registration
// order (possibly none), and a definition key falls back to its open
// registration.
func (p *Provider) Resolve(k Key) (val any, ok bool, err error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, false, ErrClosed
	}

	return p.resolveKey(k, &resolution{ambient: Transient})
}

func (p *Provider) resolveKey(k Key, res *resolution) (any, bool, error) {
	// The scope answers for itself: no construction, no caching.
	if k.Type == providerType || k.Type == scopeFactoryType {
		return p, true, nil
	}

	if d, found := p.reg.last(k); found {
		v, err := p.dispatch(d, k, res)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}

	if elem, isSlice := k.sliceElem(); isSlice {
		return p.resolveCollection(k.Type, elem, res)
	}

	if k.Def != nil {
		if d, found := p.reg.lastGeneric(k.Def); found {
			v, err := p.dispatch(d, k, res)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		}
	}

	return nil, false, nil
}

// resolveCollection materializes []T from every registration for T, in
// registration order. Zero matches produce an empty slice, not an absent
// result. Each element goes through its own lifetime dispatch.
func (p *Provider) resolveCollection(sliceType, elem reflect.Type, res *resolution) (any, bool, error) {
	matches := p.reg.all(Key{Type: elem})

	out := reflect.MakeSlice(sliceType, 0, len(matches))
	for _, d := range matches {
		v, err := p.dispatch(d, Key{Type: elem}, res)
		if err != nil {
			return nil, false, err
		}
		if v == nil {
			out = reflect.Append(out, reflect.Zero(elem))
			continue
		}
		out = reflect.Append(out, reflect.ValueOf(v))
	}
	return out.Interface(), true, nil
}

// dispatch applies the descriptor's lifetime: transients are constructed
// fresh and logged for disposal, scoped instances are computed at most once
// per scope, singletons at most once per container, always in the root.
func (p *Provider) dispatch(d *Descriptor, k Key, res *resolution) (any, error) {
	if res.visiting(k) {
		return nil, fmt.Errorf("%w: %s", ErrCircularDependency, res.chainString(k))
	}

	if d.Lifetime == Scoped && p.cfg.validate {
		if res.ambient == Singleton {
			return nil, fmt.Errorf("%w: scoped service %s captured by singleton chain %s",
				ErrCaptiveDependency, k, res.chainString(k))
		}
		if p.IsRoot() {
			return nil, fmt.Errorf("%w: scoped service %s resolved from the root scope",
				ErrCaptiveDependency, k)
		}
	}

	res.chain = append(res.chain, k)
	defer func() { res.chain = res.chain[:len(res.chain)-1] }()

	switch d.Lifetime {
	case Transient:
		v, err := p.construct(d, k, res)
		if err != nil {
			return nil, err
		}
		if !d.hasValue {
			p.track(v)
		}
		return v, nil

	case Scoped:
		return p.cached(d, k, res)

	case Singleton:
		// Singletons and their whole dependency subtree resolve against
		// the root scope.
		prev := res.ambient
		res.ambient = Singleton
		defer func() { res.ambient = prev }()
		return p.root.cached(d, k, res)

	default:
		return nil, fmt.Errorf("%w: %s has unknown lifetime %d", ErrConstruction, k, d.Lifetime)
	}
}

// cached runs the check-then-store step against this scope's cache. Each
// slot initializes at most once; a construction error is cached along with
// the miss so repeated requests fail the same way.
func (p *Provider) cached(d *Descriptor, k Key, res *resolution) (any, error) {
	e, err := p.entryFor(cacheKey{desc: d, arg: k.Arg})
	if err != nil {
		return nil, err
	}

	e.once.Do(func() {
		e.val, e.err = p.construct(d, k, res)
		if e.err == nil && !d.hasValue {
			p.track(e.val)
		}
	})

	return e.val, e.err
}

// construct materializes one descriptor. Instance values are returned
// unchanged; factories and binders receive the current scope; constructor
// registrations go through candidate selection.
func (p *Provider) construct(d *Descriptor, k Key, res *resolution) (any, error) {
	switch {
	case d.hasValue:
		return d.value, nil

	case d.factory != nil:
		v, err := d.factory(p)
		if err != nil {
			return nil, fmt.Errorf("%w: factory for %s: %w", ErrConstruction, k, err)
		}
		p.cfg.logger.Debug("larch: constructed", "service", k.String(), "lifetime", d.Lifetime.String())
		return v, nil

	case d.binder != nil:
		v, err := d.binder(p, k.Arg)
		if err != nil {
			return nil, fmt.Errorf("%w: binder for %s: %w", ErrConstruction, k, err)
		}
		p.cfg.logger.Debug("larch: constructed", "service", k.String(), "lifetime", d.Lifetime.String())
		return v, nil

	default:
		return p.activate(d, k, res)
	}
}

// activate selects among the descriptor's candidate constructors:
// most-parameters-first, first fully-satisfiable wins. A parameter that
// resolves to absent rejects the candidate; a parameter that fails with an
// error is fatal for the whole resolution. Transients constructed while
// probing a candidate that is later rejected stay in the disposal log;
// probing is not side-effect-free.
func (p *Provider) activate(d *Descriptor, k Key, res *resolution) (any, error) {
	for i := range d.ctors {
		ctor := &d.ctors[i]

		args := make([]reflect.Value, len(ctor.params))
		satisfied := true
		for j, paramType := range ctor.params {
			v, ok, err := p.resolveKey(Key{Type: paramType}, res)
			if err != nil {
				return nil, err
			}
			if !ok {
				satisfied = false
				break
			}
			if v == nil {
				args[j] = reflect.Zero(paramType)
			} else {
				args[j] = reflect.ValueOf(v)
			}
		}
		if !satisfied {
			continue
		}

		v, err := ctor.call(args)
		if err != nil {
			return nil, fmt.Errorf("%w: constructing %s: %w", ErrConstruction, k, err)
		}
		p.cfg.logger.Debug("larch: constructed", "service", k.String(), "lifetime", d.Lifetime.String())
		return v, nil
	}

	return nil, fmt.Errorf("%w: no satisfiable constructor for %s", ErrConstruction, k)
}

// ---------------------------------------------------------------------------
// Generic helpers
// ---------------------------------------------------------------------------

// Resolve is the typed counterpart of [Provider.Resolve]:
//
//	db, ok, err := larch.Resolve[*Database](scope)
func Resolve[T any](p *Provider) (T, bool, error) {
	var zero T

	v, ok, err := p.Resolve(KeyOf[T]())
	if err != nil || !ok {
		return zero, ok, err
	}
	if v == nil {
		return zero, true, nil
	}

	out, isT := v.(T)
	if !isT {
		return zero, false, fmt.Errorf("%w: cannot convert %T to %s", ErrConstruction, v, KeyOf[T]())
	}
	return out, true, nil
}

// MustResolve resolves T and panics when the key is unregistered or
// resolution fails.
func MustResolve[T any](p *Provider) T {
	v, ok, err := Resolve[T](p)
	if err != nil {
		panic(err)
	}
	if !ok {
		panic(fmt.Sprintf("larch: no registration for %s", KeyOf[T]()))
	}
	return v
}

// ResolveAll returns every registration for T, in registration order. Zero
// registrations yield an empty slice.
func ResolveAll[T any](p *Provider) ([]T, error) {
	v, _, err := p.Resolve(KeyOf[[]T]())
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// ResolveGeneric resolves an open definition instantiated with arg and
// asserts the result to T:
//
//	repo, ok, err := larch.ResolveGeneric[Repository](scope, RepositoryDef, reflect.TypeOf(User{}))
func ResolveGeneric[T any](p *Provider, def *Definition, arg reflect.Type) (T, bool, error) {
	var zero T

	v, ok, err := p.Resolve(GenericKey(def, arg))
	if err != nil || !ok {
		return zero, ok, err
	}

	out, isT := v.(T)
	if !isT {
		return zero, false, fmt.Errorf("%w: cannot convert %T to %s", ErrConstruction, v, GenericKey(def, arg))
	}
	return out, true, nil
}

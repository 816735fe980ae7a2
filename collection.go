package larch

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Collection is the ordered, append-only list of service registrations.
// Registration order matters: a singular resolution returns the instance of
// the last matching registration, while resolving []T returns every match in
// registration order.
//
// Use [Collection.Build] to seal the collection into a root [Provider]. The
// provider copies the descriptor list, so registrations added afterwards
// never affect an existing container.
type Collection struct {
	descriptors []Descriptor
}

// NewCollection creates an empty registration list.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends a descriptor, preserving order. The descriptor must carry
// exactly one implementation variant.
func (c *Collection) Add(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	c.descriptors = append(c.descriptors, d)
	return nil
}

// Len returns the number of registrations.
func (c *Collection) Len() int { return len(c.descriptors) }

// Build seals the collection and returns the root provider. The root scope
// doubles as the singleton store; create child scopes with
// [Provider.CreateScope] for per-unit-of-work lifetimes.
func (c *Collection) Build(opts ...Option) *Provider {
	cfg := &config{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	reg := &registry{descriptors: make([]Descriptor, len(c.descriptors))}
	copy(reg.descriptors, c.descriptors)

	return newRootProvider(reg, cfg)
}

// ---------------------------------------------------------------------------
// Typed registration helpers
// ---------------------------------------------------------------------------

// AddSingleton registers constructor candidates for T with the Singleton
// lifetime:
//
//	larch.AddSingleton[*Database](col, NewDatabase)
func AddSingleton[T any](c *Collection, ctors ...any) error {
	return addConstructors[T](c, Singleton, ctors)
}

// AddScoped registers constructor candidates for T with the Scoped lifetime.
func AddScoped[T any](c *Collection, ctors ...any) error {
	return addConstructors[T](c, Scoped, ctors)
}

// AddTransient registers constructor candidates for T with the Transient
// lifetime.
func AddTransient[T any](c *Collection, ctors ...any) error {
	return addConstructors[T](c, Transient, ctors)
}

func addConstructors[T any](c *Collection, lifetime Lifetime, ctors []any) error {
	d, err := NewConstructors(KeyOf[T](), lifetime, ctors...)
	if err != nil {
		return err
	}
	return c.Add(d)
}

// AddInstance registers a pre-built value for T. The engine hands the value
// out unchanged and never disposes it.
func AddInstance[T any](c *Collection, value T) error {
	return c.Add(NewInstance(KeyOf[T](), value))
}

// AddFactory registers a typed factory for T. The factory receives the
// requesting scope and may resolve further dependencies from it.
func AddFactory[T any](c *Collection, lifetime Lifetime, fn func(*Provider) (T, error)) error {
	if fn == nil {
		return fmt.Errorf("%w: nil factory for %s", ErrInvalidConstructor, KeyOf[T]())
	}
	return c.Add(NewFactory(KeyOf[T](), lifetime, func(p *Provider) (any, error) {
		return fn(p)
	}))
}

// AddGeneric registers a binder for an open definition. See [NewGeneric].
func AddGeneric(c *Collection, def *Definition, lifetime Lifetime, binder func(*Provider, reflect.Type) (any, error)) error {
	if binder == nil {
		return fmt.Errorf("%w: nil binder for %s", ErrInvalidConstructor, def.Name())
	}
	return c.Add(NewGeneric(def, lifetime, binder))
}

// ---------------------------------------------------------------------------
// Sealed registry
// ---------------------------------------------------------------------------

// registry is the sealed, read-only descriptor list shared by every scope of
// one container. Safe for concurrent readers.
type registry struct {
	descriptors []Descriptor
}

// last returns the last descriptor with an exact key match.
func (r *registry) last(k Key) (*Descriptor, bool) {
	for i := len(r.descriptors) - 1; i >= 0; i-- {
		if r.descriptors[i].Key == k {
			return &r.descriptors[i], true
		}
	}
	return nil, false
}

// all returns every descriptor with an exact key match, in registration
// order.
func (r *registry) all(k Key) []*Descriptor {
	var out []*Descriptor
	for i := range r.descriptors {
		if r.descriptors[i].Key == k {
			out = append(out, &r.descriptors[i])
		}
	}
	return out
}

// lastGeneric returns the last descriptor registered against the open
// definition.
func (r *registry) lastGeneric(def *Definition) (*Descriptor, bool) {
	for i := len(r.descriptors) - 1; i >= 0; i-- {
		if r.descriptors[i].Key.Def == def && r.descriptors[i].binder != nil {
			return &r.descriptors[i], true
		}
	}
	return nil, false
}

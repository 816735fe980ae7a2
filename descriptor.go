package larch

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// Descriptor is one registration: a service key, a lifetime, and exactly one
// implementation variant. Build a Descriptor through the helpers on
// [Collection] or construct it with [NewInstance], [NewFactory],
// [NewConstructors] or [NewGeneric].
type Descriptor struct {
	Key      Key
	Lifetime Lifetime

	// Exactly one of the following is set.
	value    any
	hasValue bool
	factory  func(*Provider) (any, error)
	ctors    []constructor
	binder   func(*Provider, reflect.Type) (any, error)
}

// constructor is one candidate constructor function for a registration,
// with its parameter types cached.
type constructor struct {
	fn     reflect.Value
	params []reflect.Type
	hasErr bool
}

// NewInstance registers a pre-built value. The engine never constructs or
// disposes it; the value is handed out as-is. Instance registrations are
// always Singleton.
func NewInstance(key Key, value any) Descriptor {
	return Descriptor{Key: key, Lifetime: Singleton, value: value, hasValue: true}
}

// NewFactory registers a factory invoked with the requesting scope. The
// factory may call Resolve on the scope to pull further dependencies.
func NewFactory(key Key, lifetime Lifetime, fn func(*Provider) (any, error)) Descriptor {
	return Descriptor{Key: key, Lifetime: lifetime, factory: fn}
}

// NewConstructors registers one or more candidate constructor functions for
// the key. Each must have the signature func(deps...) T or
// func(deps...) (T, error), with T assignable to the key's type. At resolve
// time candidates are tried most-parameters-first; ties keep the order given
// here; the first candidate whose parameters all resolve wins.
func NewConstructors(key Key, lifetime Lifetime, fns ...any) (Descriptor, error) {
	if len(fns) == 0 {
		return Descriptor{}, fmt.Errorf("%w: no constructors for %s", ErrInvalidConstructor, key)
	}

	ctors := make([]constructor, 0, len(fns))
	for _, fn := range fns {
		c, err := newConstructor(key, fn)
		if err != nil {
			return Descriptor{}, err
		}
		ctors = append(ctors, c)
	}

	// Most parameters first; SliceStable keeps the caller's order for ties.
	sort.SliceStable(ctors, func(i, j int) bool {
		return len(ctors[i].params) > len(ctors[j].params)
	})

	return Descriptor{Key: key, Lifetime: lifetime, ctors: ctors}, nil
}

// NewGeneric registers a binder for an open definition. When a key pairing
// def with a concrete type argument is requested and no exact registration
// matches, the binder is invoked with the requesting scope and that argument.
func NewGeneric(def *Definition, lifetime Lifetime, binder func(*Provider, reflect.Type) (any, error)) Descriptor {
	return Descriptor{Key: Key{Def: def}, Lifetime: lifetime, binder: binder}
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

func newConstructor(key Key, fn any) (constructor, error) {
	if fn == nil {
		return constructor{}, fmt.Errorf("%w: nil constructor for %s", ErrInvalidConstructor, key)
	}

	val := reflect.ValueOf(fn)
	typ := val.Type()

	if typ.Kind() != reflect.Func {
		return constructor{}, fmt.Errorf("%w: %s constructor must be a function, got %T", ErrInvalidConstructor, key, fn)
	}

	if typ.IsVariadic() {
		return constructor{}, fmt.Errorf("%w: %s constructor must not be variadic; take a []T parameter instead", ErrInvalidConstructor, key)
	}

	if typ.NumOut() == 0 || typ.NumOut() > 2 {
		return constructor{}, fmt.Errorf("%w: %s constructor must return (T) or (T, error)", ErrInvalidConstructor, key)
	}

	hasErr := typ.NumOut() == 2
	if hasErr && !typ.Out(1).Implements(errType) {
		return constructor{}, fmt.Errorf("%w: %s constructor's second return value must implement error", ErrInvalidConstructor, key)
	}

	if key.Type != nil && !typ.Out(0).AssignableTo(key.Type) {
		return constructor{}, fmt.Errorf("%w: constructor returns %s, not assignable to %s", ErrInvalidConstructor, typ.Out(0), key)
	}

	params := make([]reflect.Type, typ.NumIn())
	for i := 0; i < typ.NumIn(); i++ {
		params[i] = typ.In(i)
	}

	return constructor{fn: val, params: params, hasErr: hasErr}, nil
}

// call invokes the constructor with already-resolved arguments.
func (c constructor) call(args []reflect.Value) (any, error) {
	results := c.fn.Call(args)
	if c.hasErr && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

// validate checks that the descriptor carries exactly one implementation
// variant and a usable key.
func (d Descriptor) validate() error {
	variants := 0
	if d.hasValue {
		variants++
	}
	if d.factory != nil {
		variants++
	}
	if len(d.ctors) > 0 {
		variants++
	}
	if d.binder != nil {
		variants++
	}
	if variants != 1 {
		return errors.New("descriptor must carry exactly one implementation variant")
	}
	if d.Key.isZero() {
		return errors.New("descriptor has no service key")
	}
	if d.binder != nil && d.Key.Def == nil {
		return errors.New("generic descriptor must be keyed by a definition")
	}
	return nil
}

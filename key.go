package larch

import "reflect"

// Key identifies a requested service. Keys compare structurally: two keys are
// equal when they denote the same Go type, or the same [Definition] applied to
// the same type argument. Names never participate in equality.
//
// Ordinary requests carry only Type. Parameterized requests carry Def and Arg
// instead, pairing an open definition with a concrete type argument.
type Key struct {
	Type reflect.Type
	Def  *Definition
	Arg  reflect.Type
}

// KeyOf returns the key for the type T. Interfaces work the usual way:
//
//	k := larch.KeyOf[Logger]()
func KeyOf[T any]() Key {
	return Key{Type: reflect.TypeOf((*T)(nil)).Elem()}
}

// GenericKey returns the key for the definition def instantiated with arg.
func GenericKey(def *Definition, arg reflect.Type) Key {
	return Key{Def: def, Arg: arg}
}

// String renders the key for error messages and logs.
func (k Key) String() string {
	if k.Def != nil {
		if k.Arg == nil {
			return k.Def.name
		}
		return k.Def.name + "[" + k.Arg.String() + "]"
	}
	if k.Type == nil {
		return "<nil>"
	}
	return k.Type.String()
}

// isZero reports whether the key identifies nothing at all.
func (k Key) isZero() bool {
	return k.Type == nil && k.Def == nil
}

// Definition is an open registration target: a family of services
// parameterized by one type argument, bound to concrete instantiations at
// resolve time. Definitions compare by identity; the name appears only in
// error messages.
type Definition struct {
	name string
}

// NewDefinition creates a fresh definition. Callers usually keep the result
// in a package-level variable:
//
//	var Repository = larch.NewDefinition("Repository")
func NewDefinition(name string) *Definition {
	return &Definition{name: name}
}

// Name returns the definition's display name.
func (d *Definition) Name() string { return d.name }

// sliceElem returns the element type when the key requests a slice, which is
// the built-in "collection of T" form. Requesting []T gathers every
// registration for T.
func (k Key) sliceElem() (reflect.Type, bool) {
	if k.Type != nil && k.Type.Kind() == reflect.Slice {
		return k.Type.Elem(), true
	}
	return nil, false
}

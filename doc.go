// Package larch provides a lifetime-scoped dependency injection container
// for Go.
//
// Registrations are collected in order, sealed into a container, and
// resolved on demand through scopes. Register constructors, factories, or
// pre-built values with a [Collection], call [Collection.Build] to seal it,
// then retrieve fully-assembled objects with [Resolve] or
// [Provider.Resolve].
//
// # Quick Start
//
//	col := larch.NewCollection()
//	larch.AddSingleton[*Logger](col, NewLogger)
//	larch.AddScoped[*UnitOfWork](col, NewUnitOfWork)
//
//	root := col.Build()
//	defer root.Close()
//
//	scope, _ := root.CreateScope()
//	defer scope.Close()
//
//	uow, ok, err := larch.Resolve[*UnitOfWork](scope)
//
// # Lifetimes
//
// [Singleton] — one instance for the whole container, stored in the root
// scope and shared by every child.
//
// [Scoped] — one instance per scope; sibling scopes are isolated.
//
// [Transient] — a fresh instance on every resolution, tracked for disposal
// by the requesting scope.
//
// # Registration order
//
// Later registrations shadow earlier ones for singular resolution, while
// resolving []T returns every registration for T in order. An unregistered
// key is not an error: Resolve reports it as absent and the caller decides.
//
// # Scope validation
//
// Building with [WithValidation] surfaces captive dependencies early: a
// scoped service resolved inside a singleton's dependency subtree, or
// directly from the root scope, fails with [ErrCaptiveDependency] instead of
// being silently cached for the lifetime of the container.
//
// # Disposal
//
// Closing a scope releases every transient it constructed and every
// disposable instance in its own cache — anything implementing [io.Closer]
// — exactly once, leaving root-owned singletons untouched. Close is
// idempotent and reports teardown failures joined together.
package larch

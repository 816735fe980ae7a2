package larch_test

import (
	"testing"

	"github.com/larchkit/larch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func TestAddConstructors(t *testing.T) {
	t.Run("valid constructor", func(t *testing.T) {
		col := larch.NewCollection()
		require.NoError(t, larch.AddSingleton[*testLogger](col, newTestLogger))
		assert.Equal(t, 1, col.Len())
	})

	t.Run("constructor returning (T, error)", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddSingleton[*testConfig](col, func() (*testConfig, error) {
			return &testConfig{}, nil
		})
		require.NoError(t, err)
	})

	t.Run("non-function is rejected", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddSingleton[*testLogger](col, "not a function")
		require.ErrorIs(t, err, larch.ErrInvalidConstructor)
	})

	t.Run("no return values rejected", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddSingleton[*testLogger](col, func() {})
		require.ErrorIs(t, err, larch.ErrInvalidConstructor)
	})

	t.Run("three return values rejected", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddSingleton[int](col, func() (int, int, int) { return 0, 0, 0 })
		require.ErrorIs(t, err, larch.ErrInvalidConstructor)
	})

	t.Run("second return not error rejected", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddSingleton[int](col, func() (int, string) { return 0, "" })
		require.ErrorIs(t, err, larch.ErrInvalidConstructor)
	})

	t.Run("variadic constructor rejected", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddSingleton[*testLogger](col, func(prefixes ...string) *testLogger {
			return &testLogger{}
		})
		require.ErrorIs(t, err, larch.ErrInvalidConstructor)
	})

	t.Run("return type must match the key", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddSingleton[*testLogger](col, newTestConfig)
		require.ErrorIs(t, err, larch.ErrInvalidConstructor)
	})

	t.Run("concrete type registered against interface", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddSingleton[testService](col, func() *namedService {
			return &namedService{name: "svc"}
		})
		require.NoError(t, err)
	})

	t.Run("no constructors rejected", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddSingleton[*testLogger](col)
		require.ErrorIs(t, err, larch.ErrInvalidConstructor)
	})

	t.Run("nil factory rejected", func(t *testing.T) {
		col := larch.NewCollection()
		err := larch.AddFactory[*testLogger](col, larch.Transient, nil)
		require.ErrorIs(t, err, larch.ErrInvalidConstructor)
	})
}

func TestDescriptorValidation(t *testing.T) {
	t.Run("empty descriptor rejected", func(t *testing.T) {
		col := larch.NewCollection()
		err := col.Add(larch.Descriptor{Key: larch.KeyOf[*testLogger]()})
		require.Error(t, err)
	})

	t.Run("keyless descriptor rejected", func(t *testing.T) {
		col := larch.NewCollection()
		err := col.Add(larch.NewInstance(larch.Key{}, &testLogger{}))
		require.Error(t, err)
	})

	t.Run("instance descriptor accepted", func(t *testing.T) {
		col := larch.NewCollection()
		err := col.Add(larch.NewInstance(larch.KeyOf[*testLogger](), &testLogger{}))
		require.NoError(t, err)
	})
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

func TestBuild(t *testing.T) {
	t.Run("empty collection builds", func(t *testing.T) {
		root := larch.NewCollection().Build()
		require.NotNil(t, root)
		assert.True(t, root.IsRoot())
	})

	t.Run("build seals the registrations", func(t *testing.T) {
		col := larch.NewCollection()
		require.NoError(t, larch.AddInstance(col, &testLogger{Prefix: "first"}))

		root := col.Build()

		// Registrations added after Build never reach the provider.
		require.NoError(t, larch.AddInstance(col, &testLogger{Prefix: "second"}))

		got := resolveOK[*testLogger](t, root)
		assert.Equal(t, "first", got.Prefix)
	})

	t.Run("two providers from one collection are independent", func(t *testing.T) {
		col := larch.NewCollection()
		require.NoError(t, larch.AddSingleton[*testLogger](col, newTestLogger))

		a := col.Build()
		b := col.Build()

		assert.NotSame(t, resolveOK[*testLogger](t, a), resolveOK[*testLogger](t, b))
	})
}

package larch_test

import (
	"errors"
	"testing"

	"github.com/larchkit/larch"
	"github.com/stretchr/testify/require"
)

// Shared test types and constructors used across test files.

type testLogger struct{ Prefix string }
type testConfig struct{ DSN string }

type testDatabase struct {
	Config *testConfig
	Logger *testLogger
}

type testUnitOfWork struct {
	DB *testDatabase
}

type testService interface {
	Name() string
}

type namedService struct{ name string }

func (s *namedService) Name() string { return s.name }

func newTestLogger() *testLogger { return &testLogger{Prefix: "app"} }
func newTestConfig() *testConfig { return &testConfig{DSN: "postgres://localhost"} }

func newTestDatabase(cfg *testConfig, log *testLogger) *testDatabase {
	return &testDatabase{Config: cfg, Logger: log}
}

func newTestUnitOfWork(db *testDatabase) *testUnitOfWork {
	return &testUnitOfWork{DB: db}
}

type testCircA struct{ B *testCircB }
type testCircB struct{ C *testCircC }
type testCircC struct{ A *testCircA }

func newTestCircA(b *testCircB) *testCircA { return &testCircA{B: b} }
func newTestCircB(c *testCircC) *testCircB { return &testCircB{C: c} }
func newTestCircC(a *testCircA) *testCircC { return &testCircC{A: a} }

// closeRecorder counts Close calls, optionally appends its name to a shared
// teardown log, and returns fail from Close when set.
type closeRecorder struct {
	name   string
	closed int
	order  *[]string
	fail   error
}

func (c *closeRecorder) Close() error {
	c.closed++
	if c.order != nil {
		*c.order = append(*c.order, c.name)
	}
	return c.fail
}

// mustScope creates a child scope or fails the test.
func mustScope(t *testing.T, p *larch.Provider) *larch.Provider {
	t.Helper()
	scope, err := p.CreateScope()
	require.NoError(t, err)
	return scope
}

// resolveOK resolves T and fails the test on absence or error.
func resolveOK[T any](t *testing.T, p *larch.Provider) T {
	t.Helper()
	v, ok, err := larch.Resolve[T](p)
	require.NoError(t, err)
	require.True(t, ok, "expected a registration for the requested type")
	return v
}

var errTeardown = errors.New("teardown failed")

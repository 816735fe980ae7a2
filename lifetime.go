package larch

// Lifetime controls how instances of a registration are shared between
// resolutions.
type Lifetime int

const (
	// Transient means a new instance is constructed on every resolution.
	// Transient instances are tracked for disposal by the scope that
	// requested them.
	Transient Lifetime = iota

	// Scoped means one instance per [Provider] scope. Sibling scopes each
	// get their own instance; repeated resolutions within one scope return
	// the same instance.
	Scoped

	// Singleton means one instance for the whole container. The instance
	// is cached in the root scope regardless of which scope requested it,
	// and survives child-scope disposal.
	Singleton
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

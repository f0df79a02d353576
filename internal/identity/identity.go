// Package identity exposes the session identity contract consumed by every
// remote-backed component. An absent identity is a valid terminal state, not
// an error: operations short-circuit to safe defaults when no user is set.
package identity

// Identity identifies the current session user
type Identity struct {
	ID string
}

// Provider supplies the current session identity.
// The second return value is false when no user is authenticated.
type Provider interface {
	CurrentUser() (Identity, bool)
}

// Static is a Provider backed by a fixed identity, used by tools and tests
type Static struct {
	identity Identity
	present  bool
}

// NewStatic creates a provider that always returns id.
// An empty id behaves as "not authenticated".
func NewStatic(id string) *Static {
	return &Static{
		identity: Identity{ID: id},
		present:  id != "",
	}
}

// CurrentUser implements Provider
func (s *Static) CurrentUser() (Identity, bool) {
	return s.identity, s.present
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func() (Identity, bool)

// CurrentUser implements Provider
func (f ProviderFunc) CurrentUser() (Identity, bool) {
	return f()
}

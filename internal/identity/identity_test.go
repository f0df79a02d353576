package identity

import "testing"

func TestStatic(t *testing.T) {
	idp := NewStatic("user-1")
	id, ok := idp.CurrentUser()
	if !ok || id.ID != "user-1" {
		t.Errorf("CurrentUser() = %v, %v; want {user-1}, true", id, ok)
	}
}

func TestStatic_Empty(t *testing.T) {
	idp := NewStatic("")
	if _, ok := idp.CurrentUser(); ok {
		t.Error("empty id should behave as not authenticated")
	}
}

func TestProviderFunc(t *testing.T) {
	calls := 0
	idp := ProviderFunc(func() (Identity, bool) {
		calls++
		return Identity{ID: "u"}, true
	})

	id, ok := idp.CurrentUser()
	if !ok || id.ID != "u" || calls != 1 {
		t.Errorf("CurrentUser() = %v, %v (calls=%d)", id, ok, calls)
	}
}

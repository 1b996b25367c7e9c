package policy

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMembershipCache_UserList(t *testing.T) {
	c := newMembershipCache(nil, nil)
	ok, err := c.isUserInAny(context.Background(), "alice", IdentitySet{Users: []string{"alice", "bob"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected alice to match the user list")
	}
}

func TestMembershipCache_EmptySetNeverMatches(t *testing.T) {
	c := newMembershipCache(nil, nil)
	ok, err := c.isUserInAny(context.Background(), "alice", IdentitySet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected an empty identity set never to match")
	}
}

func TestMembershipCache_OrganizationLookup(t *testing.T) {
	var calls int32
	orgFn := func(ctx context.Context, org string) ([]Member, error) {
		atomic.AddInt32(&calls, 1)
		return []Member{{Login: "carol"}}, nil
	}
	c := newMembershipCache(orgFn, nil)

	ok, err := c.isUserInAny(context.Background(), "carol", IdentitySet{Organizations: []string{"acme"}})
	if err != nil || !ok {
		t.Fatalf("expected carol to match org roster, got ok=%v err=%v", ok, err)
	}

	ok, err = c.isUserInAny(context.Background(), "carol", IdentitySet{Organizations: []string{"acme"}})
	if err != nil || !ok {
		t.Fatalf("second lookup failed: ok=%v err=%v", ok, err)
	}

	if calls != 1 {
		t.Errorf("expected exactly one roster fetch, got %d", calls)
	}
}

func TestMembershipCache_TeamLookup(t *testing.T) {
	var calls int32
	teamFn := func(ctx context.Context, org, slug string) ([]Member, error) {
		atomic.AddInt32(&calls, 1)
		if org != "acme" || slug != "platform" {
			t.Errorf("unexpected org/slug: %s/%s", org, slug)
		}
		return []Member{{Login: "dave"}}, nil
	}
	c := newMembershipCache(nil, teamFn)

	ok, err := c.isUserInAny(context.Background(), "dave", IdentitySet{Teams: []string{"acme/platform"}})
	if err != nil || !ok {
		t.Fatalf("expected dave to match team roster, got ok=%v err=%v", ok, err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one team fetch, got %d", calls)
	}
}

func TestMembershipCache_FetchErrorSurfaces(t *testing.T) {
	orgFn := func(ctx context.Context, org string) ([]Member, error) {
		return nil, errBoom
	}
	c := newMembershipCache(orgFn, nil)

	_, err := c.isUserInAny(context.Background(), "alice", IdentitySet{Organizations: []string{"acme"}})
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	var fe *FetchError
	if !isFetchError(err, &fe) {
		t.Errorf("expected a *FetchError, got %T: %v", err, err)
	}
}

func TestMembershipCache_SingleFlightUnderConcurrency(t *testing.T) {
	var calls int32
	orgFn := func(ctx context.Context, org string) ([]Member, error) {
		atomic.AddInt32(&calls, 1)
		return []Member{{Login: "alice"}}, nil
	}
	c := newMembershipCache(orgFn, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.isUserInAny(context.Background(), "alice", IdentitySet{Organizations: []string{"acme"}})
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected a single roster fetch across concurrent callers, got %d", calls)
	}
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func isFetchError(err error, target **FetchError) bool {
	for err != nil {
		if fe, ok := err.(*FetchError); ok {
			*target = fe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

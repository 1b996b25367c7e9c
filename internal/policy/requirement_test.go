package policy

import (
	"context"
	"testing"
)

func TestCheckRequirement_NilRequirementAlwaysPasses(t *testing.T) {
	e := newTestEngine(&Config{})
	ok, err := e.checkRequirement(context.Background(), nil, nil, &Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("a nil requirement must always be satisfied")
	}
}

func TestCheckRequirement_CountMetByDistinctUsers(t *testing.T) {
	e := newTestEngine(&Config{})
	req := &ApprovalRequirement{Count: 2, Users: []string{"alice", "bob"}}
	methods := &ApprovalMethods{GithubReview: true}
	pctx := &Context{
		Reviews: []Review{
			{ID: 1, User: Actor{ID: 1, Login: "alice"}, State: ReviewStateApproved},
			{ID: 2, User: Actor{ID: 2, Login: "bob"}, State: ReviewStateApproved},
		},
	}

	ok, err := e.checkRequirement(context.Background(), req, methods, pctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected two distinct authorized approvals to satisfy count=2")
	}
}

func TestCheckRequirement_UnauthorizedReviewerDoesNotCount(t *testing.T) {
	e := newTestEngine(&Config{})
	req := &ApprovalRequirement{Count: 1, Users: []string{"alice"}}
	methods := &ApprovalMethods{GithubReview: true}
	pctx := &Context{
		Reviews: []Review{{ID: 1, User: Actor{ID: 9, Login: "mallory"}, State: ReviewStateApproved}},
	}

	ok, err := e.checkRequirement(context.Background(), req, methods, pctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("a reviewer outside the authorized set must not satisfy the requirement")
	}
}

func TestCheckRequirement_TeamMembershipSatisfies(t *testing.T) {
	teamFn := func(ctx context.Context, org, slug string) ([]Member, error) {
		return []Member{{Login: "dave"}}, nil
	}
	e := &Engine{config: &Config{}, membership: newMembershipCache(nil, teamFn), logger: NoopLogger{}}
	req := &ApprovalRequirement{Count: 1, Teams: []string{"acme/platform"}}
	methods := &ApprovalMethods{GithubReview: true}
	pctx := &Context{
		Reviews: []Review{{ID: 1, User: Actor{ID: 1, Login: "dave"}, State: ReviewStateApproved}},
	}

	ok, err := e.checkRequirement(context.Background(), req, methods, pctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected team membership to satisfy the requirement")
	}
}

func TestCheckRequirement_RosterFetchErrorPropagates(t *testing.T) {
	orgFn := func(ctx context.Context, org string) ([]Member, error) { return nil, errBoom }
	e := &Engine{config: &Config{}, membership: newMembershipCache(orgFn, nil), logger: NoopLogger{}}
	req := &ApprovalRequirement{Count: 1, Organizations: []string{"acme"}}
	methods := &ApprovalMethods{GithubReview: true}
	pctx := &Context{
		Reviews: []Review{{ID: 1, User: Actor{ID: 1, Login: "alice"}, State: ReviewStateApproved}},
	}

	_, err := e.checkRequirement(context.Background(), req, methods, pctx)
	if err == nil {
		t.Fatal("expected the roster fetch error to propagate out of the requirement check")
	}
}

func TestCheckRequirement_DuplicateReviewerCountsOnce(t *testing.T) {
	e := newTestEngine(&Config{})
	req := &ApprovalRequirement{Count: 2, Users: []string{"alice"}}
	methods := &ApprovalMethods{GithubReview: true}
	pctx := &Context{
		Reviews: []Review{
			{ID: 1, User: Actor{ID: 1, Login: "alice"}, State: ReviewStateApproved},
			{ID: 2, User: Actor{ID: 1, Login: "alice"}, State: ReviewStateApproved},
		},
	}

	ok, err := e.checkRequirement(context.Background(), req, methods, pctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("the same reviewer approving twice must still count once, failing count=2")
	}
}

package policy

import (
	"context"
	"fmt"
	"sync"
)

// Member is a roster entry returned by the host's org/team listing
// callables.
type Member struct {
	Login string
}

// OrgMembersFunc lists the members of a GitHub organization.
type OrgMembersFunc func(ctx context.Context, org string) ([]Member, error)

// TeamMembersFunc lists the members of a GitHub team, identified by
// org and slug.
type TeamMembersFunc func(ctx context.Context, org, slug string) ([]Member, error)

// membershipCache memoizes roster lookups for the duration of one
// evaluation, keyed by org and by (org, slug), with single-flight
// semantics so concurrent sibling rule evaluations referencing the
// same organization or team issue at most one fetch (spec §5).
type membershipCache struct {
	listOrgMembers  OrgMembersFunc
	listTeamMembers TeamMembersFunc

	mu       sync.Mutex
	orgs     map[string]*rosterEntry
	teams    map[string]*rosterEntry
}

type rosterEntry struct {
	once    sync.Once
	members []Member
	err     error
}

func newMembershipCache(orgFn OrgMembersFunc, teamFn TeamMembersFunc) *membershipCache {
	return &membershipCache{
		listOrgMembers:  orgFn,
		listTeamMembers: teamFn,
		orgs:            make(map[string]*rosterEntry),
		teams:           make(map[string]*rosterEntry),
	}
}

func (c *membershipCache) orgMembers(ctx context.Context, org string) ([]Member, error) {
	entry := c.entryFor(c.orgs, org)
	entry.once.Do(func() {
		if c.listOrgMembers == nil {
			entry.err = wrapFetchError(fmt.Sprintf("no organization roster callable configured for %q", org), nil)
			return
		}
		entry.members, entry.err = c.listOrgMembers(ctx, org)
		if entry.err != nil {
			entry.err = wrapFetchError(fmt.Sprintf("failed to list organization members for %q", org), entry.err)
		}
	})
	return entry.members, entry.err
}

func (c *membershipCache) teamMembers(ctx context.Context, org, slug string) ([]Member, error) {
	key := org + "/" + slug
	entry := c.entryFor(c.teams, key)
	entry.once.Do(func() {
		if c.listTeamMembers == nil {
			entry.err = wrapFetchError(fmt.Sprintf("no team roster callable configured for %q", key), nil)
			return
		}
		entry.members, entry.err = c.listTeamMembers(ctx, org, slug)
		if entry.err != nil {
			entry.err = wrapFetchError(fmt.Sprintf("failed to list team members for %q", key), entry.err)
		}
	})
	return entry.members, entry.err
}

func (c *membershipCache) entryFor(m map[string]*rosterEntry, key string) *rosterEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := m[key]
	if !ok {
		entry = &rosterEntry{}
		m[key] = entry
	}
	return entry
}

// isUserInAny implements C2's isUserInAny(login, users, orgs, teams)
// contract: exact membership in users, then organization rosters, then
// team rosters ("org/slug"), short-circuiting on the first hit.
func (c *membershipCache) isUserInAny(ctx context.Context, login string, set IdentitySet) (bool, error) {
	if login == "" {
		return false, nil
	}

	for _, u := range set.Users {
		if u == login {
			return true, nil
		}
	}

	for _, org := range set.Organizations {
		members, err := c.orgMembers(ctx, org)
		if err != nil {
			return false, err
		}
		if containsLogin(members, login) {
			return true, nil
		}
	}

	for _, team := range set.Teams {
		org, slug, ok := splitTeamRef(team)
		if !ok {
			continue
		}
		members, err := c.teamMembers(ctx, org, slug)
		if err != nil {
			return false, err
		}
		if containsLogin(members, login) {
			return true, nil
		}
	}

	return false, nil
}

func containsLogin(members []Member, login string) bool {
	for _, m := range members {
		if m.Login == login {
			return true
		}
	}
	return false
}

func splitTeamRef(ref string) (org, slug string, ok bool) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == '/' {
			return ref[:i], ref[i+1:], true
		}
	}
	return "", "", false
}

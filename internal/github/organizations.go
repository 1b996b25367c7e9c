package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/deployops/approval-gate/internal/policy"
)

// ListOrganizationMembers retrieves every member of a GitHub organization.
func (c *Client) ListOrganizationMembers(ctx context.Context, org string) ([]policy.Member, error) {
	var members []policy.Member
	opts := &github.ListMembersOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		users, resp, err := c.client.Organizations.ListMembers(ctx, org, opts)
		if err != nil {
			if IsNotFound(err) {
				return nil, fmt.Errorf("organization %s not found", org)
			}
			if IsForbidden(err) {
				return nil, fmt.Errorf("insufficient permissions to list members of %s (requires Organization Members read permission)", org)
			}
			return nil, fmt.Errorf("failed to list members of %s: %w", org, err)
		}

		for _, u := range users {
			members = append(members, policy.Member{Login: u.GetLogin()})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return members, nil
}

// ListTeamMembers retrieves all members of a team, mapped into the
// policy engine's membership representation. Wraps GetTeamMembers so the
// policy package never depends on the go-github team listing directly.
func (c *Client) ListTeamMembers(ctx context.Context, org, slug string) ([]policy.Member, error) {
	members, err := c.GetTeamMembers(ctx, org+"/"+slug)
	if err != nil {
		return nil, err
	}
	out := make([]policy.Member, len(members))
	for i, m := range members {
		out[i] = policy.Member{Login: m.Login}
	}
	return out, nil
}

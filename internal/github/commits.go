package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/deployops/approval-gate/internal/policy"
)

// ListPullRequestCommitSHAs returns every commit SHA belonging to a pull
// request, in the order GitHub reports them (oldest first). A deployment
// triggered from a multi-commit PR must be judged against all of them, not
// just the branch HEAD, so condition predicates like has_valid_signatures_by
// and was_authored_by see every commit the policy document cares about.
func (c *Client) ListPullRequestCommitSHAs(ctx context.Context, number int) ([]string, error) {
	var shas []string
	opts := &github.ListOptions{PerPage: 100}

	for {
		commits, resp, err := c.client.PullRequests.ListCommits(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for pull request #%d: %w", number, err)
		}

		for _, commit := range commits {
			shas = append(shas, commit.GetSHA())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return shas, nil
}

// GetCommitsForSHAs fetches the full commit records for the given SHAs,
// including the GitHub accounts attached to authorship/committer fields and
// commit signature verification, as required by approval policy evaluation.
func (c *Client) GetCommitsForSHAs(ctx context.Context, shas []string) ([]policy.Commit, error) {
	commits := make([]policy.Commit, 0, len(shas))

	for _, sha := range shas {
		rc, _, err := c.client.Repositories.GetCommit(ctx, c.owner, c.repo, sha, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch commit %s: %w", sha, err)
		}

		pc := policy.Commit{SHA: rc.GetSHA()}
		if rc.Commit != nil {
			pc.Message = rc.Commit.GetMessage()
			if v := rc.Commit.Verification; v != nil {
				pc.Verification = &policy.Verification{
					Verified: v.GetVerified(),
					Reason:   v.GetReason(),
				}
			}
		}
		if rc.Author != nil {
			pc.Author = &policy.Actor{ID: rc.Author.GetID(), Login: rc.Author.GetLogin()}
		}
		if rc.Committer != nil {
			pc.Committer = &policy.Actor{ID: rc.Committer.GetID(), Login: rc.Committer.GetLogin()}
		}

		commits = append(commits, pc)
	}

	return commits, nil
}

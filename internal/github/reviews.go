package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/deployops/approval-gate/internal/policy"
)

// ListReviews fetches every review submitted against a pull
// request, mapped into the policy engine's review representation.
func (c *Client) ListReviews(ctx context.Context, number int) ([]policy.Review, error) {
	var reviews []policy.Review
	opts := &github.ListOptions{PerPage: 100}

	for {
		prReviews, resp, err := c.client.PullRequests.ListReviews(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for pull request #%d: %w", number, err)
		}

		for _, r := range prReviews {
			review := policy.Review{
				ID:       r.GetID(),
				State:    r.GetState(),
				Body:     r.GetBody(),
				CommitID: r.GetCommitID(),
			}
			if r.User != nil {
				review.User = policy.Actor{ID: r.User.GetID(), Login: r.User.GetLogin()}
			}
			if r.SubmittedAt != nil {
				review.SubmittedAt = r.GetSubmittedAt().String()
			}
			reviews = append(reviews, review)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return reviews, nil
}

package jira

import (
	"context"
	"fmt"
	"time"
)

// MarkVersionReleased attaches versionName as the fix version on every
// given issue key and marks that version released, used once a
// deployment's approval policy has passed.
func (c *Client) MarkVersionReleased(ctx context.Context, projectKey, versionName string, issueKeys []string) error {
	if len(issueKeys) == 0 {
		return nil
	}

	version, err := c.GetOrCreateVersion(ctx, projectKey, versionName)
	if err != nil {
		return fmt.Errorf("failed to resolve jira version %s/%s: %w", projectKey, versionName, err)
	}

	if err := c.SetFixVersionForIssues(ctx, issueKeys, *version); err != nil {
		return fmt.Errorf("failed to set fix version on issues: %w", err)
	}

	if version.ID != "" && !version.Released {
		if err := c.ReleaseVersion(ctx, version.ID, time.Now().UTC().Format("2006-01-02")); err != nil {
			return fmt.Errorf("failed to release jira version %s: %w", version.ID, err)
		}
	}

	return nil
}

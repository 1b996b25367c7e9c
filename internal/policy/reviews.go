package policy

// filterValidReviews implements C4: reduces raw reviews to the set of
// method-valid reviews for a requirement, applying commit binding,
// self-review exclusion, and method matching, in that order. Reviews
// are returned in input order.
func filterValidReviews(reviews []Review, commits []Commit, deployment *DeploymentRef, methods *ApprovalMethods) ([]Review, error) {
	commentPatterns, err := compilePatterns(methods)
	if err != nil {
		return nil, err
	}

	authorOrCommitterIDs := make(map[int64]bool)
	for _, c := range commits {
		if c.Author != nil {
			authorOrCommitterIDs[c.Author.ID] = true
		}
		if c.Committer != nil {
			authorOrCommitterIDs[c.Committer.ID] = true
		}
	}

	var valid []Review
	for _, r := range reviews {
		if deployment != nil && deployment.CommitSHA != "" && r.CommitID != deployment.CommitSHA {
			continue
		}
		if authorOrCommitterIDs[r.User.ID] {
			continue
		}
		if !methodMatches(r, methods, commentPatterns) {
			continue
		}
		valid = append(valid, r)
	}
	return valid, nil
}

func methodMatches(r Review, methods *ApprovalMethods, commentPatterns []*Pattern) bool {
	if methods == nil {
		return false
	}
	if methods.GithubReview && r.State == ReviewStateApproved {
		return true
	}
	if len(commentPatterns) > 0 && r.State == ReviewStateCommented && r.Body != "" {
		for _, p := range commentPatterns {
			if p.Matches(r.Body) {
				return true
			}
		}
	}
	return false
}

func compilePatterns(methods *ApprovalMethods) ([]*Pattern, error) {
	if methods == nil || len(methods.GithubReviewCommentPatterns) == 0 {
		return nil, nil
	}
	patterns := make([]*Pattern, 0, len(methods.GithubReviewCommentPatterns))
	for _, raw := range methods.GithubReviewCommentPatterns {
		p, err := Compile(raw)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

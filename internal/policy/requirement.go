package policy

import "context"

// checkRequirement implements C5: combines the review filter (C4) with
// membership (C2) to confirm at least Count distinct valid reviews
// come from authorized identities. A single reviewer is counted at
// most once, deduplicated by user id.
func (e *Engine) checkRequirement(ctx context.Context, req *ApprovalRequirement, methods *ApprovalMethods, pctx *Context) (bool, error) {
	if req == nil || req.Count < 1 {
		return true, nil
	}

	validReviews, err := filterValidReviews(pctx.Reviews, pctx.Commits, pctx.Deployment, methods)
	if err != nil {
		return false, err
	}

	identities := req.Identities()
	authorized := make(map[int64]bool)
	for _, r := range validReviews {
		ok, err := e.membership.isUserInAny(ctx, r.User.Login, identities)
		if err != nil {
			return false, err
		}
		if ok {
			authorized[r.User.ID] = true
		}
	}

	return len(authorized) >= req.Count, nil
}

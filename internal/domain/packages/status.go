package packages

import (
	"time"
)

// PackageStatus derives the base lifecycle status of a contract from the
// shape of its draft revision and submission history. Status is never stored;
// an unrecognized shape is a data-integrity failure and returns an
// invariant_violation error rather than a guess, since a wrong status would
// corrupt downstream decisions like double-submit rejection.
func PackageStatus(c *Contract) (Status, error) {
	const op = "packages.PackageStatus"
	if c == nil {
		return "", NewError(CodeInvariantViolation, op, "nil contract", nil)
	}
	if c.DraftRevision != nil {
		if c.DraftRevision.UnlockInfo != nil {
			return StatusUnlocked, nil
		}
		if len(c.PackageSubmissions) == 0 && c.DraftRevision.SubmitInfo == nil {
			return StatusDraft, nil
		}
		return "", NewError(CodeInvariantViolation, op, "contract has a draft revision with submission history but no unlock info", nil)
	}
	switch len(c.PackageSubmissions) {
	case 0:
		return "", NewError(CodeInvariantViolation, op, "contract has no draft revision and no submissions", nil)
	case 1:
		return StatusSubmitted, nil
	default:
		return StatusResubmitted, nil
	}
}

// RateStatus is the rate-flavored base status projection.
func RateStatus(r *Rate) (Status, error) {
	const op = "packages.RateStatus"
	if r == nil {
		return "", NewError(CodeInvariantViolation, op, "nil rate", nil)
	}
	if r.DraftRevision != nil {
		if r.DraftRevision.UnlockInfo != nil {
			return StatusUnlocked, nil
		}
		if len(r.PackageSubmissions) == 0 && r.DraftRevision.SubmitInfo == nil {
			return StatusDraft, nil
		}
		return "", NewError(CodeInvariantViolation, op, "rate has a draft revision with submission history but no unlock info", nil)
	}
	switch len(r.PackageSubmissions) {
	case 0:
		return "", NewError(CodeInvariantViolation, op, "rate has no draft revision and no submissions", nil)
	case 1:
		return StatusSubmitted, nil
	default:
		return StatusResubmitted, nil
	}
}

// ConsolidatedStatus overlays the latest review action on the base lifecycle
// status. WITHDRAWN and APPROVED are terminal but reversible: an undo action
// appends a new opposing entry rather than mutating history, so only the
// newest action matters.
func ConsolidatedStatus(c *Contract) (Status, error) {
	base, err := PackageStatus(c)
	if err != nil {
		return "", err
	}
	return overlayReviewStatus(base, c.ReviewStatusActions)
}

// RateConsolidatedStatus is the rate-flavored consolidated projection.
func RateConsolidatedStatus(r *Rate) (Status, error) {
	base, err := RateStatus(r)
	if err != nil {
		return "", err
	}
	return overlayReviewStatus(base, r.ReviewStatusActions)
}

func overlayReviewStatus(base Status, actions []ReviewStatusAction) (Status, error) {
	latest := latestReviewAction(actions)
	if latest == nil {
		return base, nil
	}
	switch latest.ActionType {
	case ActionMarkAsApproved:
		return StatusApproved, nil
	case ActionWithdraw:
		return StatusWithdrawn, nil
	case ActionUndoMarkAsApproved, ActionUndoWithdraw:
		return base, nil
	default:
		return "", NewError(CodeInvariantViolation, "packages.ConsolidatedStatus", "unrecognized review action type: "+string(latest.ActionType), nil)
	}
}

func latestReviewAction(actions []ReviewStatusAction) *ReviewStatusAction {
	var latest *ReviewStatusAction
	for i := range actions {
		if latest == nil || actions[i].UpdatedAt.After(latest.UpdatedAt) {
			latest = &actions[i]
		}
	}
	return latest
}

// LastUpdatedForDisplay aggregates the most recent activity timestamp for
// dashboard sorting. Extra candidates (latest question, latest linked-rate
// resubmission) may be supplied as time.Time, *time.Time, or RFC3339 strings;
// absent or unparseable values are excluded from the max, not treated as zero.
func LastUpdatedForDisplay(c *Contract, extras ...any) time.Time {
	var max time.Time
	consider := func(t time.Time, ok bool) {
		if ok && t.After(max) {
			max = t
		}
	}
	if c == nil {
		return max
	}
	consider(c.UpdatedAt, !c.UpdatedAt.IsZero())
	if c.DraftRevision != nil {
		consider(c.DraftRevision.UpdatedAt, !c.DraftRevision.UpdatedAt.IsZero())
		if c.DraftRevision.UnlockInfo != nil {
			consider(c.DraftRevision.UnlockInfo.UpdatedAt, true)
		}
	}
	if last := LatestSubmission(c); last != nil {
		// The package's own submit time, not just the contract revision's: a
		// rate-caused resubmission carries an older contract snapshot.
		consider(last.SubmitInfo.UpdatedAt, !last.SubmitInfo.UpdatedAt.IsZero())
		if last.ContractRevision.SubmitInfo != nil {
			consider(last.ContractRevision.SubmitInfo.UpdatedAt, true)
		}
	}
	if action := latestReviewAction(c.ReviewStatusActions); action != nil {
		consider(action.UpdatedAt, true)
	}
	for _, extra := range extras {
		consider(normalizeTime(extra))
	}
	return max
}

// normalizeTime coerces the mixed timestamp representations that arrive from
// callers into a comparable time.Time.
func normalizeTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

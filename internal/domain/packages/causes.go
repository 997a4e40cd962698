package packages

import (
	"sort"

	"github.com/google/uuid"
)

// SubmissionCause classifies what produced one package submission on a
// contract. RemovedRateIDs is populated for RATE_UNLINK so callers can tell
// which previously-linked rates disappeared, rather than collapsing "deleted"
// and "detached" into an opaque variant.
type SubmissionCause struct {
	Cause          UpdateCause
	Submission     ContractPackageSubmission
	RemovedRateIDs []uuid.UUID
}

// DeriveSubmissionCauses reconstructs, submission by submission, the cause of
// each entry in a contract's change history. Results are returned oldest
// first.
//
// Submissions are explicitly re-sorted by submit time here; the scan never
// relies on the stored array order. Each submission is compared against its
// chronological predecessor:
//
//  1. the contract's own revision was submitted -> CONTRACT_SUBMISSION
//  2. no associated rate revision was submitted -> RATE_UNLINK
//  3. the submitted rate's rateID was already present on the predecessor
//     -> RATE_SUBMISSION, else -> RATE_LINK
//
// A non-contract cause on the bootstrap submission is impossible: the first
// submission of a contract must submit the contract itself. Hitting that
// shape is a data-integrity failure and returns an invariant_violation error.
func DeriveSubmissionCauses(c *Contract) ([]SubmissionCause, error) {
	const op = "packages.DeriveSubmissionCauses"
	if c == nil {
		return nil, NewError(CodeInvariantViolation, op, "nil contract", nil)
	}

	asc := make([]ContractPackageSubmission, len(c.PackageSubmissions))
	copy(asc, c.PackageSubmissions)
	sort.SliceStable(asc, func(i, j int) bool {
		return asc[i].SubmitInfo.UpdatedAt.Before(asc[j].SubmitInfo.UpdatedAt)
	})

	causes := make([]SubmissionCause, 0, len(asc))
	for i := range asc {
		sub := asc[i]
		var prev *ContractPackageSubmission
		if i > 0 {
			prev = &asc[i-1]
		}
		cause, err := deriveCause(sub, prev)
		if err != nil {
			return nil, err
		}
		causes = append(causes, cause)
	}
	return causes, nil
}

func deriveCause(sub ContractPackageSubmission, prev *ContractPackageSubmission) (SubmissionCause, error) {
	const op = "packages.deriveCause"

	submitted := make(map[uuid.UUID]struct{}, len(sub.SubmittedRevisionIDs))
	for _, id := range sub.SubmittedRevisionIDs {
		submitted[id] = struct{}{}
	}

	if _, ok := submitted[sub.ContractRevision.ID]; ok {
		return SubmissionCause{Cause: CauseContractSubmission, Submission: sub}, nil
	}

	var submittedRate *RateRevision
	for i := range sub.RateRevisions {
		if _, ok := submitted[sub.RateRevisions[i].ID]; ok {
			submittedRate = &sub.RateRevisions[i]
			break
		}
	}

	if submittedRate == nil {
		// No rate revision in this submission was itself submitted: a
		// previously-linked rate was removed without re-submitting anything.
		return SubmissionCause{
			Cause:          CauseRateUnlink,
			Submission:     sub,
			RemovedRateIDs: removedRateIDs(sub, prev),
		}, nil
	}

	if prev == nil {
		return SubmissionCause{}, NewError(CodeInvariantViolation, op,
			"submission caused by a rate has no prior contract submission to compare against", nil)
	}

	for _, rr := range prev.RateRevisions {
		if rr.RateID == submittedRate.RateID {
			return SubmissionCause{Cause: CauseRateSubmission, Submission: sub}, nil
		}
	}
	return SubmissionCause{Cause: CauseRateLink, Submission: sub}, nil
}

// removedRateIDs lists rateIDs present on the predecessor submission but
// absent from this one.
func removedRateIDs(sub ContractPackageSubmission, prev *ContractPackageSubmission) []uuid.UUID {
	if prev == nil {
		return nil
	}
	current := make(map[uuid.UUID]struct{}, len(sub.RateRevisions))
	for _, rr := range sub.RateRevisions {
		current[rr.RateID] = struct{}{}
	}
	var removed []uuid.UUID
	for _, rr := range prev.RateRevisions {
		if _, ok := current[rr.RateID]; !ok {
			removed = append(removed, rr.RateID)
		}
	}
	return removed
}

package packages

import (
	"time"
)

// Federal authority values carried on contract form data. CHIP-only
// populations may only claim the subset in chipFederalAuthorities.
const (
	AuthorityStatePlan   = "STATE_PLAN"
	AuthorityWaiver1915B = "WAIVER_1915B"
	AuthorityWaiver1115  = "WAIVER_1115"
	AuthorityVoluntary   = "VOLUNTARY"
	AuthorityBenchmark   = "BENCHMARK"
	AuthorityTitleXXI    = "TITLE_XXI"
)

var chipFederalAuthorities = map[string]struct{}{
	AuthorityWaiver1115: {},
	AuthorityTitleXXI:   {},
}

// LockedContractFormData is the type-level promotion of a draft that passed
// validation: the same form data plus the submitted status and timestamp.
type LockedContractFormData struct {
	ContractFormData
	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// PruneFormData strips fields that do not apply to the draft's current
// variant before validation. It is a pure transform returning a new value;
// the caller's draft keeps all fields so the state can revert submission type
// later without data loss.
//
// CONTRACT_ONLY submissions shed rate-related context (the caller passes rate
// infos separately and must drop them); CHIP-only populations shed federal
// authorities and provision answers that cannot apply to CHIP.
func PruneFormData(fd ContractFormData) ContractFormData {
	pruned := fd

	if fd.PopulationCovered == PopulationCHIP {
		var authorities []string
		for _, a := range fd.FederalAuthorities {
			if _, ok := chipFederalAuthorities[a]; ok {
				authorities = append(authorities, a)
			}
		}
		pruned.FederalAuthorities = authorities

		applicable := make(map[ProvisionKey]struct{})
		for _, key := range GenerateApplicableProvisionsList(fd) {
			applicable[key] = struct{}{}
		}
		provisions := make(map[ProvisionKey]bool, len(applicable))
		for key, val := range fd.ModifiedProvisions {
			if _, ok := applicable[key]; ok {
				provisions[key] = val
			}
		}
		pruned.ModifiedProvisions = provisions
	}

	return pruned
}

// ParseAndSubmitContract is the submit gate: it prunes the draft to its
// variant, then runs the completeness checks in order, first failure winning.
// On success the form data is promoted to its locked shape with status
// SUBMITTED; nothing beyond status and timestamp changes.
//
// ownedRates are the rate drafts created under this contract;
// linkedRateCount counts rates associated but owned elsewhere, which are not
// validated here (their owners validate them).
func ParseAndSubmitContract(fd ContractFormData, ownedRates []RateFormData, linkedRateCount int, flags FeatureFlags, submittedAt time.Time) (*LockedContractFormData, *SubmissionError) {
	pruned := PruneFormData(fd)

	if !hasCompleteContractFields(pruned, flags) {
		return nil, incomplete("formData is missing required contract fields")
	}
	if pruned.SubmissionType == SubmissionTypeContractAndRates && len(ownedRates)+linkedRateCount == 0 {
		return nil, incomplete("formData includes invalid rate fields")
	}
	if pruned.SubmissionType == SubmissionTypeContractAndRates {
		for _, rate := range ownedRates {
			if !hasCompleteRateFields(rate) {
				return nil, incomplete("formData is missing required rate fields")
			}
		}
	}
	if !hasValidDocuments(pruned, ownedRates) {
		return nil, incomplete("formData must have valid documents")
	}
	if !hasValidModifiedProvisionsForSubmit(pruned) {
		return nil, incomplete("formData is missing a required field")
	}

	return &LockedContractFormData{
		ContractFormData: pruned,
		Status:           StatusSubmitted,
		SubmittedAt:      submittedAt,
	}, nil
}

func hasCompleteContractFields(fd ContractFormData, flags FeatureFlags) bool {
	if fd.SubmissionType == "" ||
		fd.SubmissionDescription == "" ||
		fd.ContractType == "" ||
		fd.PopulationCovered == "" ||
		len(fd.ProgramIDs) == 0 ||
		fd.ContractDateStart == nil ||
		fd.ContractDateEnd == nil ||
		len(fd.ManagedCareEntities) == 0 ||
		len(fd.FederalAuthorities) == 0 ||
		len(fd.StateContacts) == 0 {
		return false
	}
	if flags.Require438Attestation {
		if fd.StatutoryRegulatoryAttestation == nil {
			return false
		}
		// A non-compliant answer must say why.
		if !*fd.StatutoryRegulatoryAttestation && fd.StatutoryRegulatoryAttestationDescription == "" {
			return false
		}
	}
	return true
}

func hasCompleteRateFields(rate RateFormData) bool {
	return rate.RateType != "" &&
		rate.RateDateStart != nil &&
		rate.RateDateEnd != nil &&
		rate.RateDateCertified != nil &&
		len(rate.RateProgramIDs) > 0 &&
		len(rate.CertifyingActuaries) > 0
}

func hasValidDocuments(fd ContractFormData, ownedRates []RateFormData) bool {
	if len(fd.ContractDocuments) == 0 {
		return false
	}
	for _, doc := range fd.ContractDocuments {
		if doc.Name == "" || doc.URL == "" {
			return false
		}
	}
	for _, doc := range fd.SupportingDocuments {
		if doc.Name == "" || doc.URL == "" {
			return false
		}
	}
	for _, rate := range ownedRates {
		if len(rate.RateDocuments) == 0 {
			return false
		}
		for _, doc := range rate.RateDocuments {
			if doc.Name == "" || doc.URL == "" {
				return false
			}
		}
	}
	return true
}

func hasValidModifiedProvisionsForSubmit(fd ContractFormData) bool {
	return HasValidModifiedProvisions(fd)
}

// LockedRateFormData is the submitted promotion of a rate draft.
type LockedRateFormData struct {
	RateFormData
	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ParseAndSubmitRate is the rate-flavored submit gate for independent rate
// resubmission.
func ParseAndSubmitRate(fd RateFormData, submittedAt time.Time) (*LockedRateFormData, *SubmissionError) {
	if !hasCompleteRateFields(fd) {
		return nil, incomplete("formData is missing required rate fields")
	}
	if len(fd.RateDocuments) == 0 {
		return nil, incomplete("formData must have valid documents")
	}
	for _, doc := range fd.RateDocuments {
		if doc.Name == "" || doc.URL == "" {
			return nil, incomplete("formData must have valid documents")
		}
	}
	return &LockedRateFormData{
		RateFormData: fd,
		Status:       StatusSubmitted,
		SubmittedAt:  submittedAt,
	}, nil
}

// ValidateStatusAndUpdateInfo is the resubmission guard. An UNLOCKED package
// needs a resubmit reason, which intentionally overwrites the unlock record's
// UpdatedReason in place: the single metadata slot is what the history UI
// displays. A package already SUBMITTED or RESUBMITTED can never be submitted
// again; that is a terminal conflict for the request, not a retryable one.
func ValidateStatusAndUpdateInfo(status Status, unlockInfo *UpdateInfo, submittedReason string) error {
	const op = "packages.ValidateStatusAndUpdateInfo"
	switch status {
	case StatusDraft:
		return nil
	case StatusUnlocked:
		if submittedReason == "" {
			return NewError(CodeValidation, op, "a reason is required when resubmitting an unlocked package", nil)
		}
		if unlockInfo != nil {
			unlockInfo.UpdatedReason = submittedReason
		}
		return nil
	case StatusSubmitted, StatusResubmitted:
		return NewError(CodeConflict, op, "attempted to submit a package that is already submitted", nil)
	default:
		return NewError(CodeInvariantViolation, op, "cannot submit a package in status "+string(status), nil)
	}
}

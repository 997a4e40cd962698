package packages

// ProvisionKey identifies one yes/no "modified provisions" question on a
// contract. Which keys apply is a pure function of the contract variant,
// recomputed every time; it is never cached on the entity.
type ProvisionKey string

const (
	ProvisionInLieuServicesAndSettings            ProvisionKey = "inLieuServicesAndSettings"
	ProvisionModifiedBenefitsProvided             ProvisionKey = "modifiedBenefitsProvided"
	ProvisionModifiedGeoAreaServed                ProvisionKey = "modifiedGeoAreaServed"
	ProvisionModifiedMedicaidBeneficiaries        ProvisionKey = "modifiedMedicaidBeneficiaries"
	ProvisionModifiedRiskSharingStrategy          ProvisionKey = "modifiedRiskSharingStrategy"
	ProvisionModifiedIncentiveArrangements        ProvisionKey = "modifiedIncentiveArrangements"
	ProvisionModifiedWitholdAgreements            ProvisionKey = "modifiedWitholdAgreements"
	ProvisionModifiedStateDirectedPayments        ProvisionKey = "modifiedStateDirectedPayments"
	ProvisionModifiedPassThroughPayments          ProvisionKey = "modifiedPassThroughPayments"
	ProvisionModifiedPaymentsForMentalDisease     ProvisionKey = "modifiedPaymentsForMentalDiseaseInstitutions"
	ProvisionModifiedMedicalLossRatioStandards    ProvisionKey = "modifiedMedicalLossRatioStandards"
	ProvisionModifiedOtherFinancialPaymentIncentive ProvisionKey = "modifiedOtherFinancialPaymentIncentive"
	ProvisionModifiedEnrollmentProcess            ProvisionKey = "modifiedEnrollmentProcess"
	ProvisionModifiedGrevienceAndAppeal           ProvisionKey = "modifiedGrevienceAndAppeal"
	ProvisionModifiedNetworkAdequacyStandards     ProvisionKey = "modifiedNetworkAdequacyStandards"
	ProvisionModifiedLengthOfContract             ProvisionKey = "modifiedLengthOfContract"
	ProvisionModifiedNonRiskPaymentArrangements   ProvisionKey = "modifiedNonRiskPaymentArrangements"
)

// ContractVariant is the tagged union of the three mutually exclusive
// contract shapes that drive provision applicability, plus the CHIP base
// shape that requires none.
type ContractVariant string

const (
	VariantCHIPBase          ContractVariant = "CHIP_BASE"
	VariantCHIPAmendment     ContractVariant = "CHIP_AMENDMENT"
	VariantMedicaidBase      ContractVariant = "MEDICAID_BASE"
	VariantMedicaidAmendment ContractVariant = "MEDICAID_AMENDMENT"
)

// VariantOf classifies form data into its provision-applicability variant.
// CHIP-only takes priority; anything Medicaid (including MEDICAID_AND_CHIP)
// splits on base vs amendment, with amendment as the default branch.
func VariantOf(fd ContractFormData) ContractVariant {
	if fd.PopulationCovered == PopulationCHIP {
		if fd.ContractType == ContractTypeAmendment {
			return VariantCHIPAmendment
		}
		return VariantCHIPBase
	}
	if fd.ContractType == ContractTypeBase {
		return VariantMedicaidBase
	}
	return VariantMedicaidAmendment
}

// medicaidAmendmentProvisions is the full question set, asked on Medicaid
// amendments.
var medicaidAmendmentProvisions = []ProvisionKey{
	ProvisionInLieuServicesAndSettings,
	ProvisionModifiedBenefitsProvided,
	ProvisionModifiedGeoAreaServed,
	ProvisionModifiedMedicaidBeneficiaries,
	ProvisionModifiedRiskSharingStrategy,
	ProvisionModifiedIncentiveArrangements,
	ProvisionModifiedWitholdAgreements,
	ProvisionModifiedStateDirectedPayments,
	ProvisionModifiedPassThroughPayments,
	ProvisionModifiedPaymentsForMentalDisease,
	ProvisionModifiedMedicalLossRatioStandards,
	ProvisionModifiedOtherFinancialPaymentIncentive,
	ProvisionModifiedEnrollmentProcess,
	ProvisionModifiedGrevienceAndAppeal,
	ProvisionModifiedNetworkAdequacyStandards,
	ProvisionModifiedLengthOfContract,
	ProvisionModifiedNonRiskPaymentArrangements,
}

// medicaidBaseProvisions are the risk and payment questions that apply to a
// base Medicaid contract.
var medicaidBaseProvisions = []ProvisionKey{
	ProvisionInLieuServicesAndSettings,
	ProvisionModifiedRiskSharingStrategy,
	ProvisionModifiedIncentiveArrangements,
	ProvisionModifiedWitholdAgreements,
	ProvisionModifiedStateDirectedPayments,
	ProvisionModifiedPassThroughPayments,
	ProvisionModifiedPaymentsForMentalDisease,
	ProvisionModifiedNonRiskPaymentArrangements,
}

// chipAmendmentProvisions excludes the Medicaid-only risk and payment
// questions that do not apply to CHIP populations.
var chipAmendmentProvisions = []ProvisionKey{
	ProvisionModifiedBenefitsProvided,
	ProvisionModifiedGeoAreaServed,
	ProvisionModifiedMedicaidBeneficiaries,
	ProvisionModifiedMedicalLossRatioStandards,
	ProvisionModifiedEnrollmentProcess,
	ProvisionModifiedGrevienceAndAppeal,
	ProvisionModifiedNetworkAdequacyStandards,
	ProvisionModifiedLengthOfContract,
	ProvisionModifiedNonRiskPaymentArrangements,
}

// GenerateApplicableProvisionsList returns the ordered provision keys that
// apply to the contract's variant. CHIP base contracts take no provisions at
// all.
func GenerateApplicableProvisionsList(fd ContractFormData) []ProvisionKey {
	switch VariantOf(fd) {
	case VariantCHIPAmendment:
		return chipAmendmentProvisions
	case VariantCHIPBase:
		return nil
	case VariantMedicaidBase:
		return medicaidBaseProvisions
	default:
		return medicaidAmendmentProvisions
	}
}

// SortModifiedProvisions partitions the applicable keys into modified (true)
// and unmodified (false). Keys with no stored answer are dropped from both
// partitions: stale keys from a previous variant can linger after the state
// changes submission type mid-edit, and they must not count.
func SortModifiedProvisions(fd ContractFormData) (modified, unmodified []ProvisionKey) {
	for _, key := range GenerateApplicableProvisionsList(fd) {
		val, ok := fd.ModifiedProvisions[key]
		if !ok {
			continue
		}
		if val {
			modified = append(modified, key)
		} else {
			unmodified = append(unmodified, key)
		}
	}
	return modified, unmodified
}

// IsMissingProvisions reports whether any applicable provision question is
// still unanswered.
func IsMissingProvisions(fd ContractFormData) bool {
	applicable := GenerateApplicableProvisionsList(fd)
	modified, unmodified := SortModifiedProvisions(fd)
	return len(modified)+len(unmodified) < len(applicable)
}

// HasValidModifiedProvisions reports whether the provision answers are
// complete. Trivially true when no provisions apply at all: CHIP base
// contracts and CONTRACT_ONLY submissions. Answers only need to be present,
// not true.
func HasValidModifiedProvisions(fd ContractFormData) bool {
	if fd.SubmissionType == SubmissionTypeContractOnly {
		return true
	}
	applicable := GenerateApplicableProvisionsList(fd)
	if len(applicable) == 0 {
		return true
	}
	return !IsMissingProvisions(fd)
}

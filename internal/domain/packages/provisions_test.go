package packages

import "testing"

func answerAll(keys []ProvisionKey, val bool) map[ProvisionKey]bool {
	answers := make(map[ProvisionKey]bool, len(keys))
	for _, k := range keys {
		answers[k] = val
	}
	return answers
}

func TestGenerateApplicableProvisionsList(t *testing.T) {
	cases := []struct {
		name       string
		population PopulationCovered
		contract   ContractType
		wantCount  int
	}{
		{"medicaid amendment gets full set", PopulationMedicaid, ContractTypeAmendment, len(medicaidAmendmentProvisions)},
		{"medicaid and chip amendment gets full set", PopulationMedicaidAndCHIP, ContractTypeAmendment, len(medicaidAmendmentProvisions)},
		{"medicaid base gets base set", PopulationMedicaid, ContractTypeBase, len(medicaidBaseProvisions)},
		{"chip amendment gets chip set", PopulationCHIP, ContractTypeAmendment, len(chipAmendmentProvisions)},
		{"chip base gets none", PopulationCHIP, ContractTypeBase, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fd := ContractFormData{PopulationCovered: tc.population, ContractType: tc.contract}
			got := GenerateApplicableProvisionsList(fd)
			if len(got) != tc.wantCount {
				t.Fatalf("got %d applicable provisions, want %d", len(got), tc.wantCount)
			}
		})
	}
}

func TestSortModifiedProvisionsPartition(t *testing.T) {
	fd := ContractFormData{
		PopulationCovered: PopulationMedicaid,
		ContractType:      ContractTypeAmendment,
	}
	applicable := GenerateApplicableProvisionsList(fd)

	// Answer everything, alternating true/false.
	answers := make(map[ProvisionKey]bool, len(applicable))
	for i, k := range applicable {
		answers[k] = i%2 == 0
	}
	fd.ModifiedProvisions = answers

	modified, unmodified := SortModifiedProvisions(fd)
	if len(modified)+len(unmodified) != len(applicable) {
		t.Fatalf("partition sum %d, want %d", len(modified)+len(unmodified), len(applicable))
	}
	if IsMissingProvisions(fd) {
		t.Fatal("IsMissingProvisions = true with all keys answered")
	}
	if !HasValidModifiedProvisions(fd) {
		t.Fatal("HasValidModifiedProvisions = false with all keys answered")
	}
}

func TestSortModifiedProvisionsDropsUnanswered(t *testing.T) {
	fd := ContractFormData{
		PopulationCovered: PopulationMedicaid,
		ContractType:      ContractTypeAmendment,
		ModifiedProvisions: map[ProvisionKey]bool{
			ProvisionModifiedBenefitsProvided: true,
			ProvisionModifiedGeoAreaServed:    false,
		},
	}

	modified, unmodified := SortModifiedProvisions(fd)
	if len(modified) != 1 || modified[0] != ProvisionModifiedBenefitsProvided {
		t.Fatalf("modified = %v", modified)
	}
	if len(unmodified) != 1 || unmodified[0] != ProvisionModifiedGeoAreaServed {
		t.Fatalf("unmodified = %v", unmodified)
	}
	if !IsMissingProvisions(fd) {
		t.Fatal("IsMissingProvisions = false with unanswered keys remaining")
	}
}

// Stale answers from a previous variant must not leak into the partition
// after the state changes submission shape mid-edit.
func TestSortModifiedProvisionsIgnoresStaleKeys(t *testing.T) {
	fd := ContractFormData{
		PopulationCovered: PopulationCHIP,
		ContractType:      ContractTypeAmendment,
		ModifiedProvisions: map[ProvisionKey]bool{
			// Medicaid-only keys left behind by a variant switch.
			ProvisionModifiedRiskSharingStrategy:   true,
			ProvisionModifiedStateDirectedPayments: true,
		},
	}

	modified, unmodified := SortModifiedProvisions(fd)
	if len(modified) != 0 || len(unmodified) != 0 {
		t.Fatalf("stale keys leaked: modified=%v unmodified=%v", modified, unmodified)
	}
}

func TestChipBaseNeverMissingProvisions(t *testing.T) {
	fd := ContractFormData{
		PopulationCovered: PopulationCHIP,
		ContractType:      ContractTypeBase,
		ModifiedProvisions: map[ProvisionKey]bool{
			ProvisionModifiedBenefitsProvided: true,
		},
	}
	if got := GenerateApplicableProvisionsList(fd); len(got) != 0 {
		t.Fatalf("CHIP base applicable provisions = %v, want none", got)
	}
	if IsMissingProvisions(fd) {
		t.Fatal("IsMissingProvisions = true for CHIP base")
	}
	if !HasValidModifiedProvisions(fd) {
		t.Fatal("HasValidModifiedProvisions = false for CHIP base")
	}
}

func TestContractOnlyHasValidProvisions(t *testing.T) {
	fd := ContractFormData{
		SubmissionType:    SubmissionTypeContractOnly,
		PopulationCovered: PopulationMedicaid,
		ContractType:      ContractTypeAmendment,
	}
	if !HasValidModifiedProvisions(fd) {
		t.Fatal("HasValidModifiedProvisions = false for CONTRACT_ONLY")
	}
}

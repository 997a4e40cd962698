package packages

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func timePtr(t time.Time) *time.Time { return &t }
func boolPtr(b bool) *bool           { return &b }

func completeContractFormData() ContractFormData {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	fd := ContractFormData{
		SubmissionType:        SubmissionTypeContractAndRates,
		SubmissionDescription: "FY25 capitation amendment",
		ContractType:          ContractTypeAmendment,
		PopulationCovered:     PopulationMedicaid,
		ProgramIDs:            []string{"pmap"},
		ContractDateStart:     timePtr(start),
		ContractDateEnd:       timePtr(end),
		ContractDocuments: []Document{
			{Name: "contract.pdf", URL: "s3://bucket/contract.pdf", SHA256: "abc"},
		},
		ManagedCareEntities: []string{"MCO"},
		FederalAuthorities:  []string{AuthorityStatePlan, AuthorityWaiver1115},
		StateContacts: []Contact{
			{Name: "Jo State", Title: "Director", Email: "jo@state.mn.us"},
		},
	}
	fd.ModifiedProvisions = answerAll(GenerateApplicableProvisionsList(fd), false)
	return fd
}

func completeRateFormData() RateFormData {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	return RateFormData{
		RateType:          "NEW",
		RateDateStart:     timePtr(start),
		RateDateEnd:       timePtr(start.AddDate(1, 0, 0)),
		RateDateCertified: timePtr(start.AddDate(0, -1, 0)),
		RateProgramIDs:    []string{"pmap"},
		RateDocuments: []Document{
			{Name: "rates.pdf", URL: "s3://bucket/rates.pdf", SHA256: "def"},
		},
		CertifyingActuaries: []Contact{
			{Name: "Act Uary", Title: "Actuary", Email: "act@firm.com"},
		},
	}
}

func TestParseAndSubmitContractSuccess(t *testing.T) {
	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	locked, serr := ParseAndSubmitContract(completeContractFormData(), []RateFormData{completeRateFormData()}, 0, FeatureFlags{}, now)
	if serr != nil {
		t.Fatalf("ParseAndSubmitContract error: %v", serr)
	}
	if locked.Status != StatusSubmitted {
		t.Fatalf("locked status = %q, want SUBMITTED", locked.Status)
	}
	if !locked.SubmittedAt.Equal(now) {
		t.Fatalf("submittedAt = %v, want %v", locked.SubmittedAt, now)
	}
}

func TestParseAndSubmitContractCheckOrder(t *testing.T) {
	cases := []struct {
		name        string
		mutate      func(fd *ContractFormData, rates *[]RateFormData)
		wantMessage string
	}{
		{
			name: "missing contract fields",
			mutate: func(fd *ContractFormData, rates *[]RateFormData) {
				fd.SubmissionDescription = ""
			},
			wantMessage: "formData is missing required contract fields",
		},
		{
			name: "contract and rates with zero rates",
			mutate: func(fd *ContractFormData, rates *[]RateFormData) {
				*rates = nil
			},
			wantMessage: "formData includes invalid rate fields",
		},
		{
			name: "incomplete rate fields",
			mutate: func(fd *ContractFormData, rates *[]RateFormData) {
				(*rates)[0].RateDateCertified = nil
			},
			wantMessage: "formData is missing required rate fields",
		},
		{
			name: "invalid documents",
			mutate: func(fd *ContractFormData, rates *[]RateFormData) {
				fd.ContractDocuments = nil
			},
			wantMessage: "formData must have valid documents",
		},
		{
			name: "unanswered provisions hit the generic fallback",
			mutate: func(fd *ContractFormData, rates *[]RateFormData) {
				delete(fd.ModifiedProvisions, ProvisionInLieuServicesAndSettings)
			},
			wantMessage: "formData is missing a required field",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fd := completeContractFormData()
			rates := []RateFormData{completeRateFormData()}
			tc.mutate(&fd, &rates)

			locked, serr := ParseAndSubmitContract(fd, rates, 0, FeatureFlags{}, time.Now())
			if serr == nil {
				t.Fatalf("expected submission error, got locked=%+v", locked)
			}
			if serr.Code != ErrIncomplete {
				t.Fatalf("error code = %q, want INCOMPLETE", serr.Code)
			}
			if serr.Message != tc.wantMessage {
				t.Fatalf("error message = %q, want %q", serr.Message, tc.wantMessage)
			}
		})
	}
}

func TestParseAndSubmitAttestationGate(t *testing.T) {
	flags := FeatureFlags{Require438Attestation: true}

	fd := completeContractFormData()
	if _, serr := ParseAndSubmitContract(fd, []RateFormData{completeRateFormData()}, 0, flags, time.Now()); serr == nil {
		t.Fatal("expected error with unanswered attestation")
	}

	fd.StatutoryRegulatoryAttestation = boolPtr(false)
	if _, serr := ParseAndSubmitContract(fd, []RateFormData{completeRateFormData()}, 0, flags, time.Now()); serr == nil {
		t.Fatal("expected error for non-compliant attestation without description")
	}

	fd.StatutoryRegulatoryAttestationDescription = "remediation plan attached"
	if _, serr := ParseAndSubmitContract(fd, []RateFormData{completeRateFormData()}, 0, flags, time.Now()); serr != nil {
		t.Fatalf("unexpected error with described non-compliance: %v", serr)
	}

	fd.StatutoryRegulatoryAttestation = boolPtr(true)
	fd.StatutoryRegulatoryAttestationDescription = ""
	if _, serr := ParseAndSubmitContract(fd, []RateFormData{completeRateFormData()}, 0, flags, time.Now()); serr != nil {
		t.Fatalf("unexpected error with compliant attestation: %v", serr)
	}
}

func TestPruneFormDataIsPure(t *testing.T) {
	fd := completeContractFormData()
	fd.PopulationCovered = PopulationCHIP
	fd.ContractType = ContractTypeAmendment
	fd.FederalAuthorities = []string{AuthorityStatePlan, AuthorityWaiver1115, AuthorityTitleXXI}
	fd.ModifiedProvisions = map[ProvisionKey]bool{
		ProvisionModifiedBenefitsProvided:    true,
		ProvisionModifiedRiskSharingStrategy: true, // not applicable to CHIP
	}

	pruned := PruneFormData(fd)

	if len(pruned.FederalAuthorities) != 2 {
		t.Fatalf("pruned authorities = %v, want CHIP-allowed pair", pruned.FederalAuthorities)
	}
	if _, ok := pruned.ModifiedProvisions[ProvisionModifiedRiskSharingStrategy]; ok {
		t.Fatal("pruned form data kept a provision not applicable to CHIP")
	}
	if _, ok := pruned.ModifiedProvisions[ProvisionModifiedBenefitsProvided]; !ok {
		t.Fatal("pruned form data dropped an applicable provision")
	}

	// The input draft keeps everything so submission type can be reverted
	// without data loss.
	if len(fd.FederalAuthorities) != 3 {
		t.Fatalf("input authorities mutated: %v", fd.FederalAuthorities)
	}
	if len(fd.ModifiedProvisions) != 2 {
		t.Fatalf("input provisions mutated: %v", fd.ModifiedProvisions)
	}
}

func TestValidateStatusAndUpdateInfo(t *testing.T) {
	t.Run("draft passes without reason", func(t *testing.T) {
		if err := ValidateStatusAndUpdateInfo(StatusDraft, nil, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unlocked requires a reason", func(t *testing.T) {
		unlock := &UpdateInfo{UpdatedAt: time.Now(), UpdatedBy: uuid.New(), UpdatedReason: "fix rates"}
		err := ValidateStatusAndUpdateInfo(StatusUnlocked, unlock, "")
		if err == nil {
			t.Fatal("expected validation error for missing resubmit reason")
		}
		if !IsCode(err, CodeValidation) {
			t.Fatalf("error code = %q, want validation", CodeOf(err))
		}
	})

	t.Run("resubmit reason overwrites unlock reason", func(t *testing.T) {
		unlock := &UpdateInfo{UpdatedAt: time.Now(), UpdatedBy: uuid.New(), UpdatedReason: "fix rates"}
		if err := ValidateStatusAndUpdateInfo(StatusUnlocked, unlock, "rates corrected"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if unlock.UpdatedReason != "rates corrected" {
			t.Fatalf("UpdatedReason = %q, want submit reason verbatim", unlock.UpdatedReason)
		}
	})

	t.Run("already submitted is rejected every time", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			err := ValidateStatusAndUpdateInfo(StatusSubmitted, nil, "again")
			if err == nil {
				t.Fatalf("attempt %d: expected conflict error", i+1)
			}
			if !IsCode(err, CodeConflict) {
				t.Fatalf("attempt %d: error code = %q, want conflict", i+1, CodeOf(err))
			}
		}
		if err := ValidateStatusAndUpdateInfo(StatusResubmitted, nil, "again"); !IsCode(err, CodeConflict) {
			t.Fatalf("resubmitted status error code = %q, want conflict", CodeOf(err))
		}
	})
}

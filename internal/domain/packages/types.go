package packages

import (
	"time"

	"github.com/google/uuid"
)

// Status is the derived display status of a contract or rate package. The
// literal values are part of the wire contract consumed by the front end.
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnlocked    Status = "UNLOCKED"
	StatusResubmitted Status = "RESUBMITTED"
	StatusWithdrawn   Status = "WITHDRAWN"
	StatusApproved    Status = "APPROVED"
)

// UpdateCause classifies what produced a package submission on a contract.
type UpdateCause string

const (
	CauseContractSubmission UpdateCause = "CONTRACT_SUBMISSION"
	CauseRateSubmission     UpdateCause = "RATE_SUBMISSION"
	CauseRateLink           UpdateCause = "RATE_LINK"
	CauseRateUnlink         UpdateCause = "RATE_UNLINK"
)

// ReviewActionType is a CMS review action recorded against a package.
type ReviewActionType string

const (
	ActionMarkAsApproved     ReviewActionType = "MARK_AS_APPROVED"
	ActionWithdraw           ReviewActionType = "WITHDRAW"
	ActionUndoMarkAsApproved ReviewActionType = "UNDO_MARK_AS_APPROVED"
	ActionUndoWithdraw       ReviewActionType = "UNDO_WITHDRAW"
)

type SubmissionType string

const (
	SubmissionTypeContractOnly     SubmissionType = "CONTRACT_ONLY"
	SubmissionTypeContractAndRates SubmissionType = "CONTRACT_AND_RATES"
)

type ContractType string

const (
	ContractTypeBase      ContractType = "BASE"
	ContractTypeAmendment ContractType = "AMENDMENT"
)

type PopulationCovered string

const (
	PopulationMedicaid        PopulationCovered = "MEDICAID"
	PopulationMedicaidAndCHIP PopulationCovered = "MEDICAID_AND_CHIP"
	PopulationCHIP            PopulationCovered = "CHIP"
)

// Division is one of CMS's internal review groups, used to bucket Q&A threads.
type Division string

const (
	DivisionDMCO Division = "DMCO"
	DivisionDMCP Division = "DMCP"
	DivisionOACT Division = "OACT"
)

// UpdateInfo records who did what, when, and why for a submit or unlock.
type UpdateInfo struct {
	UpdatedAt     time.Time `json:"updatedAt"`
	UpdatedBy     uuid.UUID `json:"updatedBy"`
	UpdatedReason string    `json:"updatedReason"`
}

// Document is metadata for a file held in external storage. Storage itself is
// an external collaborator; only the reference travels through this system.
type Document struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	SHA256   string `json:"sha256"`
	DateAdded *time.Time `json:"dateAdded,omitempty"`
}

type Contact struct {
	Name  string `json:"name"`
	Title string `json:"titleRole"`
	Email string `json:"email"`
}

// ContractFormData is one immutable snapshot of contract form fields.
type ContractFormData struct {
	SubmissionType          SubmissionType             `json:"submissionType"`
	SubmissionDescription   string                     `json:"submissionDescription"`
	ContractType            ContractType               `json:"contractType"`
	PopulationCovered       PopulationCovered          `json:"populationCovered"`
	ProgramIDs              []string                   `json:"programIDs"`
	ContractDateStart       *time.Time                 `json:"contractDateStart,omitempty"`
	ContractDateEnd         *time.Time                 `json:"contractDateEnd,omitempty"`
	ContractDocuments       []Document                 `json:"contractDocuments"`
	SupportingDocuments     []Document                 `json:"supportingDocuments"`
	ManagedCareEntities     []string                   `json:"managedCareEntities"`
	FederalAuthorities      []string                   `json:"federalAuthorities"`
	ModifiedProvisions      map[ProvisionKey]bool      `json:"modifiedProvisions"`
	StateContacts           []Contact                  `json:"stateContacts"`
	RiskBasedContract       *bool                      `json:"riskBasedContract,omitempty"`
	StatutoryRegulatoryAttestation            *bool   `json:"statutoryRegulatoryAttestation,omitempty"`
	StatutoryRegulatoryAttestationDescription string  `json:"statutoryRegulatoryAttestationDescription,omitempty"`
}

// RateFormData is one immutable snapshot of rate certification form fields.
type RateFormData struct {
	RateType              string     `json:"rateType"`
	RateCapitationType    string     `json:"rateCapitationType"`
	RateDateStart         *time.Time `json:"rateDateStart,omitempty"`
	RateDateEnd           *time.Time `json:"rateDateEnd,omitempty"`
	RateDateCertified     *time.Time `json:"rateDateCertified,omitempty"`
	RateProgramIDs        []string   `json:"rateProgramIDs"`
	RateDocuments         []Document `json:"rateDocuments"`
	SupportingDocuments   []Document `json:"supportingDocuments"`
	CertifyingActuaries   []Contact  `json:"certifyingActuaries"`
	ActuaryCommunication  string     `json:"actuaryCommunicationPreference"`
}

// ContractRevision is an append-only snapshot of contract form data.
// SubmitInfo is nil while the revision is an editable draft; UnlockInfo is nil
// unless the revision was created by an unlock.
type ContractRevision struct {
	ID         uuid.UUID        `json:"id"`
	ContractID uuid.UUID        `json:"contractID"`
	FormData   ContractFormData `json:"formData"`
	SubmitInfo *UpdateInfo      `json:"submitInfo,omitempty"`
	UnlockInfo *UpdateInfo      `json:"unlockInfo,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// RateRevision is the rate-flavored revision snapshot.
type RateRevision struct {
	ID         uuid.UUID    `json:"id"`
	RateID     uuid.UUID    `json:"rateID"`
	FormData   RateFormData `json:"formData"`
	SubmitInfo *UpdateInfo  `json:"submitInfo,omitempty"`
	UnlockInfo *UpdateInfo  `json:"unlockInfo,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ContractPackageSubmission is one atomic submit event as seen from a
// contract. SubmittedRevisionIDs is the superset used for cause derivation:
// every revision (contract or rate) actually submitted in the event.
// RateRevisions are the rate snapshots associated with the contract at that
// point, whether or not they were themselves submitted.
type ContractPackageSubmission struct {
	SubmitInfo           UpdateInfo       `json:"submitInfo"`
	SubmittedRevisionIDs []uuid.UUID      `json:"submittedRevisionIDs"`
	ContractRevision     ContractRevision `json:"contractRevision"`
	RateRevisions        []RateRevision   `json:"rateRevisions"`
}

// RatePackageSubmission is the rate-flavored submission entry.
type RatePackageSubmission struct {
	SubmitInfo           UpdateInfo         `json:"submitInfo"`
	SubmittedRevisionIDs []uuid.UUID        `json:"submittedRevisionIDs"`
	RateRevision         RateRevision       `json:"rateRevision"`
	ContractRevisions    []ContractRevision `json:"contractRevisions"`
}

// ReviewStatusAction is an append-only audit entry for CMS review actions.
type ReviewStatusAction struct {
	UpdatedAt  time.Time        `json:"updatedAt"`
	UpdatedBy  uuid.UUID        `json:"updatedBy"`
	ActionType ReviewActionType `json:"actionType"`
	Reason     string           `json:"reason"`
}

// Contract is the in-memory view of one state's managed-care contract action
// with its full history. No status field exists here; status is always
// projected from the shape of the data.
type Contract struct {
	ID                  uuid.UUID                   `json:"id"`
	StateCode           string                      `json:"stateCode"`
	StateNumber         int                         `json:"stateNumber"`
	CreatedAt           time.Time                   `json:"createdAt"`
	UpdatedAt           time.Time                   `json:"updatedAt"`
	DraftRevision       *ContractRevision           `json:"draftRevision,omitempty"`
	DraftRates          []Rate                      `json:"draftRates,omitempty"`
	PackageSubmissions  []ContractPackageSubmission `json:"packageSubmissions"`
	ReviewStatusActions []ReviewStatusAction        `json:"reviewStatusActions"`
}

// Rate mirrors Contract for rate certifications. ParentContractID is the
// contract under which the rate was first created; it is a back-reference,
// not ownership, since a rate can be re-linked across contracts.
type Rate struct {
	ID                  uuid.UUID               `json:"id"`
	StateCode           string                  `json:"stateCode"`
	StateNumber         int                     `json:"stateNumber"`
	ParentContractID    uuid.UUID               `json:"parentContractID"`
	CreatedAt           time.Time               `json:"createdAt"`
	UpdatedAt           time.Time               `json:"updatedAt"`
	DraftRevision       *RateRevision           `json:"draftRevision,omitempty"`
	PackageSubmissions  []RatePackageSubmission `json:"packageSubmissions"`
	ReviewStatusActions []ReviewStatusAction    `json:"reviewStatusActions"`
}

// FeatureFlags carries the caller-injected flag state relevant to submission
// validation. The flag service itself is an external collaborator.
type FeatureFlags struct {
	Require438Attestation bool
}

package model

// Petition is a read-mostly mirror of a server-side petition record. The
// server copy is authoritative; this projection may be stale between sync
// events.
type Petition struct {
	PetitionID       int64          `json:"petition_id" db:"petition_id"`
	Title            string         `json:"title" db:"title"`
	ShortDescription string         `json:"short_description" db:"short_description"`
	Description      string         `json:"description" db:"description"`
	Category         string         `json:"category" db:"category"`
	Department       string         `json:"department" db:"department"`
	Status           PetitionStatus `json:"status" db:"status"`
	UrgencyLevel     UrgencyLevel   `json:"urgency_level" db:"urgency_level"`
	Location         string         `json:"location" db:"location"`
	ProofFiles       []string       `json:"proof_files" db:"-"`
	SubmittedAt      string         `json:"submitted_at" db:"submitted_at"`
	DueDate          string         `json:"due_date" db:"due_date"`
	SignatureCount   int            `json:"signature_count" db:"signature_count"`
	UserName         string         `json:"user_name" db:"user_name"`
}

// PetitionUpdate is an immutable audit entry recording one status
// transition or officer comment. Never mutated client-side.
type PetitionUpdate struct {
	UpdateID   int64    `json:"update_id"`
	PetitionID int64    `json:"petition_id"`
	OfficerID  int64    `json:"officer_id"`
	UpdateText string   `json:"update_text"`
	Status     string   `json:"status"`
	ProofFiles []string `json:"proof_files"`
	CreatedAt  string   `json:"created_at"`
}

// Verdict is the AI plausibility check result returned by the
// verify-update endpoint before an admin status change is committed.
type Verdict struct {
	IsValid     bool     `json:"is_valid"`
	Confidence  float64  `json:"confidence"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions,omitempty"`
}

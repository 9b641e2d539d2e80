package entities

import (
	"time"
)

// Verification statuses. Transitions happen in the verification review flow;
// the analytics pipeline only reads them.
const (
	VerificationStatusPending   = "pending"
	VerificationStatusSubmitted = "submitted"
	VerificationStatusApproved  = "approved"
)

// ProfessionalVerification tracks a professional user's onboarding state.
type ProfessionalVerification struct {
	ID         string     `json:"id" db:"id"`
	ProfileID  string     `json:"profile_id" db:"profile_id"`
	Status     string     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty" db:"approved_at"`
}

// Submitted reports whether the verification has moved past pending.
func (v *ProfessionalVerification) Submitted() bool {
	return v.Status != VerificationStatusPending
}

// Approved reports whether the verification was approved.
func (v *ProfessionalVerification) Approved() bool {
	return v.Status == VerificationStatusApproved
}

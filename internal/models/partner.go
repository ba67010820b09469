package models

// PartnerStatus is the state of a partner invitation.
type PartnerStatus string

const (
	PartnerStatusPending  PartnerStatus = "pending"
	PartnerStatusActive   PartnerStatus = "active"
	PartnerStatusDeclined PartnerStatus = "declined"
)

// Valid reports whether s is a known partner status.
func (s PartnerStatus) Valid() bool {
	switch s {
	case PartnerStatusPending, PartnerStatusActive, PartnerStatusDeclined:
		return true
	}
	return false
}

// Partner is a counterparty relationship owned by a user.
// Only Active partners may be selected into new expense splits.
type Partner struct {
	// ID is the unique identifier for the partner (UUID format).
	// It is also the participant ID used in splits.
	ID string

	// OwnerUserID is the user who invited the partner.
	OwnerUserID string

	// Name is the partner's display name.
	Name string

	// Email is where the invitation was sent.
	Email string

	// Status tracks the invitation: pending, active or declined.
	Status PartnerStatus

	// CreatedAt is the Unix timestamp when the partner was invited.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last status change.
	UpdatedAt int64
}

// Participant returns the partner as a split participant.
func (p Partner) Participant() Participant {
	return Participant{ID: p.ID, DisplayName: p.Name}
}

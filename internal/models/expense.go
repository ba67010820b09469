package models

// ExpenseStatus is the settlement state of an expense.
type ExpenseStatus string

const (
	// ExpenseStatusPending means at least one share is unpaid, or the splits
	// were edited since the last full reconciliation.
	ExpenseStatusPending ExpenseStatus = "pending"

	// ExpenseStatusCompleted means every share has been paid.
	ExpenseStatusCompleted ExpenseStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ExpenseStatus) Valid() bool {
	return s == ExpenseStatusPending || s == ExpenseStatusCompleted
}

// Default expense categories.
const (
	CategoryFood      = "food"
	CategoryHousing   = "housing"
	CategoryTransport = "transport"
	CategoryLeisure   = "leisure"
	CategoryHealth    = "health"
	CategoryEducation = "education"
	CategoryOther     = "other"
)

// DefaultCategories returns the category labels offered when none are configured.
func DefaultCategories() []string {
	return []string{
		CategoryFood,
		CategoryHousing,
		CategoryTransport,
		CategoryLeisure,
		CategoryHealth,
		CategoryEducation,
		CategoryOther,
	}
}

// Participant identifies either the owning user or one of their partners.
type Participant struct {
	ID          string
	DisplayName string
}

// SplitShare is one participant's stake in an expense.
type SplitShare struct {
	// ParticipantID is the owner's user ID or a partner ID.
	// It appears at most once per expense.
	ParticipantID string

	// ParticipantName is the display name captured when the share was created.
	ParticipantName string

	// Percentage of the expense amount carried by this participant (0..100).
	Percentage float64

	// Paid reports whether this participant has settled their part.
	Paid bool

	// PaidAt is the Unix timestamp of the payment; zero while unpaid.
	PaidAt int64
}

// Expense represents one shared cost.
// The payer pays the whole amount upfront; Splits describe who carries it.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is the human-readable label (e.g., "Groceries").
	Description string

	// Amount is the total cost. Always positive.
	Amount float64

	// PayerID is the participant who paid upfront.
	// The payer does not have to hold a share.
	PayerID string

	// PayerName is the payer's display name.
	PayerName string

	// Date is the Unix timestamp of when the expense happened.
	Date int64

	// Category is an opaque label from the configured category list.
	Category string

	// Splits is the ordered list of shares. Percentages sum to 100 (±0.01).
	Splits []SplitShare

	// Status is derived from Splits; see calculator.DeriveStatus.
	Status ExpenseStatus

	// OwnerUserID is the user who recorded the expense.
	OwnerUserID string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last mutation.
	UpdatedAt int64
}

// Share returns the share for participantID, if present.
func (e *Expense) Share(participantID string) (SplitShare, bool) {
	for _, s := range e.Splits {
		if s.ParticipantID == participantID {
			return s, true
		}
	}
	return SplitShare{}, false
}

// Package api defines the request and response messages of the
// splitpartner RPC services.
//
// Messages are plain structs serialized with the JSON codec in this package.
// Timestamps are Unix seconds; amounts are in the expense currency.
package api

// User is a registered account as seen by clients.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name" validate:"required"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Partner is a counterparty the user shares expenses with.
type Partner struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type InvitePartnerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type InvitePartnerResponse struct {
	Partner *Partner `json:"partner"`
}

type ListPartnersRequest struct {
	// Status filters by invitation state; empty lists every partner.
	Status string `json:"status,omitempty"`
}

type ListPartnersResponse struct {
	Partners []*Partner `json:"partners"`
}

type UpdatePartnerStatusRequest struct {
	PartnerID string `json:"partner_id"`
	Status    string `json:"status"`
}

type UpdatePartnerStatusResponse struct {
	Partner *Partner `json:"partner"`
}

type DeletePartnerRequest struct {
	PartnerID string `json:"partner_id"`
}

type DeletePartnerResponse struct{}

// SplitShare is one participant's stake in an expense.
// Amount is derived from the expense amount and Percentage.
type SplitShare struct {
	ParticipantID   string  `json:"participant_id"`
	ParticipantName string  `json:"participant_name"`
	Percentage      float64 `json:"percentage"`
	Amount          float64 `json:"amount"`
	Paid            bool    `json:"paid"`
	PaidAt          int64   `json:"paid_at,omitempty"`
}

// Expense is a shared cost with its splits.
type Expense struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Amount      float64       `json:"amount"`
	PayerID     string        `json:"payer_id"`
	PayerName   string        `json:"payer_name"`
	Date        int64         `json:"date"`
	Category    string        `json:"category"`
	Status      string        `json:"status"`
	Splits      []*SplitShare `json:"splits"`
	OwnerShare  float64       `json:"owner_share"`
	CreatedAt   int64         `json:"created_at"`
	UpdatedAt   int64         `json:"updated_at"`
}

// SplitInput sets one participant's percentage.
type SplitInput struct {
	ParticipantID string  `json:"participant_id"`
	Percentage    float64 `json:"percentage"`
}

type CreateExpenseRequest struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	// PayerID defaults to the caller.
	PayerID string `json:"payer_id,omitempty"`
	// Date defaults to now.
	Date int64 `json:"date,omitempty"`
	// Category defaults to food.
	Category string `json:"category,omitempty"`
	// PartnerIDs selects active partners for an equal split.
	PartnerIDs []string `json:"partner_ids,omitempty"`
	// ExcludeOwner leaves the caller out of the equal split.
	ExcludeOwner bool `json:"exclude_owner,omitempty"`
	// Percentages overrides equal shares per participant after the split is built.
	Percentages map[string]float64 `json:"percentages,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
	// Warnings reports stored data that disagrees with the expense's shares.
	Warnings []string `json:"warnings,omitempty"`
}

// UpdateExpenseRequest replaces an expense's fields and splits.
// Any edit resets the expense to pending.
type UpdateExpenseRequest struct {
	ExpenseID   string        `json:"expense_id" validate:"required"`
	Description string        `json:"description"`
	Amount      float64       `json:"amount" validate:"gte=0"`
	PayerID     string        `json:"payer_id"`
	Date        int64         `json:"date"`
	Category    string        `json:"category"`
	Splits      []*SplitInput `json:"splits"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type UpdateSplitPercentagesRequest struct {
	ExpenseID   string             `json:"expense_id"`
	Percentages map[string]float64 `json:"percentages"`
}

type UpdateSplitPercentagesResponse struct {
	Expense *Expense `json:"expense"`
}

type TogglePaymentRequest struct {
	ExpenseID     string `json:"expense_id"`
	ParticipantID string `json:"participant_id"`
}

type TogglePaymentResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// CategoryTotal is the spend of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}

// PartnerBalance is the net position between the caller and one partner.
// A positive NetBalance means the partner owes the caller.
type PartnerBalance struct {
	PartnerID   string  `json:"partner_id"`
	PartnerName string  `json:"partner_name"`
	OwedToOwner float64 `json:"owed_to_owner"`
	OwedByOwner float64 `json:"owed_by_owner"`
	NetBalance  float64 `json:"net_balance"`
}

type GetDashboardResponse struct {
	TotalAmount    float64           `json:"total_amount"`
	TotalCount     int               `json:"total_count"`
	PendingTotal   float64           `json:"pending_total"`
	PendingCount   int               `json:"pending_count"`
	CompletedTotal float64           `json:"completed_total"`
	CompletedCount int               `json:"completed_count"`
	CompletionRate float64           `json:"completion_rate"`
	TopCategories  []*CategoryTotal  `json:"top_categories"`
	Balances       []*PartnerBalance `json:"balances"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// Event types sent by WatchExpenses besides created, updated and deleted.
const (
	EventTypeSnapshot = "snapshot"
	EventTypeSynced   = "synced"
)

// ExpenseEvent is one change delivered by WatchExpenses.
// Expense is empty for deletions and the synced marker.
type ExpenseEvent struct {
	Type      string   `json:"type"`
	ExpenseID string   `json:"expense_id"`
	Expense   *Expense `json:"expense,omitempty"`
}

package calculator

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/splitpartner/internal/models"
)

var ErrStatusMismatch = errors.New("expense marked completed with unpaid shares")

// DeriveStatus returns Completed when every share is paid and Pending
// otherwise. An expense with no shares cannot be settled and stays Pending.
func DeriveStatus(splits []models.SplitShare) models.ExpenseStatus {
	if len(splits) == 0 {
		return models.ExpenseStatusPending
	}
	for _, s := range splits {
		if !s.Paid {
			return models.ExpenseStatusPending
		}
	}
	return models.ExpenseStatusCompleted
}

// TogglePaid flips one participant's paid flag and re-derives the expense
// status. PaidAt is stamped on unpaid -> paid and cleared on paid -> unpaid.
// Other shares are untouched.
func TogglePaid(e *models.Expense, participantID string, now time.Time) error {
	idx := -1
	for i := range e.Splits {
		if e.Splits[i].ParticipantID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, participantID)
	}

	splits := make([]models.SplitShare, len(e.Splits))
	copy(splits, e.Splits)

	share := &splits[idx]
	share.Paid = !share.Paid
	if share.Paid {
		share.PaidAt = now.Unix()
	} else {
		share.PaidAt = 0
	}

	e.Splits = splits
	e.Status = DeriveStatus(splits)
	e.UpdatedAt = now.Unix()
	return nil
}

// ReplaceSplits installs a new share list. Edits require a fresh
// reconciliation, so the status is forced to Pending even when every
// carried-over share is already paid.
func ReplaceSplits(e *models.Expense, splits []models.SplitShare, now time.Time) {
	out := make([]models.SplitShare, len(splits))
	copy(out, splits)
	e.Splits = out
	e.Status = models.ExpenseStatusPending
	e.UpdatedAt = now.Unix()
}

// CarryPaidFlags copies paid state from prev into next for participants
// present in both lists.
func CarryPaidFlags(prev, next []models.SplitShare) []models.SplitShare {
	paid := make(map[string]models.SplitShare, len(prev))
	for _, s := range prev {
		paid[s.ParticipantID] = s
	}
	out := make([]models.SplitShare, len(next))
	for i, s := range next {
		if old, ok := paid[s.ParticipantID]; ok {
			s.Paid = old.Paid
			s.PaidAt = old.PaidAt
		}
		out[i] = s
	}
	return out
}

// CheckStatus reports a stored expense whose status claims completion that
// its shares do not support. Pending with every share paid is legal: it is
// the state right after an edit.
func CheckStatus(e models.Expense) error {
	if e.Status == models.ExpenseStatusCompleted && DeriveStatus(e.Splits) != models.ExpenseStatusCompleted {
		return ErrStatusMismatch
	}
	return nil
}

package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/splitpartner/internal/models"
)

const (
	// FullShare is the percentage a complete split must add up to.
	FullShare = 100.0

	// SplitTolerance is the rounding budget allowed around FullShare.
	SplitTolerance = 0.01
)

var (
	ErrInvalidSplitTotal    = errors.New("split percentages must add up to 100")
	ErrEmptySplit           = errors.New("split must have at least one participant")
	ErrDuplicateParticipant = errors.New("participant appears more than once in split")
	ErrUnknownParticipant   = errors.New("participant is not part of this split")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrMissingPayer         = errors.New("payer is required")
)

// SplitTotalError reports a split whose percentages miss 100 by more than
// SplitTolerance. It unwraps to ErrInvalidSplitTotal.
type SplitTotalError struct {
	Total float64
}

func (e *SplitTotalError) Error() string {
	return fmt.Sprintf("%v: got %.2f", ErrInvalidSplitTotal, e.Total)
}

func (e *SplitTotalError) Unwrap() error {
	return ErrInvalidSplitTotal
}

// EqualSplit divides 100% evenly across the given participants, plus the
// owner when includeOwner is set. Duplicate IDs count once. With nobody
// selected the owner holds 100%.
//
// Each share is exactly 100/N; no remainder is redistributed.
func EqualSplit(ownerID string, participantIDs []string, includeOwner bool) map[string]float64 {
	seen := make(map[string]bool, len(participantIDs)+1)
	var ids []string
	if includeOwner {
		seen[ownerID] = true
		ids = append(ids, ownerID)
	}
	for _, id := range participantIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return map[string]float64{ownerID: FullShare}
	}

	share := FullShare / float64(len(ids))
	result := make(map[string]float64, len(ids))
	for _, id := range ids {
		result[id] = share
	}
	return result
}

// BuildEqualSplits is the ordered form of EqualSplit used when an expense is
// created: owner first (if included), then partners in selection order.
// Every share starts unpaid.
func BuildEqualSplits(owner models.Participant, partners []models.Participant, includeOwner bool) []models.SplitShare {
	ids := make([]string, len(partners))
	names := make(map[string]string, len(partners)+1)
	names[owner.ID] = owner.DisplayName
	for i, p := range partners {
		ids[i] = p.ID
		if _, ok := names[p.ID]; !ok {
			names[p.ID] = p.DisplayName
		}
	}

	percentages := EqualSplit(owner.ID, ids, includeOwner)

	order := make([]string, 0, len(percentages))
	if _, ok := percentages[owner.ID]; ok {
		order = append(order, owner.ID)
	}
	for _, id := range ids {
		if id == owner.ID {
			continue
		}
		if _, ok := percentages[id]; ok && !contains(order, id) {
			order = append(order, id)
		}
	}

	splits := make([]models.SplitShare, len(order))
	for i, id := range order {
		splits[i] = models.SplitShare{
			ParticipantID:   id,
			ParticipantName: names[id],
			Percentage:      percentages[id],
		}
	}
	return splits
}

// ApplyManualPercentage returns a copy of splits with one participant's
// percentage overwritten. Other shares are left alone; callers must run
// ValidateTotal before committing.
func ApplyManualPercentage(splits []models.SplitShare, participantID string, value float64) ([]models.SplitShare, error) {
	out := make([]models.SplitShare, len(splits))
	copy(out, splits)
	for i := range out {
		if out[i].ParticipantID == participantID {
			out[i].Percentage = value
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, participantID)
}

// TotalPercentage sums the percentages of all shares.
func TotalPercentage(splits []models.SplitShare) float64 {
	total := 0.0
	for _, s := range splits {
		total += s.Percentage
	}
	return total
}

// ValidateTotal fails with *SplitTotalError when the percentages are more
// than SplitTolerance away from 100.
func ValidateTotal(splits []models.SplitShare) error {
	total := TotalPercentage(splits)
	if math.Abs(total-FullShare) > SplitTolerance {
		return &SplitTotalError{Total: total}
	}
	return nil
}

// ValidateParticipants checks the split is non-empty and lists each
// participant once.
func ValidateParticipants(splits []models.SplitShare) error {
	if len(splits) == 0 {
		return ErrEmptySplit
	}
	seen := make(map[string]bool, len(splits))
	for _, s := range splits {
		if seen[s.ParticipantID] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, s.ParticipantID)
		}
		seen[s.ParticipantID] = true
	}
	return nil
}

// ValidateRange rejects percentages outside [0, 100].
func ValidateRange(splits []models.SplitShare) error {
	for _, s := range splits {
		if s.Percentage < 0 || s.Percentage > FullShare {
			return fmt.Errorf("%w: %s has %.2f", ErrPercentageOutOfRange, s.ParticipantID, s.Percentage)
		}
	}
	return nil
}

// Validate is the gate every split passes before an expense is created or
// edited. The range check only runs when strict is set.
func Validate(splits []models.SplitShare, strict bool) error {
	if err := ValidateParticipants(splits); err != nil {
		return err
	}
	if strict {
		if err := ValidateRange(splits); err != nil {
			return err
		}
	}
	return ValidateTotal(splits)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

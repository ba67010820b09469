package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/mmynk/splitpartner/internal/models"
)

func shares(pcts map[string]float64, order ...string) []models.SplitShare {
	out := make([]models.SplitShare, len(order))
	for i, id := range order {
		out[i] = models.SplitShare{ParticipantID: id, ParticipantName: id, Percentage: pcts[id]}
	}
	return out
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		includeOwner bool
		want         map[string]float64
	}{
		{
			name:         "owner and one partner",
			participants: []string{"bob"},
			includeOwner: true,
			want:         map[string]float64{"owner": 50, "bob": 50},
		},
		{
			name:         "no partners falls back to owner",
			participants: nil,
			includeOwner: true,
			want:         map[string]float64{"owner": 100},
		},
		{
			name:         "empty selection without owner still gives owner 100",
			participants: []string{},
			includeOwner: false,
			want:         map[string]float64{"owner": 100},
		},
		{
			name:         "partners only",
			participants: []string{"bob", "carol"},
			includeOwner: false,
			want:         map[string]float64{"bob": 50, "carol": 50},
		},
		{
			name:         "duplicates and owner in list count once",
			participants: []string{"bob", "bob", "owner"},
			includeOwner: true,
			want:         map[string]float64{"owner": 50, "bob": 50},
		},
		{
			name:         "three ways",
			participants: []string{"bob", "carol"},
			includeOwner: true,
			want:         map[string]float64{"owner": 100.0 / 3, "bob": 100.0 / 3, "carol": 100.0 / 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EqualSplit("owner", tt.participants, tt.includeOwner)
			if len(got) != len(tt.want) {
				t.Fatalf("EqualSplit() returned %d shares, want %d: %v", len(got), len(tt.want), got)
			}
			sum := 0.0
			for id, want := range tt.want {
				if math.Abs(got[id]-want) > 1e-9 {
					t.Errorf("share[%s] = %v, want %v", id, got[id], want)
				}
				sum += got[id]
			}
			if math.Abs(sum-100) > SplitTolerance {
				t.Errorf("sum = %v, want 100", sum)
			}
		})
	}
}

func TestEqualSplit_SumWithinTolerance(t *testing.T) {
	ids := []string{}
	for n := 1; n <= 12; n++ {
		got := EqualSplit("owner", ids, true)
		sum := 0.0
		for _, v := range got {
			if math.Abs(v-100/float64(n)) > 1e-9 {
				t.Errorf("n=%d: share = %v, want %v", n, v, 100/float64(n))
			}
			sum += v
		}
		if math.Abs(sum-100) > SplitTolerance {
			t.Errorf("n=%d: sum = %v", n, sum)
		}
		ids = append(ids, string(rune('a'+n)))
	}
}

func TestBuildEqualSplits(t *testing.T) {
	owner := models.Participant{ID: "u1", DisplayName: "Ana"}
	partners := []models.Participant{
		{ID: "p1", DisplayName: "Bruno"},
		{ID: "p2", DisplayName: "Carla"},
	}

	splits := BuildEqualSplits(owner, partners, true)
	if len(splits) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(splits))
	}
	wantOrder := []string{"u1", "p1", "p2"}
	wantNames := []string{"Ana", "Bruno", "Carla"}
	for i, s := range splits {
		if s.ParticipantID != wantOrder[i] {
			t.Errorf("split %d: id = %s, want %s", i, s.ParticipantID, wantOrder[i])
		}
		if s.ParticipantName != wantNames[i] {
			t.Errorf("split %d: name = %s, want %s", i, s.ParticipantName, wantNames[i])
		}
		if s.Paid || s.PaidAt != 0 {
			t.Errorf("split %d should start unpaid", i)
		}
	}
	if err := ValidateTotal(splits); err != nil {
		t.Errorf("ValidateTotal() = %v", err)
	}

	alone := BuildEqualSplits(owner, nil, true)
	if len(alone) != 1 || alone[0].ParticipantID != "u1" || alone[0].Percentage != 100 {
		t.Errorf("owner alone: got %+v", alone)
	}

	withoutOwner := BuildEqualSplits(owner, partners[:1], false)
	if len(withoutOwner) != 1 || withoutOwner[0].ParticipantID != "p1" || withoutOwner[0].Percentage != 100 {
		t.Errorf("partner only: got %+v", withoutOwner)
	}
}

func TestApplyManualPercentage(t *testing.T) {
	original := shares(map[string]float64{"a": 50, "b": 50}, "a", "b")

	updated, err := ApplyManualPercentage(original, "a", 70)
	if err != nil {
		t.Fatalf("ApplyManualPercentage failed: %v", err)
	}
	if updated[0].Percentage != 70 {
		t.Errorf("a = %v, want 70", updated[0].Percentage)
	}
	if updated[1].Percentage != 50 {
		t.Errorf("b should not be renormalised, got %v", updated[1].Percentage)
	}
	if original[0].Percentage != 50 {
		t.Error("input slice was modified")
	}
	if err := ValidateTotal(updated); !errors.Is(err, ErrInvalidSplitTotal) {
		t.Errorf("expected ErrInvalidSplitTotal for 120%%, got %v", err)
	}

	if _, err := ApplyManualPercentage(original, "zed", 10); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("expected ErrUnknownParticipant, got %v", err)
	}
}

func TestValidateTotal(t *testing.T) {
	tests := []struct {
		name    string
		pcts    []float64
		wantErr bool
	}{
		{"thirds rounded to cents", []float64{33.33, 33.33, 33.34}, false},
		{"whole thirds", []float64{33, 33, 33}, true},
		{"owner alone", []float64{100}, false},
		{"sixty forty", []float64{60, 40}, false},
		{"inside tolerance", []float64{50, 50.005}, false},
		{"outside tolerance", []float64{50, 50.02}, true},
		{"over", []float64{80, 40}, true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := make([]models.SplitShare, len(tt.pcts))
			for i, p := range tt.pcts {
				splits[i] = models.SplitShare{ParticipantID: string(rune('a' + i)), Percentage: p}
			}
			err := ValidateTotal(splits)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTotal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var totalErr *SplitTotalError
				if !errors.As(err, &totalErr) {
					t.Fatalf("expected *SplitTotalError, got %T", err)
				}
				if !errors.Is(err, ErrInvalidSplitTotal) {
					t.Error("SplitTotalError should unwrap to ErrInvalidSplitTotal")
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		splits  []models.SplitShare
		strict  bool
		wantErr error
	}{
		{
			name:   "valid",
			splits: shares(map[string]float64{"a": 60, "b": 40}, "a", "b"),
			strict: true,
		},
		{
			name:    "duplicate participant",
			splits:  shares(map[string]float64{"a": 50}, "a", "a"),
			strict:  true,
			wantErr: ErrDuplicateParticipant,
		},
		{
			name:    "empty",
			splits:  nil,
			wantErr: ErrEmptySplit,
		},
		{
			name:    "negative rejected when strict",
			splits:  shares(map[string]float64{"a": 120, "b": -20}, "a", "b"),
			strict:  true,
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:   "negative tolerated when lenient",
			splits: shares(map[string]float64{"a": 120, "b": -20}, "a", "b"),
			strict: false,
		},
		{
			name:    "bad total",
			splits:  shares(map[string]float64{"a": 33, "b": 33, "c": 33}, "a", "b", "c"),
			strict:  true,
			wantErr: ErrInvalidSplitTotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.splits, tt.strict)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

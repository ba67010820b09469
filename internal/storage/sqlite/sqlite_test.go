package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/splitpartner/internal/models"
	"github.com/mmynk/splitpartner/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateExpense generates ID and timestamps", func(t *testing.T) {
		expense := &models.Expense{
			Description: "Groceries",
			Amount:      200,
			PayerID:     "u1",
			PayerName:   "Ana",
			Category:    models.CategoryFood,
			OwnerUserID: "u1",
			Splits: []models.SplitShare{
				{ParticipantID: "u1", ParticipantName: "Ana", Percentage: 60},
				{ParticipantID: "p1", ParticipantName: "Bruno", Percentage: 40},
			},
		}

		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}
		if expense.CreatedAt == 0 || expense.UpdatedAt == 0 {
			t.Error("Expected timestamps to be set")
		}
		if expense.Date == 0 {
			t.Error("Expected date to default to creation time")
		}
		if expense.Status != models.ExpenseStatusPending {
			t.Errorf("Expected pending status, got %s", expense.Status)
		}
	})

	t.Run("GetExpense retrieves splits in order", func(t *testing.T) {
		original := &models.Expense{
			Description: "Rent",
			Amount:      1500,
			PayerID:     "p1",
			PayerName:   "Bruno",
			Date:        1_700_000_000,
			Category:    models.CategoryHousing,
			OwnerUserID: "u1",
			Splits: []models.SplitShare{
				{ParticipantID: "p2", ParticipantName: "Carla", Percentage: 20, Paid: true, PaidAt: 1_700_000_100},
				{ParticipantID: "u1", ParticipantName: "Ana", Percentage: 50},
				{ParticipantID: "p1", ParticipantName: "Bruno", Percentage: 30},
			},
		}
		if err := store.CreateExpense(ctx, original); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}

		if got.Description != "Rent" || got.Amount != 1500 || got.PayerID != "p1" || got.Date != 1_700_000_000 {
			t.Errorf("Expense fields mismatch: %+v", got)
		}
		if len(got.Splits) != 3 {
			t.Fatalf("Expected 3 splits, got %d", len(got.Splits))
		}
		for i, want := range []string{"p2", "u1", "p1"} {
			if got.Splits[i].ParticipantID != want {
				t.Errorf("Split %d: got %s, want %s", i, got.Splits[i].ParticipantID, want)
			}
		}
		if !got.Splits[0].Paid || got.Splits[0].PaidAt != 1_700_000_100 {
			t.Errorf("Paid state not persisted: %+v", got.Splits[0])
		}
		if got.Splits[1].Paid || got.Splits[1].PaidAt != 0 {
			t.Errorf("Unpaid split should have no paidAt: %+v", got.Splits[1])
		}
	})

	t.Run("GetExpense returns ErrNotFound for nonexistent expense", func(t *testing.T) {
		_, err := store.GetExpense(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateExpense replaces splits", func(t *testing.T) {
		expense := &models.Expense{
			Description: "Taxi",
			Amount:      40,
			PayerID:     "u1",
			PayerName:   "Ana",
			Category:    models.CategoryTransport,
			OwnerUserID: "u1",
			Splits: []models.SplitShare{
				{ParticipantID: "u1", ParticipantName: "Ana", Percentage: 50},
				{ParticipantID: "p1", ParticipantName: "Bruno", Percentage: 50},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expense.Amount = 60
		expense.Status = models.ExpenseStatusCompleted
		expense.Splits = []models.SplitShare{
			{ParticipantID: "u1", ParticipantName: "Ana", Percentage: 100, Paid: true, PaidAt: 5},
		}
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Amount != 60 || got.Status != models.ExpenseStatusCompleted {
			t.Errorf("Update not persisted: %+v", got)
		}
		if len(got.Splits) != 1 || !got.Splits[0].Paid {
			t.Errorf("Splits not replaced: %+v", got.Splits)
		}
	})

	t.Run("UpdateExpense returns ErrNotFound for nonexistent expense", func(t *testing.T) {
		err := store.UpdateExpense(ctx, &models.Expense{ID: "missing", Amount: 1, Status: models.ExpenseStatusPending})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteExpense removes expense and splits", func(t *testing.T) {
		expense := &models.Expense{
			Description: "Cinema",
			Amount:      30,
			PayerID:     "u1",
			PayerName:   "Ana",
			Category:    models.CategoryLeisure,
			OwnerUserID: "u1",
			Splits:      []models.SplitShare{{ParticipantID: "u1", ParticipantName: "Ana", Percentage: 100}},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestListExpensesByOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	create := func(owner string, date int64, status models.ExpenseStatus) *models.Expense {
		e := &models.Expense{
			Description: "x",
			Amount:      10,
			PayerID:     owner,
			PayerName:   owner,
			Date:        date,
			Category:    models.CategoryOther,
			Status:      status,
			OwnerUserID: owner,
			Splits:      []models.SplitShare{{ParticipantID: owner, ParticipantName: owner, Percentage: 100, Paid: status == models.ExpenseStatusCompleted}},
		}
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		return e
	}

	older := create("u1", 100, models.ExpenseStatusPending)
	newer := create("u1", 200, models.ExpenseStatusCompleted)
	create("u2", 300, models.ExpenseStatusPending)

	all, err := store.ListExpensesByOwner(ctx, "u1", "")
	if err != nil {
		t.Fatalf("ListExpensesByOwner failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 expenses, got %d", len(all))
	}
	if all[0].ID != newer.ID || all[1].ID != older.ID {
		t.Error("Expected newest first")
	}
	for _, e := range all {
		if len(e.Splits) != 1 {
			t.Errorf("Expense %s: expected 1 split, got %d", e.ID, len(e.Splits))
		}
	}

	completed, err := store.ListExpensesByOwner(ctx, "u1", models.ExpenseStatusCompleted)
	if err != nil {
		t.Fatalf("ListExpensesByOwner failed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != newer.ID {
		t.Errorf("Status filter: got %d expenses", len(completed))
	}

	none, err := store.ListExpensesByOwner(ctx, "nobody", "")
	if err != nil {
		t.Fatalf("ListExpensesByOwner failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no expenses, got %d", len(none))
	}
}

func TestPartners(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bruno := &models.Partner{OwnerUserID: "u1", Name: "Bruno", Email: "bruno@example.com"}
	if err := store.CreatePartner(ctx, bruno); err != nil {
		t.Fatalf("CreatePartner failed: %v", err)
	}
	if bruno.ID == "" || bruno.Status != models.PartnerStatusPending {
		t.Errorf("Expected generated ID and pending status, got %+v", bruno)
	}

	carla := &models.Partner{OwnerUserID: "u1", Name: "Carla", Email: "carla@example.com", Status: models.PartnerStatusActive}
	if err := store.CreatePartner(ctx, carla); err != nil {
		t.Fatalf("CreatePartner failed: %v", err)
	}

	bruno.Status = models.PartnerStatusActive
	if err := store.UpdatePartner(ctx, bruno); err != nil {
		t.Fatalf("UpdatePartner failed: %v", err)
	}
	got, err := store.GetPartner(ctx, bruno.ID)
	if err != nil {
		t.Fatalf("GetPartner failed: %v", err)
	}
	if got.Status != models.PartnerStatusActive {
		t.Errorf("Status not updated: %s", got.Status)
	}

	active, err := store.ListPartnersByOwner(ctx, "u1", models.PartnerStatusActive)
	if err != nil {
		t.Fatalf("ListPartnersByOwner failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("Expected 2 active partners, got %d", len(active))
	}
	if active[0].Name != "Bruno" || active[1].Name != "Carla" {
		t.Error("Expected invitation order")
	}

	if err := store.DeletePartner(ctx, carla.ID); err != nil {
		t.Fatalf("DeletePartner failed: %v", err)
	}
	if _, err := store.GetPartner(ctx, carla.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.UpdatePartner(ctx, carla); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on update of deleted partner, got %v", err)
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("ana@example.com", "Ana", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "ana@example.com")
	if err != nil || byEmail == nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.DisplayName != "Ana" {
		t.Errorf("User mismatch: %+v", byEmail)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil || byID == nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}

	missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for missing user, got %v, %v", missing, err)
	}

	dup := models.NewUser("ana@example.com", "Other", "hash")
	if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

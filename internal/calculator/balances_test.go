package calculator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitpartner/internal/models"
)

const owner = "owner"

var partnerBob = models.Partner{ID: "bob", Name: "Bob", Status: models.PartnerStatusActive}

func expense(id string, amount float64, payer, category string, status models.ExpenseStatus, splits ...models.SplitShare) models.Expense {
	return models.Expense{
		ID:          id,
		Amount:      amount,
		PayerID:     payer,
		Category:    category,
		Status:      status,
		OwnerUserID: owner,
		Splits:      splits,
	}
}

func share(id string, pct float64, paid bool) models.SplitShare {
	s := models.SplitShare{ParticipantID: id, ParticipantName: id, Percentage: pct, Paid: paid}
	if paid {
		s.PaidAt = 1
	}
	return s
}

func TestShareOf(t *testing.T) {
	assert.InDelta(t, 120.0, ShareOf(200, 60), 1e-9)
	assert.InDelta(t, 80.0, ShareOf(200, 40), 1e-9)
	assert.InDelta(t, 33.33, ShareOf(100, 33.33), 1e-9)
}

func TestBreakdownExpense(t *testing.T) {
	e := expense("e1", 200, owner, models.CategoryFood, models.ExpenseStatusPending,
		share(owner, 60, false), share("bob", 40, true))

	b := BreakdownExpense(e, owner)
	assert.Equal(t, "e1", b.ExpenseID)
	assert.InDelta(t, 120.0, b.OwnerShare, 0.001)
	require.Len(t, b.Shares, 2)
	assert.InDelta(t, 80.0, b.Shares[1].Amount, 0.001)
	assert.True(t, b.Shares[1].Paid)
}

func TestSummarize_OwnerPaysBoth(t *testing.T) {
	expenses := []models.Expense{
		expense("e1", 100, owner, models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 50, false), share("bob", 50, false)),
		expense("e2", 50, owner, models.CategoryHousing, models.ExpenseStatusPending,
			share(owner, 50, false), share("bob", 50, false)),
	}

	s := Summarize(expenses, []models.Partner{partnerBob}, Options{OwnerID: owner})

	require.Len(t, s.Balances, 1)
	bal := s.Balances[0]
	assert.Equal(t, "bob", bal.PartnerID)
	assert.Equal(t, "Bob", bal.PartnerName)
	assert.InDelta(t, 75.0, bal.OwedToOwner, 0.001)
	assert.InDelta(t, 0.0, bal.OwedByOwner, 0.001)
	assert.InDelta(t, 75.0, bal.NetBalance, 0.001)
	assert.Empty(t, s.Warnings)
}

func TestSummarize_Netting(t *testing.T) {
	expenses := []models.Expense{
		// owner paid 100, bob owes 40
		expense("e1", 100, owner, models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 60, false), share("bob", 40, false)),
		// bob paid 200, owner owes 150
		expense("e2", 200, "bob", models.CategoryTransport, models.ExpenseStatusPending,
			share(owner, 75, false), share("bob", 25, false)),
	}

	s := Summarize(expenses, []models.Partner{partnerBob}, Options{OwnerID: owner})

	require.Len(t, s.Balances, 1)
	assert.InDelta(t, 40.0, s.Balances[0].OwedToOwner, 0.001)
	assert.InDelta(t, 150.0, s.Balances[0].OwedByOwner, 0.001)
	assert.InDelta(t, -110.0, s.Balances[0].NetBalance, 0.001, "negative: owner owes bob")
}

func TestSummarize_Totals(t *testing.T) {
	expenses := []models.Expense{
		expense("e1", 100, owner, models.CategoryFood, models.ExpenseStatusCompleted,
			share(owner, 50, true), share("bob", 50, true)),
		expense("e2", 50, owner, models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 100, false)),
		expense("e3", 30, owner, models.CategoryLeisure, models.ExpenseStatusPending,
			share(owner, 100, false)),
		expense("e4", 20, owner, models.CategoryHealth, models.ExpenseStatusPending,
			share(owner, 100, false)),
	}

	s := Summarize(expenses, nil, Options{OwnerID: owner})

	assert.Equal(t, 4, s.TotalCount)
	assert.Equal(t, 1, s.CompletedCount)
	assert.Equal(t, 3, s.PendingCount)
	assert.InDelta(t, 200.0, s.TotalAmount, 0.001)
	assert.InDelta(t, 100.0, s.CompletedTotal, 0.001)
	assert.InDelta(t, 100.0, s.PendingTotal, 0.001)
	assert.InDelta(t, 25.0, s.CompletionRate, 0.001)

	require.Len(t, s.Categories, 3)
	assert.Equal(t, CategoryTotal{Category: models.CategoryFood, Count: 2, Total: 150}, s.Categories[0])
	assert.Equal(t, models.CategoryLeisure, s.Categories[1].Category)
	assert.Equal(t, models.CategoryHealth, s.Categories[2].Category)
	assert.Len(t, s.Expenses, 4)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, []models.Partner{partnerBob}, Options{OwnerID: owner})
	assert.Zero(t, s.CompletionRate)
	assert.Zero(t, s.TotalCount)
	require.Len(t, s.Balances, 1)
	assert.Zero(t, s.Balances[0].NetBalance)
}

func TestSummarize_CategoryOrderAndTruncation(t *testing.T) {
	var expenses []models.Expense
	cats := []string{"a", "b", "c", "d", "e", "f", "g"}
	amounts := []float64{10, 30, 30, 5, 50, 1, 30}
	for i, c := range cats {
		expenses = append(expenses, expense(c, amounts[i], owner, c, models.ExpenseStatusPending, share(owner, 100, false)))
	}

	s := Summarize(expenses, nil, Options{OwnerID: owner})
	require.Len(t, s.Categories, DefaultTopCategories)
	got := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		got[i] = c.Category
	}
	// ties (b, c, g at 30) keep first-appearance order
	assert.Equal(t, []string{"e", "b", "c", "g", "a"}, got)

	s = Summarize(expenses, nil, Options{OwnerID: owner, TopCategories: 2})
	assert.Len(t, s.Categories, 2)
}

func TestSummarize_CompletedStillCountsByDefault(t *testing.T) {
	expenses := []models.Expense{
		expense("e1", 100, owner, models.CategoryFood, models.ExpenseStatusCompleted,
			share(owner, 50, true), share("bob", 50, true)),
	}

	s := Summarize(expenses, []models.Partner{partnerBob}, Options{OwnerID: owner})
	assert.InDelta(t, 50.0, s.Balances[0].NetBalance, 0.001)

	s = Summarize(expenses, []models.Partner{partnerBob}, Options{OwnerID: owner, ExcludePaidShares: true})
	assert.InDelta(t, 0.0, s.Balances[0].NetBalance, 0.001)
}

func TestSummarize_ExcludePaidSharesPartnerPayer(t *testing.T) {
	expenses := []models.Expense{
		expense("e1", 100, "bob", models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 50, true), share("bob", 50, false)),
		expense("e2", 40, "bob", models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 50, false), share("bob", 50, false)),
	}

	s := Summarize(expenses, []models.Partner{partnerBob}, Options{OwnerID: owner, ExcludePaidShares: true})
	assert.InDelta(t, 20.0, s.Balances[0].OwedByOwner, 0.001)
	assert.InDelta(t, -20.0, s.Balances[0].NetBalance, 0.001)
}

func TestSummarize_IntegrityWarnings(t *testing.T) {
	expenses := []models.Expense{
		// bad total: skipped from balances, still counted in totals
		expense("bad-total", 100, owner, models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 33, false), share("bob", 33, false)),
		// non-positive amount: skipped entirely
		expense("zero", 0, owner, models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 100, false)),
		// completed with unpaid share: counted as pending
		expense("mismatch", 10, owner, models.CategoryFood, models.ExpenseStatusCompleted,
			share(owner, 50, true), share("bob", 50, false)),
		// missing payer
		expense("no-payer", 10, "", models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 50, false), share("bob", 50, false)),
		// unknown partner in split
		expense("stranger", 10, owner, models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 50, false), share("eve", 50, false)),
		// out of range percentage clamped: 120/-20 -> 100/0, total still 100
		expense("clamped", 10, owner, models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 120, false), share("bob", -20, false)),
		// duplicate participant
		expense("dup", 10, owner, models.CategoryFood, models.ExpenseStatusPending,
			share("bob", 50, false), share("bob", 50, false)),
	}

	var s *Summary
	require.NotPanics(t, func() {
		s = Summarize(expenses, []models.Partner{partnerBob}, Options{OwnerID: owner})
	})

	warned := map[string]bool{}
	for _, w := range s.Warnings {
		warned[w.ExpenseID] = true
		assert.NotEmpty(t, w.Reason)
		assert.True(t, strings.HasPrefix(w.String(), "expense "+w.ExpenseID))
	}
	for _, id := range []string{"bad-total", "zero", "mismatch", "no-payer", "stranger", "clamped", "dup"} {
		assert.True(t, warned[id], "expected warning for %s", id)
	}

	assert.Equal(t, 6, s.TotalCount)
	assert.Equal(t, 0, s.CompletedCount)
	// only "mismatch" (5) reaches bob's balance; "clamped" gives bob 0
	assert.InDelta(t, 5.0, s.Balances[0].OwedToOwner, 0.001)
}

func TestSummarize_InactivePartnersHaveNoBalance(t *testing.T) {
	carol := models.Partner{ID: "carol", Name: "Carol", Status: models.PartnerStatusDeclined}
	expenses := []models.Expense{
		expense("e1", 90, owner, models.CategoryFood, models.ExpenseStatusPending,
			share(owner, 50, false), share("bob", 25, false), share("carol", 25, false)),
	}

	s := Summarize(expenses, []models.Partner{carol, partnerBob}, Options{OwnerID: owner})

	require.Len(t, s.Balances, 1)
	assert.Equal(t, "bob", s.Balances[0].PartnerID)
	assert.InDelta(t, 22.5, s.Balances[0].NetBalance, 0.001)
	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0].Reason, "carol")
}

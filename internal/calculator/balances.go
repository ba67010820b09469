package calculator

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpartner/internal/models"
)

// DefaultTopCategories is how many categories the dashboard shows.
const DefaultTopCategories = 5

var hundred = decimal.NewFromInt(100)

// Options tune Summarize.
type Options struct {
	// OwnerID is the user whose dashboard is being computed.
	OwnerID string

	// TopCategories truncates the category list; <= 0 means DefaultTopCategories.
	TopCategories int

	// ExcludePaidShares leaves shares already marked paid out of the partner
	// balances. Off by default: balances are computed from raw percentages
	// for pending and completed expenses alike.
	ExcludePaidShares bool
}

// CategoryTotal is the number of expenses and summed amount for one category.
type CategoryTotal struct {
	Category string
	Count    int
	Total    float64
}

// ShareAmount is one participant's part of a single expense.
type ShareAmount struct {
	ParticipantID   string
	ParticipantName string
	Percentage      float64
	Amount          float64
	Paid            bool
}

// ExpenseBreakdown is the owed detail of one expense.
type ExpenseBreakdown struct {
	ExpenseID  string
	Amount     float64
	OwnerShare float64       // amount * ownerPercentage / 100
	Shares     []ShareAmount // every share, owner included
}

// PartnerBalance is the settlement between the owner and one partner.
type PartnerBalance struct {
	PartnerID   string
	PartnerName string
	OwedToOwner float64 // partner shares of expenses the owner paid
	OwedByOwner float64 // owner shares of expenses the partner paid
	NetBalance  float64 // OwedToOwner - OwedByOwner; positive = partner owes owner
}

// IntegrityWarning flags a stored expense that breaks an invariant.
// Aggregation carries on; the warning tells the caller what was skipped or clamped.
type IntegrityWarning struct {
	ExpenseID string
	Reason    string
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("expense %s: %s", w.ExpenseID, w.Reason)
}

// Summary is the dashboard view over all of an owner's expenses.
type Summary struct {
	TotalAmount    float64
	TotalCount     int
	PendingTotal   float64
	PendingCount   int
	CompletedTotal float64
	CompletedCount int
	CompletionRate float64 // completed / total * 100; 0 with no expenses

	Categories []CategoryTotal
	Expenses   []ExpenseBreakdown
	Balances   []PartnerBalance
	Warnings   []IntegrityWarning
}

// ShareOf returns amount * percentage / 100.
func ShareOf(amount, percentage float64) float64 {
	return shareOf(amount, percentage).InexactFloat64()
}

func shareOf(amount, percentage float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(percentage)).Div(hundred)
}

// BreakdownExpense computes each share's amount for one expense.
func BreakdownExpense(e models.Expense, ownerID string) ExpenseBreakdown {
	b := ExpenseBreakdown{
		ExpenseID: e.ID,
		Amount:    e.Amount,
		Shares:    make([]ShareAmount, 0, len(e.Splits)),
	}
	for _, s := range e.Splits {
		amount := ShareOf(e.Amount, s.Percentage)
		if s.ParticipantID == ownerID {
			b.OwnerShare = amount
		}
		b.Shares = append(b.Shares, ShareAmount{
			ParticipantID:   s.ParticipantID,
			ParticipantName: s.ParticipantName,
			Percentage:      s.Percentage,
			Amount:          amount,
			Paid:            s.Paid,
		})
	}
	return b
}

type balanceAcc struct {
	partner models.Partner
	owed    decimal.Decimal // partner -> owner
	owing   decimal.Decimal // owner -> partner
}

type categoryAcc struct {
	name  string
	count int
	total decimal.Decimal
}

// Summarize aggregates an owner's expenses into dashboard totals, per-expense
// owed detail and net balances with each active partner, in the order given.
//
// Pending and completed expenses both count toward balances unless
// opts.ExcludePaidShares is set. Malformed records never abort the
// aggregation: they are skipped or clamped and reported in Summary.Warnings.
func Summarize(expenses []models.Expense, partners []models.Partner, opts Options) *Summary {
	top := opts.TopCategories
	if top <= 0 {
		top = DefaultTopCategories
	}

	summary := &Summary{}

	balances := make(map[string]*balanceAcc, len(partners))
	order := make([]string, 0, len(partners))
	for _, p := range partners {
		if p.Status != models.PartnerStatusActive {
			continue
		}
		if _, dup := balances[p.ID]; dup {
			continue
		}
		balances[p.ID] = &balanceAcc{partner: p}
		order = append(order, p.ID)
	}

	categories := make(map[string]*categoryAcc)
	var categoryOrder []*categoryAcc

	var total, pending, completed decimal.Decimal
	warn := func(id, format string, args ...any) {
		summary.Warnings = append(summary.Warnings, IntegrityWarning{
			ExpenseID: id,
			Reason:    fmt.Sprintf(format, args...),
		})
	}

	for _, e := range expenses {
		if e.Amount <= 0 || math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			warn(e.ID, "amount %v is not positive, expense skipped", e.Amount)
			continue
		}
		amount := decimal.NewFromFloat(e.Amount)

		status := e.Status
		if err := CheckStatus(e); err != nil {
			warn(e.ID, "%v, counted as pending", err)
			status = models.ExpenseStatusPending
		}

		total = total.Add(amount)
		summary.TotalCount++
		if status == models.ExpenseStatusCompleted {
			completed = completed.Add(amount)
			summary.CompletedCount++
		} else {
			pending = pending.Add(amount)
			summary.PendingCount++
		}

		cat, ok := categories[e.Category]
		if !ok {
			cat = &categoryAcc{name: e.Category}
			categories[e.Category] = cat
			categoryOrder = append(categoryOrder, cat)
		}
		cat.count++
		cat.total = cat.total.Add(amount)

		splits, ok := sanitizeSplits(e, warn)
		if !ok {
			continue
		}
		clean := e
		clean.Splits = splits
		summary.Expenses = append(summary.Expenses, BreakdownExpense(clean, opts.OwnerID))

		if e.PayerID == "" {
			warn(e.ID, "%v, left out of balances", ErrMissingPayer)
			continue
		}
		accumulate(clean, opts, balances, warn)
	}

	summary.TotalAmount = total.InexactFloat64()
	summary.PendingTotal = pending.InexactFloat64()
	summary.CompletedTotal = completed.InexactFloat64()
	if summary.TotalCount > 0 {
		summary.CompletionRate = float64(summary.CompletedCount) / float64(summary.TotalCount) * 100
	}

	sort.SliceStable(categoryOrder, func(i, j int) bool {
		return categoryOrder[i].total.GreaterThan(categoryOrder[j].total)
	})
	if len(categoryOrder) > top {
		categoryOrder = categoryOrder[:top]
	}
	for _, c := range categoryOrder {
		summary.Categories = append(summary.Categories, CategoryTotal{
			Category: c.name,
			Count:    c.count,
			Total:    c.total.InexactFloat64(),
		})
	}

	for _, id := range order {
		acc := balances[id]
		summary.Balances = append(summary.Balances, PartnerBalance{
			PartnerID:   acc.partner.ID,
			PartnerName: acc.partner.Name,
			OwedToOwner: acc.owed.InexactFloat64(),
			OwedByOwner: acc.owing.InexactFloat64(),
			NetBalance:  acc.owed.Sub(acc.owing).InexactFloat64(),
		})
	}

	return summary
}

// sanitizeSplits returns the shares usable for owed amounts. Out-of-range
// percentages are clamped; duplicates or a bad total make the whole split
// unusable.
func sanitizeSplits(e models.Expense, warn func(id, format string, args ...any)) ([]models.SplitShare, bool) {
	if err := ValidateParticipants(e.Splits); err != nil {
		warn(e.ID, "%v, left out of balances", err)
		return nil, false
	}
	splits := make([]models.SplitShare, len(e.Splits))
	copy(splits, e.Splits)
	for i := range splits {
		p := splits[i].Percentage
		if p < 0 || p > FullShare || math.IsNaN(p) {
			clamped := math.Max(0, math.Min(FullShare, p))
			if math.IsNaN(p) {
				clamped = 0
			}
			warn(e.ID, "percentage %v for %s clamped to %v", p, splits[i].ParticipantID, clamped)
			splits[i].Percentage = clamped
		}
	}
	if err := ValidateTotal(splits); err != nil {
		warn(e.ID, "%v, left out of balances", err)
		return nil, false
	}
	return splits, true
}

func accumulate(e models.Expense, opts Options, balances map[string]*balanceAcc, warn func(id, format string, args ...any)) {
	switch {
	case e.PayerID == opts.OwnerID:
		for _, s := range e.Splits {
			if s.ParticipantID == opts.OwnerID {
				continue
			}
			acc, ok := balances[s.ParticipantID]
			if !ok {
				warn(e.ID, "participant %s is not an active partner, share ignored", s.ParticipantID)
				continue
			}
			if opts.ExcludePaidShares && s.Paid {
				continue
			}
			acc.owed = acc.owed.Add(shareOf(e.Amount, s.Percentage))
		}
	default:
		acc, ok := balances[e.PayerID]
		if !ok {
			warn(e.ID, "payer %s is not an active partner, left out of balances", e.PayerID)
			return
		}
		own, ok := e.Share(opts.OwnerID)
		if !ok {
			return
		}
		if opts.ExcludePaidShares && own.Paid {
			return
		}
		acc.owing = acc.owing.Add(shareOf(e.Amount, own.Percentage))
	}
}

package service

import (
	"github.com/mmynk/splitpartner/internal/calculator"
	"github.com/mmynk/splitpartner/internal/events"
	"github.com/mmynk/splitpartner/internal/models"
	"github.com/mmynk/splitpartner/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIPartner(p *models.Partner) *api.Partner {
	return &api.Partner{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// toAPIExpense converts an expense and fills in each share's amount.
func toAPIExpense(e *models.Expense) *api.Expense {
	breakdown := calculator.BreakdownExpense(*e, e.OwnerUserID)

	splits := make([]*api.SplitShare, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = &api.SplitShare{
			ParticipantID:   s.ParticipantID,
			ParticipantName: s.ParticipantName,
			Percentage:      s.Percentage,
			Amount:          breakdown.Shares[i].Amount,
			Paid:            s.Paid,
			PaidAt:          s.PaidAt,
		}
	}

	return &api.Expense{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		PayerID:     e.PayerID,
		PayerName:   e.PayerName,
		Date:        e.Date,
		Category:    e.Category,
		Status:      string(e.Status),
		Splits:      splits,
		OwnerShare:  breakdown.OwnerShare,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toAPIEvent(ev events.ExpenseEvent) *api.ExpenseEvent {
	out := &api.ExpenseEvent{
		Type:      string(ev.Type),
		ExpenseID: ev.ExpenseID,
	}
	if ev.Expense != nil {
		out.Expense = toAPIExpense(ev.Expense)
	}
	return out
}

func toAPIDashboard(s *calculator.Summary) *api.GetDashboardResponse {
	resp := &api.GetDashboardResponse{
		TotalAmount:    s.TotalAmount,
		TotalCount:     s.TotalCount,
		PendingTotal:   s.PendingTotal,
		PendingCount:   s.PendingCount,
		CompletedTotal: s.CompletedTotal,
		CompletedCount: s.CompletedCount,
		CompletionRate: s.CompletionRate,
		TopCategories:  make([]*api.CategoryTotal, len(s.Categories)),
		Balances:       make([]*api.PartnerBalance, len(s.Balances)),
	}
	for i, c := range s.Categories {
		resp.TopCategories[i] = &api.CategoryTotal{Category: c.Category, Count: c.Count, Total: c.Total}
	}
	for i, b := range s.Balances {
		resp.Balances[i] = &api.PartnerBalance{
			PartnerID:   b.PartnerID,
			PartnerName: b.PartnerName,
			OwedToOwner: b.OwedToOwner,
			OwedByOwner: b.OwedByOwner,
			NetBalance:  b.NetBalance,
		}
	}
	for _, w := range s.Warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	return resp
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/splitpartner/internal/calculator"
	"github.com/mmynk/splitpartner/internal/events"
	"github.com/mmynk/splitpartner/internal/middleware"
	"github.com/mmynk/splitpartner/internal/models"
	"github.com/mmynk/splitpartner/internal/storage"
	"github.com/mmynk/splitpartner/pkg/api"
	"github.com/mmynk/splitpartner/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseOptions tunes validation and dashboard output.
type ExpenseOptions struct {
	// Categories lists the accepted category labels; empty uses models.DefaultCategories.
	Categories []string
	// TopCategories caps the dashboard category ranking.
	TopCategories int
	// ExcludePaidShares leaves settled shares out of partner balances.
	ExcludePaidShares bool
	// StrictPercentages rejects shares outside [0, 100].
	StrictPercentages bool
}

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store  storage.Store
	hub    *events.Hub
	opts   ExpenseOptions
	logger *slog.Logger
	now    func() time.Time
}

// NewExpenseService creates an ExpenseService backed by store.
// Committed changes are published to hub.
func NewExpenseService(store storage.Store, hub *events.Hub, opts ExpenseOptions, logger *slog.Logger) *ExpenseService {
	if len(opts.Categories) == 0 {
		opts.Categories = models.DefaultCategories()
	}
	if opts.TopCategories <= 0 {
		opts.TopCategories = calculator.DefaultTopCategories
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseService{
		store:  store,
		hub:    hub,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// caller returns the acting user as a split participant.
func (s *ExpenseService) caller(ctx context.Context) (models.Participant, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return models.Participant{}, connect.NewError(connect.CodeUnauthenticated, ErrAuthRequired)
	}

	name := middleware.GetDisplayName(ctx)
	if name == "" {
		user, err := s.store.GetUserByID(ctx, userID)
		if err != nil {
			return models.Participant{}, fmt.Errorf("failed to look up user: %w", err)
		}
		switch {
		case user != nil && user.DisplayName != "":
			name = user.DisplayName
		case middleware.GetEmail(ctx) != "":
			name = middleware.GetEmail(ctx)
		default:
			name = userID
		}
	}
	return models.Participant{ID: userID, DisplayName: name}, nil
}

// ownedExpense loads an expense and hides other users' expenses as not found.
func (s *ExpenseService) ownedExpense(ctx context.Context, ownerID, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.OwnerUserID != ownerID {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return expense, nil
}

// partnerLookup resolves participant IDs against the owner's partners.
type partnerLookup struct {
	ctx   context.Context
	store storage.PartnerStore
	owner models.Participant
	cache map[string]*models.Partner
}

func (s *ExpenseService) newPartnerLookup(ctx context.Context, owner models.Participant) *partnerLookup {
	return &partnerLookup{ctx: ctx, store: s.store, owner: owner, cache: make(map[string]*models.Partner)}
}

// partner returns the owner's partner with the given ID.
func (l *partnerLookup) partner(id string) (*models.Partner, error) {
	if p, ok := l.cache[id]; ok {
		return p, nil
	}
	p, err := l.store.GetPartner(l.ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerUserID != l.owner.ID {
		return nil, fmt.Errorf("partner %s: %w", id, storage.ErrNotFound)
	}
	l.cache[id] = p
	return p, nil
}

// active returns the partner if it may join a split.
func (l *partnerLookup) active(id string) (*models.Partner, error) {
	p, err := l.partner(id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PartnerStatusActive {
		return nil, fmt.Errorf("%w: %s is %s", ErrPartnerNotActive, p.Name, p.Status)
	}
	return p, nil
}

// participant resolves id to the owner or an active partner.
func (l *partnerLookup) participant(id string) (models.Participant, error) {
	if id == l.owner.ID {
		return l.owner, nil
	}
	p, err := l.active(id)
	if err != nil {
		return models.Participant{}, err
	}
	return p.Participant(), nil
}

func (s *ExpenseService) validCategory(category string) bool {
	for _, c := range s.opts.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func (s *ExpenseService) publish(t events.EventType, e *models.Expense) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(events.ExpenseEvent{
		Type:        t,
		OwnerUserID: e.OwnerUserID,
		ExpenseID:   e.ID,
		Expense:     e,
	})
}

// applyPercentages overwrites shares in sorted participant order.
func applyPercentages(splits []models.SplitShare, percentages map[string]float64) ([]models.SplitShare, error) {
	ids := make([]string, 0, len(percentages))
	for id := range percentages {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := splits
	for _, id := range ids {
		var err error
		out, err = calculator.ApplyManualPercentage(out, id, percentages[id])
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CreateExpense records a new expense split equally across the caller and the
// selected active partners, then applies any percentage overrides.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	msg := req.Msg
	s.logger.Info("CreateExpense request", "user_id", owner.ID, "amount", msg.Amount, "partners", len(msg.PartnerIDs))

	msg.Description = strings.TrimSpace(msg.Description)
	if err := validateRequest(msg); err != nil {
		return nil, connectError(err)
	}
	category := msg.Category
	if category == "" {
		category = models.CategoryFood
	}
	if !s.validCategory(category) {
		return nil, connectError(fmt.Errorf("%w: %s", ErrInvalidCategory, category))
	}

	lookup := s.newPartnerLookup(ctx, owner)
	partners := make([]models.Participant, 0, len(msg.PartnerIDs))
	for _, id := range msg.PartnerIDs {
		if id == owner.ID {
			continue
		}
		p, err := lookup.active(id)
		if err != nil {
			s.logger.Warn("CreateExpense partner rejected", "partner_id", id, "error", err)
			return nil, connectError(err)
		}
		partners = append(partners, p.Participant())
	}

	payerID := msg.PayerID
	if payerID == "" {
		payerID = owner.ID
	}
	payer, err := lookup.participant(payerID)
	if err != nil {
		return nil, connectError(err)
	}

	splits := calculator.BuildEqualSplits(owner, partners, !msg.ExcludeOwner)
	if len(msg.Percentages) > 0 {
		splits, err = applyPercentages(splits, msg.Percentages)
		if err != nil {
			return nil, connectError(err)
		}
	}
	if err := calculator.Validate(splits, s.opts.StrictPercentages); err != nil {
		s.logger.Warn("CreateExpense split rejected", "user_id", owner.ID, "error", err)
		return nil, connectError(err)
	}

	now := s.now().Unix()
	date := msg.Date
	if date == 0 {
		date = now
	}
	expense := &models.Expense{
		Description: msg.Description,
		Amount:      msg.Amount,
		PayerID:     payer.ID,
		PayerName:   payer.DisplayName,
		Date:        date,
		Category:    category,
		Splits:      splits,
		Status:      calculator.DeriveStatus(splits),
		OwnerUserID: owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("CreateExpense failed", "user_id", owner.ID, "error", err)
		return nil, connectError(err)
	}
	s.publish(events.EventCreated, expense)

	s.logger.Info("Expense created", "expense_id", expense.ID, "user_id", owner.ID)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense returns one of the caller's expenses with share amounts.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	expense, err := s.ownedExpense(ctx, owner.ID, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}
	resp := &api.GetExpenseResponse{Expense: toAPIExpense(expense)}
	if err := calculator.CheckStatus(*expense); err != nil {
		s.logger.Warn("Stored expense status disagrees with its shares", "expense_id", expense.ID, "error", err)
		resp.Warnings = append(resp.Warnings, err.Error())
	}

	return connect.NewResponse(resp), nil
}

// UpdateExpense edits an expense. Zero-valued fields keep their current value
// and a nil Splits keeps the current shares. Any edit resets the expense to
// pending; paid flags carry over for participants that remain.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	msg := req.Msg
	s.logger.Info("UpdateExpense request", "expense_id", msg.ExpenseID, "user_id", owner.ID)

	if err := validateRequest(msg); err != nil {
		return nil, connectError(err)
	}

	expense, err := s.ownedExpense(ctx, owner.ID, msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}

	if d := strings.TrimSpace(msg.Description); d != "" {
		expense.Description = d
	}
	if msg.Amount > 0 {
		expense.Amount = msg.Amount
	}
	if msg.Category != "" {
		if !s.validCategory(msg.Category) {
			return nil, connectError(fmt.Errorf("%w: %s", ErrInvalidCategory, msg.Category))
		}
		expense.Category = msg.Category
	}
	if msg.Date != 0 {
		expense.Date = msg.Date
	}

	lookup := s.newPartnerLookup(ctx, owner)
	if msg.PayerID != "" && msg.PayerID != expense.PayerID {
		payer, err := lookup.participant(msg.PayerID)
		if err != nil {
			return nil, connectError(err)
		}
		expense.PayerID = payer.ID
		expense.PayerName = payer.DisplayName
	}

	splits := expense.Splits
	if msg.Splits != nil {
		splits, err = s.resolveSplits(expense, msg.Splits, lookup)
		if err != nil {
			return nil, connectError(err)
		}
	}
	if err := calculator.Validate(splits, s.opts.StrictPercentages); err != nil {
		s.logger.Warn("UpdateExpense split rejected", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}
	calculator.ReplaceSplits(expense, splits, s.now())

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		s.logger.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}
	s.publish(events.EventUpdated, expense)

	s.logger.Info("Expense updated", "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// resolveSplits builds the new share list for an edit. Participants already on
// the expense may stay even if their partnership is no longer active; new
// ones must be the owner or an active partner. An empty list leaves the owner
// holding 100%.
func (s *ExpenseService) resolveSplits(expense *models.Expense, inputs []*api.SplitInput, lookup *partnerLookup) ([]models.SplitShare, error) {
	next := make([]models.SplitShare, 0, len(inputs))
	for _, in := range inputs {
		if in == nil {
			continue
		}
		share := models.SplitShare{ParticipantID: in.ParticipantID, Percentage: in.Percentage}
		if existing, ok := expense.Share(in.ParticipantID); ok {
			share.ParticipantName = existing.ParticipantName
		} else {
			p, err := lookup.participant(in.ParticipantID)
			if err != nil {
				return nil, err
			}
			share.ParticipantName = p.DisplayName
		}
		next = append(next, share)
	}
	if len(next) == 0 {
		next = calculator.BuildEqualSplits(lookup.owner, nil, true)
	}
	return calculator.CarryPaidFlags(expense.Splits, next), nil
}

// UpdateSplitPercentages overwrites the percentages of existing shares only.
func (s *ExpenseService) UpdateSplitPercentages(ctx context.Context, req *connect.Request[api.UpdateSplitPercentagesRequest]) (*connect.Response[api.UpdateSplitPercentagesResponse], error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	s.logger.Info("UpdateSplitPercentages request", "expense_id", req.Msg.ExpenseID, "user_id", owner.ID)

	expense, err := s.ownedExpense(ctx, owner.ID, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}

	splits, err := applyPercentages(expense.Splits, req.Msg.Percentages)
	if err != nil {
		return nil, connectError(err)
	}
	if err := calculator.Validate(splits, s.opts.StrictPercentages); err != nil {
		s.logger.Warn("UpdateSplitPercentages rejected", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}
	calculator.ReplaceSplits(expense, splits, s.now())

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		s.logger.Error("UpdateSplitPercentages failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}
	s.publish(events.EventUpdated, expense)

	return connect.NewResponse(&api.UpdateSplitPercentagesResponse{Expense: toAPIExpense(expense)}), nil
}

// TogglePayment flips one participant's paid flag and re-derives the status.
func (s *ExpenseService) TogglePayment(ctx context.Context, req *connect.Request[api.TogglePaymentRequest]) (*connect.Response[api.TogglePaymentResponse], error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	expense, err := s.ownedExpense(ctx, owner.ID, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}

	if err := calculator.TogglePaid(expense, req.Msg.ParticipantID, s.now()); err != nil {
		return nil, connectError(err)
	}
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		s.logger.Error("TogglePayment failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}
	s.publish(events.EventUpdated, expense)

	s.logger.Info("Payment toggled",
		"expense_id", expense.ID,
		"participant_id", req.Msg.ParticipantID,
		"status", expense.Status,
	)
	return connect.NewResponse(&api.TogglePaymentResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense permanently.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	expense, err := s.ownedExpense(ctx, owner.ID, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		s.logger.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}
	if s.hub != nil {
		s.hub.Publish(events.ExpenseEvent{Type: events.EventDeleted, OwnerUserID: owner.ID, ExpenseID: expense.ID})
	}

	s.logger.Info("Expense deleted", "expense_id", expense.ID, "user_id", owner.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns the caller's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	status := models.ExpenseStatus(req.Msg.Status)
	if status != "" && !status.Valid() {
		return nil, connectError(fmt.Errorf("%w: %s", ErrInvalidStatus, status))
	}

	expenses, err := s.store.ListExpensesByOwner(ctx, owner.ID, status)
	if err != nil {
		s.logger.Error("ListExpenses failed", "user_id", owner.ID, "error", err)
		return nil, connectError(err)
	}

	resp := &api.ListExpensesResponse{Expenses: make([]*api.Expense, 0, len(expenses))}
	for _, e := range expenses {
		if req.Msg.Category != "" && e.Category != req.Msg.Category {
			continue
		}
		resp.Expenses = append(resp.Expenses, toAPIExpense(e))
	}
	return connect.NewResponse(resp), nil
}

// Summary computes the caller's dashboard from a snapshot of their expenses
// and partners.
func (s *ExpenseService) Summary(ctx context.Context, ownerID string) (*calculator.Summary, error) {
	expenses, err := s.store.ListExpensesByOwner(ctx, ownerID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	partners, err := s.store.ListPartnersByOwner(ctx, ownerID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}

	expenseValues := make([]models.Expense, len(expenses))
	for i, e := range expenses {
		expenseValues[i] = *e
	}
	partnerValues := make([]models.Partner, len(partners))
	for i, p := range partners {
		partnerValues[i] = *p
	}

	summary := calculator.Summarize(expenseValues, partnerValues, calculator.Options{
		OwnerID:           ownerID,
		TopCategories:     s.opts.TopCategories,
		ExcludePaidShares: s.opts.ExcludePaidShares,
	})
	for _, w := range summary.Warnings {
		s.logger.Warn("Data integrity warning", "user_id", ownerID, "expense_id", w.ExpenseID, "reason", w.Reason)
	}
	return summary, nil
}

// GetDashboard returns totals, top categories and per-partner balances.
func (s *ExpenseService) GetDashboard(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.GetDashboardResponse], error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	summary, err := s.Summary(ctx, owner.ID)
	if err != nil {
		s.logger.Error("GetDashboard failed", "user_id", owner.ID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(toAPIDashboard(summary)), nil
}

// WatchExpenses streams the caller's current expenses as snapshot events, a
// synced marker, then every later change until the client disconnects.
// A change racing the snapshot may be delivered twice.
func (s *ExpenseService) WatchExpenses(ctx context.Context, _ *connect.Request[emptypb.Empty], stream *connect.ServerStream[api.ExpenseEvent]) error {
	owner, err := s.caller(ctx)
	if err != nil {
		return connectError(err)
	}
	if s.hub == nil {
		return connect.NewError(connect.CodeUnavailable, errors.New("change feed disabled"))
	}

	ch, cancel := s.hub.Subscribe(owner.ID)
	defer cancel()

	expenses, err := s.store.ListExpensesByOwner(ctx, owner.ID, "")
	if err != nil {
		return connectError(err)
	}
	for _, e := range expenses {
		if err := stream.Send(&api.ExpenseEvent{Type: api.EventTypeSnapshot, ExpenseID: e.ID, Expense: toAPIExpense(e)}); err != nil {
			return err
		}
	}
	if err := stream.Send(&api.ExpenseEvent{Type: api.EventTypeSynced}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(toAPIEvent(ev)); err != nil {
				return err
			}
		}
	}
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpartner/internal/middleware"
	"github.com/mmynk/splitpartner/internal/models"
	"github.com/mmynk/splitpartner/internal/storage"
	"github.com/mmynk/splitpartner/pkg/api"
	"github.com/mmynk/splitpartner/pkg/api/apiconnect"
)

var _ apiconnect.PartnerServiceHandler = (*PartnerService)(nil)

// PartnerService implements the Connect PartnerService.
// Partners are invitation records owned by the inviting user.
type PartnerService struct {
	store  storage.PartnerStore
	logger *slog.Logger
}

// NewPartnerService creates a PartnerService backed by store.
func NewPartnerService(store storage.PartnerStore, logger *slog.Logger) *PartnerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PartnerService{store: store, logger: logger}
}

func (s *PartnerService) ownedPartner(ctx context.Context, ownerID, partnerID string) (*models.Partner, error) {
	partner, err := s.store.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.OwnerUserID != ownerID {
		return nil, fmt.Errorf("partner %s: %w", partnerID, storage.ErrNotFound)
	}
	return partner, nil
}

// InvitePartner records a pending invitation.
func (s *PartnerService) InvitePartner(ctx context.Context, req *connect.Request[api.InvitePartnerRequest]) (*connect.Response[api.InvitePartnerResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, ErrAuthRequired)
	}

	msg := req.Msg
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.ToLower(strings.TrimSpace(msg.Email))
	if err := validateRequest(msg); err != nil {
		return nil, connectError(err)
	}

	partner := &models.Partner{
		OwnerUserID: userID,
		Name:        msg.Name,
		Email:       msg.Email,
		Status:      models.PartnerStatusPending,
	}
	if err := s.store.CreatePartner(ctx, partner); err != nil {
		s.logger.Error("InvitePartner failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Partner invited", "partner_id", partner.ID, "user_id", userID)
	return connect.NewResponse(&api.InvitePartnerResponse{Partner: toAPIPartner(partner)}), nil
}

// ListPartners returns the caller's partners in invitation order.
func (s *PartnerService) ListPartners(ctx context.Context, req *connect.Request[api.ListPartnersRequest]) (*connect.Response[api.ListPartnersResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, ErrAuthRequired)
	}

	status := models.PartnerStatus(req.Msg.Status)
	if status != "" && !status.Valid() {
		return nil, connectError(fmt.Errorf("%w: %s", ErrInvalidStatus, status))
	}

	partners, err := s.store.ListPartnersByOwner(ctx, userID, status)
	if err != nil {
		s.logger.Error("ListPartners failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	resp := &api.ListPartnersResponse{Partners: make([]*api.Partner, len(partners))}
	for i, p := range partners {
		resp.Partners[i] = toAPIPartner(p)
	}
	return connect.NewResponse(resp), nil
}

// UpdatePartnerStatus accepts (active) or declines an invitation.
func (s *PartnerService) UpdatePartnerStatus(ctx context.Context, req *connect.Request[api.UpdatePartnerStatusRequest]) (*connect.Response[api.UpdatePartnerStatusResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, ErrAuthRequired)
	}

	status := models.PartnerStatus(req.Msg.Status)
	if !status.Valid() {
		return nil, connectError(fmt.Errorf("%w: %s", ErrInvalidStatus, status))
	}

	partner, err := s.ownedPartner(ctx, userID, req.Msg.PartnerID)
	if err != nil {
		return nil, connectError(err)
	}
	partner.Status = status
	if err := s.store.UpdatePartner(ctx, partner); err != nil {
		s.logger.Error("UpdatePartnerStatus failed", "partner_id", partner.ID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Partner status updated", "partner_id", partner.ID, "status", status)
	return connect.NewResponse(&api.UpdatePartnerStatusResponse{Partner: toAPIPartner(partner)}), nil
}

// DeletePartner removes a partner. Existing expenses keep their shares.
func (s *PartnerService) DeletePartner(ctx context.Context, req *connect.Request[api.DeletePartnerRequest]) (*connect.Response[api.DeletePartnerResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, ErrAuthRequired)
	}

	partner, err := s.ownedPartner(ctx, userID, req.Msg.PartnerID)
	if err != nil {
		return nil, connectError(err)
	}
	if err := s.store.DeletePartner(ctx, partner.ID); err != nil {
		s.logger.Error("DeletePartner failed", "partner_id", partner.ID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Partner deleted", "partner_id", partner.ID, "user_id", userID)
	return connect.NewResponse(&api.DeletePartnerResponse{}), nil
}

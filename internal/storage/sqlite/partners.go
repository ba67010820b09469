package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitpartner/internal/models"
)

// CreatePartner persists a new partner invitation.
func (s *SQLiteStore) CreatePartner(ctx context.Context, partner *models.Partner) error {
	// Generate ID if not set
	if partner.ID == "" {
		partner.ID = uuid.New().String()
	}
	if partner.CreatedAt == 0 {
		partner.CreatedAt = time.Now().Unix()
	}
	if partner.UpdatedAt == 0 {
		partner.UpdatedAt = partner.CreatedAt
	}
	if partner.Status == "" {
		partner.Status = models.PartnerStatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO partners (id, owner_user_id, name, email, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		partner.ID, partner.OwnerUserID, partner.Name, partner.Email,
		string(partner.Status), partner.CreatedAt, partner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert partner: %w", err)
	}

	return nil
}

// GetPartner retrieves a partner by ID.
func (s *SQLiteStore) GetPartner(ctx context.Context, partnerID string) (*models.Partner, error) {
	partner := &models.Partner{}
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_user_id, name, email, status, created_at, updated_at
		 FROM partners WHERE id = ?`,
		partnerID,
	).Scan(&partner.ID, &partner.OwnerUserID, &partner.Name, &partner.Email,
		&status, &partner.CreatedAt, &partner.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, notFound("partner", partnerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	partner.Status = models.PartnerStatus(status)
	return partner, nil
}

// UpdatePartner updates a partner's name, email and status.
func (s *SQLiteStore) UpdatePartner(ctx context.Context, partner *models.Partner) error {
	partner.UpdatedAt = time.Now().Unix()

	result, err := s.db.ExecContext(ctx,
		`UPDATE partners SET name = ?, email = ?, status = ?, updated_at = ? WHERE id = ?`,
		partner.Name, partner.Email, string(partner.Status), partner.UpdatedAt, partner.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return notFound("partner", partner.ID)
	}

	return nil
}

// DeletePartner removes a partner by ID.
// Existing expense splits keep the partner's ID and name.
func (s *SQLiteStore) DeletePartner(ctx context.Context, partnerID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM partners WHERE id = ?", partnerID)
	if err != nil {
		return fmt.Errorf("failed to delete partner: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return notFound("partner", partnerID)
	}

	return nil
}

// ListPartnersByOwner retrieves the owner's partners in invitation order.
func (s *SQLiteStore) ListPartnersByOwner(ctx context.Context, ownerUserID string, status models.PartnerStatus) ([]*models.Partner, error) {
	query := `SELECT id, owner_user_id, name, email, status, created_at, updated_at
		 FROM partners WHERE owner_user_id = ?`
	args := []interface{}{ownerUserID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []*models.Partner
	for rows.Next() {
		partner := &models.Partner{}
		var status string
		if err := rows.Scan(&partner.ID, &partner.OwnerUserID, &partner.Name, &partner.Email,
			&status, &partner.CreatedAt, &partner.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partner.Status = models.PartnerStatus(status)
		partners = append(partners, partner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate partners: %w", err)
	}

	return partners, nil
}

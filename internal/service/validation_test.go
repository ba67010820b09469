package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitpartner/pkg/api"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name      string
		msg       any
		wantErr   error
		wantField string
	}{
		{"valid invite", &api.InvitePartnerRequest{Name: "Bruno", Email: "bruno@example.com"}, nil, ""},
		{"invite without name", &api.InvitePartnerRequest{Email: "bruno@example.com"}, ErrFieldRequired, "'name'"},
		{"invite with bad email", &api.InvitePartnerRequest{Name: "Bruno", Email: "bruno"}, ErrFieldEmail, "'email'"},
		{"valid expense", &api.CreateExpenseRequest{Description: "Rent", Amount: 10}, nil, ""},
		{"expense without description", &api.CreateExpenseRequest{Amount: 10}, ErrFieldRequired, "'description'"},
		{"expense with zero amount", &api.CreateExpenseRequest{Description: "Rent"}, ErrFieldGreaterThan, "'amount'"},
		{"update with negative amount", &api.UpdateExpenseRequest{ExpenseID: "e1", Amount: -1}, ErrFieldGreaterThanOrEqual, "'amount'"},
		{"update without id", &api.UpdateExpenseRequest{}, ErrFieldRequired, "'expense_id'"},
		{"register with bad email", &api.RegisterRequest{Email: "x", DisplayName: "Ana"}, ErrFieldEmail, "'email'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.msg)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidationFailed))
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

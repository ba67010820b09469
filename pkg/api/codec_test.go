package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestCodec_PlainStruct(t *testing.T) {
	c := Codec{}
	data, err := c.Marshal(&TogglePaymentRequest{ExpenseID: "e1", ParticipantID: "p1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"expense_id":"e1","participant_id":"p1"}`, string(data))

	var got TogglePaymentRequest
	require.NoError(t, c.Unmarshal(data, &got))
	assert.Equal(t, "p1", got.ParticipantID)
}

func TestCodec_ProtoMessage(t *testing.T) {
	c := Codec{}
	data, err := c.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	require.NoError(t, c.Unmarshal(data, &emptypb.Empty{}))
	require.NoError(t, c.Unmarshal(nil, &emptypb.Empty{}))
}

func TestCodec_RejectsMalformed(t *testing.T) {
	var got GetExpenseRequest
	assert.Error(t, Codec{}.Unmarshal([]byte(`{"expense_id":`), &got))
}

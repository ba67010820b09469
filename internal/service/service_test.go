package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpartner/internal/events"
	"github.com/mmynk/splitpartner/internal/middleware"
	"github.com/mmynk/splitpartner/internal/storage/sqlite"
	"github.com/mmynk/splitpartner/pkg/api"
	"github.com/mmynk/splitpartner/pkg/api/apiconnect"
)

const (
	testUserID   = "u1"
	testUserName = "Ana"
	// testUserHeader switches the acting user for one request.
	testUserHeader = "X-Test-User"
)

// testAuthInterceptor sets a test identity in the context for unary and
// streaming calls. The user defaults to testUserID.
type testAuthInterceptor struct{}

func (testAuthInterceptor) identity(ctx context.Context, h http.Header) context.Context {
	userID := h.Get(testUserHeader)
	name := userID
	if userID == "" {
		userID, name = testUserID, testUserName
	}
	return middleware.WithIdentity(ctx, userID, userID+"@example.com", name)
}

func (i testAuthInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return next(i.identity(ctx, req.Header()), req)
	}
}

func (testAuthInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i testAuthInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		return next(i.identity(ctx, conn.RequestHeader()), conn)
	}
}

type testClients struct {
	expenses *apiconnect.ExpenseServiceClient
	partners *apiconnect.PartnerServiceClient
	hub      *events.Hub
	store    *sqlite.SQLiteStore
}

// setupTestServer creates a test server backed by a temporary SQLite database.
func setupTestServer(t *testing.T, opts ExpenseOptions) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	hub := events.NewHub(16, nil)
	authInterceptor := connect.WithInterceptors(testAuthInterceptor{})

	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(NewExpenseService(store, hub, opts, nil), authInterceptor)
	partnerPath, partnerHandler := apiconnect.NewPartnerServiceHandler(NewPartnerService(store, nil), authInterceptor)

	mux := http.NewServeMux()
	mux.Handle(expensePath, expenseHandler)
	mux.Handle(partnerPath, partnerHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testClients{
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		partners: apiconnect.NewPartnerServiceClient(http.DefaultClient, server.URL),
		hub:      hub,
		store:    store,
	}
}

// addPartner invites a partner for the default test user and sets its status.
func (c *testClients) addPartner(t *testing.T, name, status string) *api.Partner {
	t.Helper()
	ctx := context.Background()

	resp, err := c.partners.InvitePartner(ctx, connect.NewRequest(&api.InvitePartnerRequest{
		Name:  name,
		Email: name + "@example.com",
	}))
	if err != nil {
		t.Fatalf("InvitePartner failed: %v", err)
	}
	if status == "pending" {
		return resp.Msg.Partner
	}

	updated, err := c.partners.UpdatePartnerStatus(ctx, connect.NewRequest(&api.UpdatePartnerStatusRequest{
		PartnerID: resp.Msg.Partner.ID,
		Status:    status,
	}))
	if err != nil {
		t.Fatalf("UpdatePartnerStatus failed: %v", err)
	}
	return updated.Msg.Partner
}

func (c *testClients) createExpense(t *testing.T, req *api.CreateExpenseRequest) *api.Expense {
	t.Helper()
	resp, err := c.expenses.CreateExpense(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func asUser(req interface{ Header() http.Header }, userID string) {
	req.Header().Set(testUserHeader, userID)
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

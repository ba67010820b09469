package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/splitpartner/pkg/api"
)

const (
	ExpenseServiceCreateExpenseProcedure          = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceGetExpenseProcedure             = "/" + ExpenseServiceName + "/GetExpense"
	ExpenseServiceUpdateExpenseProcedure          = "/" + ExpenseServiceName + "/UpdateExpense"
	ExpenseServiceUpdateSplitPercentagesProcedure = "/" + ExpenseServiceName + "/UpdateSplitPercentages"
	ExpenseServiceTogglePaymentProcedure          = "/" + ExpenseServiceName + "/TogglePayment"
	ExpenseServiceDeleteExpenseProcedure          = "/" + ExpenseServiceName + "/DeleteExpense"
	ExpenseServiceListExpensesProcedure           = "/" + ExpenseServiceName + "/ListExpenses"
	ExpenseServiceGetDashboardProcedure           = "/" + ExpenseServiceName + "/GetDashboard"
	ExpenseServiceWatchExpensesProcedure          = "/" + ExpenseServiceName + "/WatchExpenses"
)

// ExpenseServiceHandler is implemented by the server side of ExpenseService.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	UpdateSplitPercentages(context.Context, *connect.Request[api.UpdateSplitPercentagesRequest]) (*connect.Response[api.UpdateSplitPercentagesResponse], error)
	TogglePayment(context.Context, *connect.Request[api.TogglePaymentRequest]) (*connect.Response[api.TogglePaymentResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetDashboard(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.GetDashboardResponse], error)
	WatchExpenses(context.Context, *connect.Request[emptypb.Empty], *connect.ServerStream[api.ExpenseEvent]) error
}

// NewExpenseServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	handlers := map[string]http.Handler{
		ExpenseServiceCreateExpenseProcedure:          connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opt),
		ExpenseServiceGetExpenseProcedure:             connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opt),
		ExpenseServiceUpdateExpenseProcedure:          connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opt),
		ExpenseServiceUpdateSplitPercentagesProcedure: connect.NewUnaryHandler(ExpenseServiceUpdateSplitPercentagesProcedure, svc.UpdateSplitPercentages, opt),
		ExpenseServiceTogglePaymentProcedure:          connect.NewUnaryHandler(ExpenseServiceTogglePaymentProcedure, svc.TogglePayment, opt),
		ExpenseServiceDeleteExpenseProcedure:          connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opt),
		ExpenseServiceListExpensesProcedure:           connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opt),
		ExpenseServiceGetDashboardProcedure:           connect.NewUnaryHandler(ExpenseServiceGetDashboardProcedure, svc.GetDashboard, opt),
		ExpenseServiceWatchExpensesProcedure:          connect.NewServerStreamHandler(ExpenseServiceWatchExpensesProcedure, svc.WatchExpenses, opt),
	}

	return "/" + ExpenseServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// ExpenseServiceClient calls ExpenseService.
type ExpenseServiceClient struct {
	create           *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	get              *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	update           *connect.Client[api.UpdateExpenseRequest, api.UpdateExpenseResponse]
	updatePercentage *connect.Client[api.UpdateSplitPercentagesRequest, api.UpdateSplitPercentagesResponse]
	togglePayment    *connect.Client[api.TogglePaymentRequest, api.TogglePaymentResponse]
	remove           *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	list             *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	dashboard        *connect.Client[emptypb.Empty, api.GetDashboardResponse]
	watch            *connect.Client[emptypb.Empty, api.ExpenseEvent]
}

// NewExpenseServiceClient creates a client for the server at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &ExpenseServiceClient{
		create:           connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opt),
		get:              connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opt),
		update:           connect.NewClient[api.UpdateExpenseRequest, api.UpdateExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opt),
		updatePercentage: connect.NewClient[api.UpdateSplitPercentagesRequest, api.UpdateSplitPercentagesResponse](httpClient, baseURL+ExpenseServiceUpdateSplitPercentagesProcedure, opt),
		togglePayment:    connect.NewClient[api.TogglePaymentRequest, api.TogglePaymentResponse](httpClient, baseURL+ExpenseServiceTogglePaymentProcedure, opt),
		remove:           connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opt),
		list:             connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opt),
		dashboard:        connect.NewClient[emptypb.Empty, api.GetDashboardResponse](httpClient, baseURL+ExpenseServiceGetDashboardProcedure, opt),
		watch:            connect.NewClient[emptypb.Empty, api.ExpenseEvent](httpClient, baseURL+ExpenseServiceWatchExpensesProcedure, opt),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	return c.update.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) UpdateSplitPercentages(ctx context.Context, req *connect.Request[api.UpdateSplitPercentagesRequest]) (*connect.Response[api.UpdateSplitPercentagesResponse], error) {
	return c.updatePercentage.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) TogglePayment(ctx context.Context, req *connect.Request[api.TogglePaymentRequest]) (*connect.Response[api.TogglePaymentResponse], error) {
	return c.togglePayment.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.remove.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetDashboard(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.GetDashboardResponse], error) {
	return c.dashboard.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) WatchExpenses(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.ServerStreamForClient[api.ExpenseEvent], error) {
	return c.watch.CallServerStream(ctx, req)
}

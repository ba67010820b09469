package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpartner/pkg/api"
)

const (
	PartnerServiceInvitePartnerProcedure       = "/" + PartnerServiceName + "/InvitePartner"
	PartnerServiceListPartnersProcedure        = "/" + PartnerServiceName + "/ListPartners"
	PartnerServiceUpdatePartnerStatusProcedure = "/" + PartnerServiceName + "/UpdatePartnerStatus"
	PartnerServiceDeletePartnerProcedure       = "/" + PartnerServiceName + "/DeletePartner"
)

// PartnerServiceHandler is implemented by the server side of PartnerService.
type PartnerServiceHandler interface {
	InvitePartner(context.Context, *connect.Request[api.InvitePartnerRequest]) (*connect.Response[api.InvitePartnerResponse], error)
	ListPartners(context.Context, *connect.Request[api.ListPartnersRequest]) (*connect.Response[api.ListPartnersResponse], error)
	UpdatePartnerStatus(context.Context, *connect.Request[api.UpdatePartnerStatusRequest]) (*connect.Response[api.UpdatePartnerStatusResponse], error)
	DeletePartner(context.Context, *connect.Request[api.DeletePartnerRequest]) (*connect.Response[api.DeletePartnerResponse], error)
}

// NewPartnerServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewPartnerServiceHandler(svc PartnerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	invite := connect.NewUnaryHandler(PartnerServiceInvitePartnerProcedure, svc.InvitePartner, opt)
	list := connect.NewUnaryHandler(PartnerServiceListPartnersProcedure, svc.ListPartners, opt)
	updateStatus := connect.NewUnaryHandler(PartnerServiceUpdatePartnerStatusProcedure, svc.UpdatePartnerStatus, opt)
	remove := connect.NewUnaryHandler(PartnerServiceDeletePartnerProcedure, svc.DeletePartner, opt)

	return "/" + PartnerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PartnerServiceInvitePartnerProcedure:
			invite.ServeHTTP(w, r)
		case PartnerServiceListPartnersProcedure:
			list.ServeHTTP(w, r)
		case PartnerServiceUpdatePartnerStatusProcedure:
			updateStatus.ServeHTTP(w, r)
		case PartnerServiceDeletePartnerProcedure:
			remove.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// PartnerServiceClient calls PartnerService.
type PartnerServiceClient struct {
	invite       *connect.Client[api.InvitePartnerRequest, api.InvitePartnerResponse]
	list         *connect.Client[api.ListPartnersRequest, api.ListPartnersResponse]
	updateStatus *connect.Client[api.UpdatePartnerStatusRequest, api.UpdatePartnerStatusResponse]
	remove       *connect.Client[api.DeletePartnerRequest, api.DeletePartnerResponse]
}

// NewPartnerServiceClient creates a client for the server at baseURL.
func NewPartnerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PartnerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &PartnerServiceClient{
		invite:       connect.NewClient[api.InvitePartnerRequest, api.InvitePartnerResponse](httpClient, baseURL+PartnerServiceInvitePartnerProcedure, opt),
		list:         connect.NewClient[api.ListPartnersRequest, api.ListPartnersResponse](httpClient, baseURL+PartnerServiceListPartnersProcedure, opt),
		updateStatus: connect.NewClient[api.UpdatePartnerStatusRequest, api.UpdatePartnerStatusResponse](httpClient, baseURL+PartnerServiceUpdatePartnerStatusProcedure, opt),
		remove:       connect.NewClient[api.DeletePartnerRequest, api.DeletePartnerResponse](httpClient, baseURL+PartnerServiceDeletePartnerProcedure, opt),
	}
}

func (c *PartnerServiceClient) InvitePartner(ctx context.Context, req *connect.Request[api.InvitePartnerRequest]) (*connect.Response[api.InvitePartnerResponse], error) {
	return c.invite.CallUnary(ctx, req)
}

func (c *PartnerServiceClient) ListPartners(ctx context.Context, req *connect.Request[api.ListPartnersRequest]) (*connect.Response[api.ListPartnersResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *PartnerServiceClient) UpdatePartnerStatus(ctx context.Context, req *connect.Request[api.UpdatePartnerStatusRequest]) (*connect.Response[api.UpdatePartnerStatusResponse], error) {
	return c.updateStatus.CallUnary(ctx, req)
}

func (c *PartnerServiceClient) DeletePartner(ctx context.Context, req *connect.Request[api.DeletePartnerRequest]) (*connect.Response[api.DeletePartnerResponse], error) {
	return c.remove.CallUnary(ctx, req)
}

// Package apiconnect wires the splitpartner services to Connect handlers
// and typed clients.
package apiconnect

import (
	"connectrpc.com/connect"

	"github.com/mmynk/splitpartner/pkg/api"
)

const (
	AuthServiceName    = "splitpartner.v1.AuthService"
	PartnerServiceName = "splitpartner.v1.PartnerService"
	ExpenseServiceName = "splitpartner.v1.ExpenseService"
)

// handlerOptions puts the JSON codec ahead of caller options.
func handlerOptions(opts []connect.HandlerOption) connect.HandlerOption {
	return connect.WithHandlerOptions(append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)...)
}

// clientOptions puts the JSON codec ahead of caller options.
func clientOptions(opts []connect.ClientOption) connect.ClientOption {
	return connect.WithClientOptions(append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)...)
}

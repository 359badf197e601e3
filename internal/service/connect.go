package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "iuran.v1.AuthService"
	// DashboardServiceName is the fully-qualified name of the DashboardService service.
	DashboardServiceName = "iuran.v1.DashboardService"
)

const (
	AuthServiceLoginProcedure                = "/iuran.v1.AuthService/Login"
	DashboardServiceFetchDetailProcedure     = "/iuran.v1.DashboardService/FetchDetail"
	DashboardServiceGetSnapshotProcedure     = "/iuran.v1.DashboardService/GetSnapshot"
	DashboardServiceProposeCheckoutProcedure = "/iuran.v1.DashboardService/ProposeCheckout"
	DashboardServiceConfirmCheckoutProcedure = "/iuran.v1.DashboardService/ConfirmCheckout"
	DashboardServiceCancelCheckoutProcedure  = "/iuran.v1.DashboardService/CancelCheckout"
	DashboardServiceEndSessionProcedure      = "/iuran.v1.DashboardService/EndSession"
)

// AuthServiceHandler is implemented by *AuthService.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
}

// DashboardServiceHandler is implemented by *DashboardService.
type DashboardServiceHandler interface {
	FetchDetail(context.Context, *connect.Request[FetchDetailRequest]) (*connect.Response[FetchDetailResponse], error)
	GetSnapshot(context.Context, *connect.Request[GetSnapshotRequest]) (*connect.Response[GetSnapshotResponse], error)
	ProposeCheckout(context.Context, *connect.Request[ProposeCheckoutRequest]) (*connect.Response[ProposeCheckoutResponse], error)
	ConfirmCheckout(context.Context, *connect.Request[ConfirmCheckoutRequest]) (*connect.Response[ConfirmCheckoutResponse], error)
	CancelCheckout(context.Context, *connect.Request[CancelCheckoutRequest]) (*connect.Response[CancelCheckoutResponse], error)
	EndSession(context.Context, *connect.Request[EndSessionRequest]) (*connect.Response[EndSessionResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	return route("/"+AuthServiceName+"/", map[string]http.Handler{
		AuthServiceLoginProcedure: connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...),
	})
}

// NewDashboardServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewDashboardServiceHandler(svc DashboardServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	return route("/"+DashboardServiceName+"/", map[string]http.Handler{
		DashboardServiceFetchDetailProcedure:     connect.NewUnaryHandler(DashboardServiceFetchDetailProcedure, svc.FetchDetail, opts...),
		DashboardServiceGetSnapshotProcedure:     connect.NewUnaryHandler(DashboardServiceGetSnapshotProcedure, svc.GetSnapshot, opts...),
		DashboardServiceProposeCheckoutProcedure: connect.NewUnaryHandler(DashboardServiceProposeCheckoutProcedure, svc.ProposeCheckout, opts...),
		DashboardServiceConfirmCheckoutProcedure: connect.NewUnaryHandler(DashboardServiceConfirmCheckoutProcedure, svc.ConfirmCheckout, opts...),
		DashboardServiceCancelCheckoutProcedure:  connect.NewUnaryHandler(DashboardServiceCancelCheckoutProcedure, svc.CancelCheckout, opts...),
		DashboardServiceEndSessionProcedure:      connect.NewUnaryHandler(DashboardServiceEndSessionProcedure, svc.EndSession, opts...),
	})
}

func route(prefix string, procedures map[string]http.Handler) (string, http.Handler) {
	return prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := procedures[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// AuthServiceClient is a client for the iuran.v1.AuthService service.
type AuthServiceClient interface {
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
}

// DashboardServiceClient is a client for the iuran.v1.DashboardService service.
type DashboardServiceClient interface {
	FetchDetail(context.Context, *connect.Request[FetchDetailRequest]) (*connect.Response[FetchDetailResponse], error)
	GetSnapshot(context.Context, *connect.Request[GetSnapshotRequest]) (*connect.Response[GetSnapshotResponse], error)
	ProposeCheckout(context.Context, *connect.Request[ProposeCheckoutRequest]) (*connect.Response[ProposeCheckoutResponse], error)
	ConfirmCheckout(context.Context, *connect.Request[ConfirmCheckoutRequest]) (*connect.Response[ConfirmCheckoutResponse], error)
	CancelCheckout(context.Context, *connect.Request[CancelCheckoutRequest]) (*connect.Response[CancelCheckoutResponse], error)
	EndSession(context.Context, *connect.Request[EndSessionRequest]) (*connect.Response[EndSessionResponse], error)
}

// NewAuthServiceClient constructs a client for the iuran.v1.AuthService
// service. baseURL is the server root, e.g. "http://localhost:8080".
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	return &authServiceClient{
		login: connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
	}
}

type authServiceClient struct {
	login *connect.Client[LoginRequest, LoginResponse]
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// NewDashboardServiceClient constructs a client for the
// iuran.v1.DashboardService service.
func NewDashboardServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DashboardServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	return &dashboardServiceClient{
		fetchDetail:     connect.NewClient[FetchDetailRequest, FetchDetailResponse](httpClient, baseURL+DashboardServiceFetchDetailProcedure, opts...),
		getSnapshot:     connect.NewClient[GetSnapshotRequest, GetSnapshotResponse](httpClient, baseURL+DashboardServiceGetSnapshotProcedure, opts...),
		proposeCheckout: connect.NewClient[ProposeCheckoutRequest, ProposeCheckoutResponse](httpClient, baseURL+DashboardServiceProposeCheckoutProcedure, opts...),
		confirmCheckout: connect.NewClient[ConfirmCheckoutRequest, ConfirmCheckoutResponse](httpClient, baseURL+DashboardServiceConfirmCheckoutProcedure, opts...),
		cancelCheckout:  connect.NewClient[CancelCheckoutRequest, CancelCheckoutResponse](httpClient, baseURL+DashboardServiceCancelCheckoutProcedure, opts...),
		endSession:      connect.NewClient[EndSessionRequest, EndSessionResponse](httpClient, baseURL+DashboardServiceEndSessionProcedure, opts...),
	}
}

type dashboardServiceClient struct {
	fetchDetail     *connect.Client[FetchDetailRequest, FetchDetailResponse]
	getSnapshot     *connect.Client[GetSnapshotRequest, GetSnapshotResponse]
	proposeCheckout *connect.Client[ProposeCheckoutRequest, ProposeCheckoutResponse]
	confirmCheckout *connect.Client[ConfirmCheckoutRequest, ConfirmCheckoutResponse]
	cancelCheckout  *connect.Client[CancelCheckoutRequest, CancelCheckoutResponse]
	endSession      *connect.Client[EndSessionRequest, EndSessionResponse]
}

func (c *dashboardServiceClient) FetchDetail(ctx context.Context, req *connect.Request[FetchDetailRequest]) (*connect.Response[FetchDetailResponse], error) {
	return c.fetchDetail.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) GetSnapshot(ctx context.Context, req *connect.Request[GetSnapshotRequest]) (*connect.Response[GetSnapshotResponse], error) {
	return c.getSnapshot.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) ProposeCheckout(ctx context.Context, req *connect.Request[ProposeCheckoutRequest]) (*connect.Response[ProposeCheckoutResponse], error) {
	return c.proposeCheckout.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) ConfirmCheckout(ctx context.Context, req *connect.Request[ConfirmCheckoutRequest]) (*connect.Response[ConfirmCheckoutResponse], error) {
	return c.confirmCheckout.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) CancelCheckout(ctx context.Context, req *connect.Request[CancelCheckoutRequest]) (*connect.Response[CancelCheckoutResponse], error) {
	return c.cancelCheckout.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) EndSession(ctx context.Context, req *connect.Request[EndSessionRequest]) (*connect.Response[EndSessionResponse], error) {
	return c.endSession.CallUnary(ctx, req)
}

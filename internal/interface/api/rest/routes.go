package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	RouteFiles        = RouteApiV1 + "/files"
	RouteFile         = RouteFiles + "/:token"
	RouteFileDownload = RouteFile + "/download"
	RouteFileStats    = RouteFile + "/stats"
	RouteFileHistory  = RouteFile + "/history"

	// admin
	RouteAdmin        = RouteApiV1 + "/admin"
	RouteAdminPolicy  = RouteAdmin + "/policy"
	RouteAdminCleanup = RouteAdmin + "/cleanup"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)

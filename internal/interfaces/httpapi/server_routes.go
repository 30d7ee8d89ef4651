package httpapi

import "net/http"

type routeGuard func(http.HandlerFunc) http.Handler

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler, auth routeGuard) {
	mux.Handle("GET /v1/window", auth(handler.GetWindow))
	mux.Handle("GET /v1/fixtures", auth(handler.ListFixtures))
	mux.Handle("GET /v1/picks/options", auth(handler.ListPickOptions))
	mux.Handle("GET /v1/picks/me", auth(handler.ListMyPicks))
	mux.Handle("POST /v1/picks", auth(handler.SubmitPicks))
	mux.Handle("GET /v1/leaderboard", auth(handler.GetLeaderboard))
	mux.Handle("GET /v1/results", auth(handler.GetResults))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, admin routeGuard) {
	mux.Handle("POST /v1/admin/fixtures/import", admin(handler.ImportFixtures))
	mux.Handle("POST /v1/admin/fixtures", admin(handler.UpsertFixtures))
	mux.Handle("POST /v1/admin/results/ingest", admin(handler.IngestResults))
	mux.Handle("POST /v1/admin/window/reset", admin(handler.ResetWindow))
	mux.Handle("GET /v1/admin/selections", admin(handler.ListSelections))
}

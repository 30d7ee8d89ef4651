package httpapi

import (
	"net/http"

	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

type RouterConfig struct {
	Verifier           TokenVerifier
	Registrar          PlayerRegistrar
	Logger             *logging.Logger
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
}

func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	auth := func(next http.HandlerFunc) http.Handler {
		return RequireAuth(cfg.Verifier, cfg.Registrar, logger, next)
	}
	admin := func(next http.HandlerFunc) http.Handler {
		return RequireAuth(cfg.Verifier, cfg.Registrar, logger, RequirePrivileged(next))
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.SwaggerEnabled)
	registerPlayerRoutes(mux, handler, auth)
	registerAdminRoutes(mux, handler, admin)

	return RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

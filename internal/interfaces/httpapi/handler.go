package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/nfl-pickem/internal/domain/player"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

type Handler struct {
	windowService      *usecase.WindowService
	fixtureService     *usecase.FixtureService
	submissionService  *usecase.SubmissionService
	leaderboardService *usecase.LeaderboardService
	ingestionService   *usecase.ResultIngestionService
	location           *time.Location
	logger             *logging.Logger
	validator          *validator.Validate
}

type HandlerDeps struct {
	Windows     *usecase.WindowService
	Fixtures    *usecase.FixtureService
	Submissions *usecase.SubmissionService
	Leaderboard *usecase.LeaderboardService
	Ingestion   *usecase.ResultIngestionService
	Logger      *logging.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	location := time.UTC
	if deps.Windows != nil {
		location = deps.Windows.Rules().Location
	}

	return &Handler{
		windowService:      deps.Windows,
		fixtureService:     deps.Fixtures,
		submissionService:  deps.Submissions,
		leaderboardService: deps.Leaderboard,
		ingestionService:   deps.Ingestion,
		location:           location,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func requirePrincipal(ctx context.Context) (player.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return player.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

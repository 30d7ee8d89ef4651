package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	rows, err := h.leaderboardService.Leaderboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	if rows == nil {
		rows = []usecase.LeaderboardRow{}
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetResults")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	preview := false
	if raw := strings.TrimSpace(r.URL.Query().Get("preview")); raw != "" {
		preview, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: preview must be a boolean", usecase.ErrInvalidInput))
			return
		}
	}

	board, err := h.leaderboardService.ResultsBoard(ctx, usecase.Viewer{
		PlayerID:   principal.PlayerID,
		Privileged: principal.Privileged,
	}, preview)
	if errors.Is(err, usecase.ErrResultsNotPublished) {
		writeSuccess(ctx, w, http.StatusOK, resultsBoardToDTO(usecase.ResultsBoard{}))
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "get results board failed", "player_id", principal.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultsBoardToDTO(board))
}

func (h *Handler) IngestResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestResults")
	defer span.End()

	report, err := h.ingestionService.IngestActiveWindow(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "ingest results failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ingestReportDTO{
		IngestReport: report,
		Week:         weekLabel(report.Week),
	})
}

func (h *Handler) ListSelections(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSelections")
	defer span.End()

	counts, err := h.leaderboardService.SelectionsSummary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list selections failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	if counts == nil {
		counts = []usecase.SelectionCount{}
	}

	writeSuccess(ctx, w, http.StatusOK, counts)
}

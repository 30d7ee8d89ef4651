package httpapi

import (
	"net/http"

	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

func (h *Handler) ListPickOptions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPickOptions")
	defer span.End()

	options, err := h.submissionService.PickOptions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list pick options failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]pickOptionDTO, 0, len(options))
	for _, option := range options {
		items = append(items, pickOptionToDTO(option))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMyPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPicks")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.submissionService.MyPicks(ctx, principal.PlayerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list my picks failed", "player_id", principal.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]myPickDTO, 0, len(picks))
	for _, item := range picks {
		items = append(items, confirmedPickToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SubmitPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPicks")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPicksRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.submissionService.Submit(ctx, usecase.SubmitPicksInput{
		PlayerID:   principal.PlayerID,
		Selections: req.Selections,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit picks rejected", "player_id", principal.PlayerID, "selections", len(req.Selections), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

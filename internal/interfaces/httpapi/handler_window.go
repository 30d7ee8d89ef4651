package httpapi

import "net/http"

func (h *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWindow")
	defer span.End()

	active, err := h.windowService.Active(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get active window failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, windowToDTO(active, h.location))
}

func (h *Handler) ResetWindow(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetWindow")
	defer span.End()

	active, err := h.windowService.Reset(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "reset window failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, windowToDTO(active, h.location))
}

package httpapi

import (
	"net/http"

	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	views, active, err := h.fixtureService.ListActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list fixtures failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fixtureDTO, 0, len(views))
	for _, view := range views {
		items = append(items, fixtureViewToDTO(view, h.location))
	}

	writeSuccess(ctx, w, http.StatusOK, fixturesResponse{
		Window:   windowToDTO(active, h.location),
		Fixtures: items,
	})
}

func (h *Handler) ImportFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportFixtures")
	defer span.End()

	report, err := h.fixtureService.Import(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "import fixtures failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.importReportToDTO(report))
}

func (h *Handler) UpsertFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertFixtures")
	defer span.End()

	var req manualFixturesRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.fixtureService.UpsertManual(ctx, req.toExternal())
	if err != nil {
		h.logger.WarnContext(ctx, "upsert fixtures failed", "count", len(req.Fixtures), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.importReportToDTO(report))
}

func (h *Handler) importReportToDTO(report usecase.ImportReport) importReportDTO {
	return importReportDTO{
		ImportReport: report,
		Window:       windowToDTO(report.Window, h.location),
	}
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dorozco/marketpulse-backend/api/responses"
	"github.com/dorozco/marketpulse-backend/internal/analytics"
	pkgerrors "github.com/dorozco/marketpulse-backend/pkg/errors"
	"github.com/dorozco/marketpulse-backend/pkg/logger"
)

// CategoryAnalytics serves the cached category report. The timeframe comes
// from query params: preset (7d, 30d, 90d, ytd, custom) plus RFC3339
// from/to bounds when the preset is custom.
func CategoryAnalytics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		req := analytics.Request{
			CategoryID: chi.URLParam(r, "categoryId"),
			Preset:     strings.TrimSpace(r.URL.Query().Get("preset")),
			From:       strings.TrimSpace(r.URL.Query().Get("from")),
			To:         strings.TrimSpace(r.URL.Query().Get("to")),
		}

		result, err := svc.CategoryAnalytics(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

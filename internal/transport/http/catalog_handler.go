package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/metrics"
)

// CatalogHandler serves the authoritative published quiz list as a bare JSON array.
type CatalogHandler struct {
	source  app.SummarySource
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewCatalogHandler(source app.SummarySource, m *metrics.Metrics, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{source: source, metrics: m, log: log}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.metrics.CatalogRequest()
	list, err := h.source.ListSummaries(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list published quizzes")
		http.Error(w, "quiz list unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

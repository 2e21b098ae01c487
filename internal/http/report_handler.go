package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	"github.com/Jeda-Ngoding/pos-mvp/internal/report"
)

// dateLayout matches the HTML date-input format used by the report screen.
const dateLayout = "2006-01-02"

type ReportHandler struct {
	reports *report.Service
}

func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.DashboardSummary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load dashboard summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var from, to time.Time
	var err error
	if s := q.Get("start_date"); s != "" {
		from, err = time.Parse(dateLayout, s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date", "start_date must be YYYY-MM-DD")
			return
		}
	}
	if s := q.Get("end_date"); s != "" {
		to, err = time.Parse(dateLayout, s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date", "end_date must be YYYY-MM-DD")
			return
		}
	}

	page, _ := strconv.Atoi(q.Get("page"))

	result, err := h.reports.Transactions(r.Context(), from, to, page)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load transactions")
		return
	}
	if result.Orders == nil {
		result.Orders = []domain.Order{} // keep JSON as [] instead of null
	}
	respondJSON(w, http.StatusOK, result)
}

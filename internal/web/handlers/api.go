package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/recall-postcards/internal/cohort"
	"github.com/recall-postcards/internal/period"
)

// Config carries the run settings the preview endpoints echo.
type Config struct {
	AdultIntervalMonths     int
	PediatricIntervalMonths int
	PediatricThreshold      int
}

// StatsFunc reports the size of the loaded reference data.
type StatsFunc func() (prefectures, cities, areas int)

// APIHandler serves health and the mailing window preview.
type APIHandler struct {
	Config *Config
	Stats  StatsFunc
	// Now defaults to time.Now.
	Now func() time.Time
}

// HealthResponse reports liveness and reference data size.
type HealthResponse struct {
	Status      string `json:"status"`
	Prefectures int    `json:"prefectures"`
	Cities      int    `json:"cities"`
	Areas       int    `json:"areas"`
}

// WindowResponse lists the window per cohort for a date and offset.
type WindowResponse struct {
	Date    string       `json:"date"`
	Offset  int          `json:"offset"`
	Windows []CohortSpan `json:"windows"`
}

// CohortSpan is one cohort's last-visit window.
type CohortSpan struct {
	Cohort         cohort.Cohort `json:"cohort"`
	IntervalMonths int           `json:"interval_months"`
	Start          string        `json:"start"`
	End            string        `json:"end"`
	Label          string        `json:"label"`
}

// Health answers GET /healthz.
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.Stats != nil {
		resp.Prefectures, resp.Cities, resp.Areas = h.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetWindow answers GET /api/window?offset=&date=.
func (h *APIHandler) GetWindow(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		offset = n
	}
	cycle, err := period.ParseOffset(offset)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref := h.now()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		ref = d
	}

	writeJSON(w, http.StatusOK, WindowResponse{
		Date:    ref.Format("2006-01-02"),
		Offset:  offset,
		Windows: Windows(ref, cycle, h.Config),
	})
}

// Windows computes the adult and pediatric windows for ref.
func Windows(ref time.Time, offset period.CycleOffset, cfg *Config) []CohortSpan {
	spans := []CohortSpan{
		span(cohort.Adult, cfg.AdultIntervalMonths, ref, offset),
		span(cohort.Pediatric, cfg.PediatricIntervalMonths, ref, offset),
	}
	return spans
}

func span(c cohort.Cohort, interval int, ref time.Time, offset period.CycleOffset) CohortSpan {
	win := period.ComputeWindow(ref, -interval, offset)
	return CohortSpan{
		Cohort:         c,
		IntervalMonths: interval,
		Start:          win.Start.Format("2006-01-02"),
		End:            win.End.Format("2006-01-02"),
		Label:          win.Label(),
	}
}

func (h *APIHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/recall-postcards/internal/address"
	"github.com/recall-postcards/internal/metrics"
	"github.com/recall-postcards/internal/postal"
)

// SearchHandler previews address and postal code resolution.
type SearchHandler struct {
	Resolver *address.Resolver
	Metrics  *metrics.Metrics
}

// ResolveResponse echoes the input next to the resolver's answer.
type ResolveResponse struct {
	Input  string         `json:"input"`
	Result address.Result `json:"result"`
}

// PostalCodeResponse shows the normalised code, its split and the address
// the code alone resolves to.
type PostalCodeResponse struct {
	Input      string         `json:"input"`
	Normalized string         `json:"normalized"`
	Top3       string         `json:"top3"`
	Last4      string         `json:"last4"`
	Result     address.Result `json:"result"`
}

// Resolve answers GET /api/resolve?address=.
func (h *SearchHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("address")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "address parameter is required")
		return
	}

	start := time.Now()
	res := h.Resolver.Resolve(raw)
	h.Metrics.ObserveResolve(res.Outcome.String(), start)

	writeJSON(w, http.StatusOK, ResolveResponse{Input: raw, Result: res})
}

// PostalCode answers GET /api/postal-code?code=.
func (h *SearchHandler) PostalCode(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("code")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "code parameter is required")
		return
	}

	start := time.Now()
	code := postal.Normalize(raw)
	res := h.Resolver.ResolveByPostalCode(code)
	h.Metrics.ObserveResolve(res.Outcome.String(), start)

	top3, last4 := postal.Split(code)
	writeJSON(w, http.StatusOK, PostalCodeResponse{
		Input:      raw,
		Normalized: code,
		Top3:       top3,
		Last4:      last4,
		Result:     res,
	})
}

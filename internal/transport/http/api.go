package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"finlit-quiz-service/internal/locate"
	"finlit-quiz-service/internal/rates"
)

// APIHandler serves the small JSON endpoints around the quiz: currency
// conversion and location detection.
type APIHandler struct {
	rates    rates.Source
	detector *locate.Detector
}

func NewAPIHandler(source rates.Source, detector *locate.Detector) *APIHandler {
	return &APIHandler{rates: source, detector: detector}
}

type convertResponse struct {
	Base      string  `json:"base"`
	Target    string  `json:"target"`
	Amount    float64 `json:"amount"`
	Converted float64 `json:"converted"`
}

// Convert handles GET /api/convert?base=XCD&target=USD&amount=100.
func (h *APIHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if h.rates == nil {
		writeError(w, http.StatusServiceUnavailable, "currency conversion is not configured")
		return
	}
	base := r.URL.Query().Get("base")
	target := r.URL.Query().Get("target")
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must be a non-negative number")
		return
	}

	snapshot, err := h.rates.Latest(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch currency rates")
		return
	}
	converted, err := rates.Convert(snapshot, base, target, amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{
		Base:      base,
		Target:    target,
		Amount:    amount,
		Converted: converted,
	})
}

// changeReporter is satisfied by rates.Cache; plain sources report no deltas.
type changeReporter interface {
	Changes() map[string]float64
}

type changesResponse struct {
	Base    string             `json:"base"`
	Changes map[string]float64 `json:"changes"`
}

// Changes handles GET /api/rates/changes: rate movements for the Caribbean
// home currencies since the previous refresh.
func (h *APIHandler) Changes(w http.ResponseWriter, r *http.Request) {
	if h.rates == nil {
		writeError(w, http.StatusServiceUnavailable, "currency conversion is not configured")
		return
	}
	snapshot, err := h.rates.Latest(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch currency rates")
		return
	}

	changes := make(map[string]float64)
	if reporter, ok := h.rates.(changeReporter); ok {
		all := reporter.Changes()
		for _, code := range rates.CaribbeanCurrencies {
			if delta, ok := all[code]; ok {
				changes[code] = delta
			}
		}
	}
	writeJSON(w, http.StatusOK, changesResponse{Base: snapshot.Base, Changes: changes})
}

// Locate handles GET /api/locate?country=; the country parameter, when
// present, acts as the profile-preferred answer.
func (h *APIHandler) Locate(w http.ResponseWriter, r *http.Request) {
	loc := h.detector.Detect(r.Context(), r.URL.Query().Get("country"))
	writeJSON(w, http.StatusOK, loc)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}

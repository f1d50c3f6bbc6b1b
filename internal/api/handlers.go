package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"FXSentinel/internal/dashboard"
	"FXSentinel/internal/model"
	"FXSentinel/internal/risk"
	"FXSentinel/pkg/logger"
)

// Dashboard is the part of dashboard.Service the API needs.
type Dashboard interface {
	Evaluate(ctx context.Context, req dashboard.Request) (*dashboard.Result, error)
	Refresh()
	Instruments() []model.Instrument
	SelectedPair() string
	SelectPair(pair string) (model.Instrument, error)
	RiskParams() model.RiskParameters
	SetRiskParams(p model.RiskParameters) error
}

// Handler serves the dashboard endpoints.
type Handler struct {
	dash Dashboard
}

// NewHandler creates a new handler
func NewHandler(dash Dashboard) *Handler {
	return &Handler{dash: dash}
}

// paramsView is the JSON shape of the stored parameters.
type paramsView struct {
	Pair         string  `json:"pair"`
	SLMultiplier float64 `json:"sl_multiplier"`
	TPMultiplier float64 `json:"tp_multiplier"`
}

// paramsUpdate is a partial update; absent fields keep their value.
type paramsUpdate struct {
	Pair         *string  `json:"pair"`
	SLMultiplier *float64 `json:"sl_multiplier"`
	TPMultiplier *float64 `json:"tp_multiplier"`
}

// GetDashboard handles GET /api/v1/dashboard?pair=&sl=&tp=
// Query values are persisted before evaluating.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	upd := paramsUpdate{}
	if v := q.Get("pair"); v != "" {
		upd.Pair = &v
	}
	for key, dst := range map[string]**float64{"sl": &upd.SLMultiplier, "tp": &upd.TPMultiplier} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid "+key+" multiplier")
			return
		}
		*dst = &f
	}

	if code, err := h.apply(upd); err != nil {
		respondWithError(w, code, err.Error())
		return
	}

	res, err := h.dash.Evaluate(r.Context(), dashboard.Request{})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Evaluation failed")
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// ListInstruments handles GET /api/v1/instruments
func (h *Handler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	insts := h.dash.Instruments()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"instruments": insts,
		"count":       len(insts),
	})
}

// GetParams handles GET /api/v1/params
func (h *Handler) GetParams(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.view())
}

// UpdateParams handles PUT /api/v1/params
func (h *Handler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	var upd paramsUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if code, err := h.apply(upd); err != nil {
		respondWithError(w, code, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, h.view())
}

// Refresh handles POST /api/v1/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.dash.Refresh()
	logger.Info("caches cleared", logger.String("request_id", RequestID(r.Context())))
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *Handler) view() paramsView {
	rp := h.dash.RiskParams()
	return paramsView{
		Pair:         h.dash.SelectedPair(),
		SLMultiplier: rp.SLMultiplier,
		TPMultiplier: rp.TPMultiplier,
	}
}

// apply validates the whole update before storing any of it.
func (h *Handler) apply(upd paramsUpdate) (int, error) {
	rp := h.dash.RiskParams()
	if upd.SLMultiplier != nil {
		rp.SLMultiplier = *upd.SLMultiplier
	}
	if upd.TPMultiplier != nil {
		rp.TPMultiplier = *upd.TPMultiplier
	}
	riskChanged := upd.SLMultiplier != nil || upd.TPMultiplier != nil
	if riskChanged {
		if err := risk.Validate(rp); err != nil {
			return http.StatusBadRequest, err
		}
	}

	if upd.Pair != nil {
		if _, err := h.dash.SelectPair(*upd.Pair); err != nil {
			if errors.Is(err, model.ErrUnknownPair) {
				return http.StatusNotFound, err
			}
			return http.StatusInternalServerError, err
		}
	}
	if riskChanged {
		if err := h.dash.SetRiskParams(rp); err != nil {
			return http.StatusInternalServerError, err
		}
	}
	return http.StatusOK, nil
}

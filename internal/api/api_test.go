package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"FXSentinel/internal/dashboard"
	"FXSentinel/internal/model"
	"FXSentinel/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboard struct {
	pair      string
	rp        model.RiskParameters
	refreshed int
	panicky   bool
}

func newFake() *fakeDashboard {
	return &fakeDashboard{pair: "EUR/USD", rp: risk.Defaults()}
}

func (f *fakeDashboard) Evaluate(_ context.Context, req dashboard.Request) (*dashboard.Result, error) {
	if f.panicky {
		panic("boom")
	}
	return &dashboard.Result{
		Pair:   f.pair,
		Params: f.rp,
		Signal: model.MasterSignal{State: model.StateLongOnly, Title: "LONG TRADES ONLY", Severity: model.SeverityOK},
		Risk:   &model.RiskLevels{SLPips: 20 * f.rp.SLMultiplier, TPPips: 20 * f.rp.TPMultiplier},
	}, nil
}

func (f *fakeDashboard) Refresh()                        { f.refreshed++ }
func (f *fakeDashboard) Instruments() []model.Instrument { return model.DefaultInstruments }
func (f *fakeDashboard) SelectedPair() string            { return f.pair }
func (f *fakeDashboard) RiskParams() model.RiskParameters {
	return f.rp
}

func (f *fakeDashboard) SelectPair(pair string) (model.Instrument, error) {
	for _, inst := range model.DefaultInstruments {
		if strings.EqualFold(inst.DisplayName, pair) {
			f.pair = inst.DisplayName
			return inst, nil
		}
	}
	return model.Instrument{}, fmt.Errorf("%q: %w", pair, model.ErrUnknownPair)
}

func (f *fakeDashboard) SetRiskParams(p model.RiskParameters) error {
	f.rp = p
	return nil
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetDashboard_PersistsQuery(t *testing.T) {
	fake := newFake()
	h := NewRouter(fake)

	rec := do(t, h, http.MethodGet, "/api/v1/dashboard?pair=USD/JPY&sl=0.75", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dashboard.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "USD/JPY", res.Pair)
	assert.Equal(t, 15.0, res.Risk.SLPips)
	assert.Equal(t, model.StateLongOnly, res.Signal.State)

	assert.Equal(t, "USD/JPY", fake.pair)
	assert.Equal(t, 0.75, fake.rp.SLMultiplier)
	assert.Equal(t, 1.0, fake.rp.TPMultiplier)
}

func TestGetDashboard_BadInput(t *testing.T) {
	fake := newFake()
	h := NewRouter(fake)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/dashboard?sl=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/dashboard?tp=-1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/dashboard?pair=XAU/USD", "").Code)
	assert.Equal(t, risk.Defaults(), fake.rp, "rejected input is not stored")
}

func TestParams(t *testing.T) {
	fake := newFake()
	h := NewRouter(fake)

	rec := do(t, h, http.MethodPut, "/api/v1/params", `{"pair":"usd/jpy","tp_multiplier":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/params", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view paramsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, paramsView{Pair: "USD/JPY", SLMultiplier: 0.5, TPMultiplier: 2}, view)

	rec = do(t, h, http.MethodPut, "/api/v1/params", `{"sl_multiplier":0,"pair":"EUR/USD"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "USD/JPY", fake.pair, "nothing applied when validation fails")

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/api/v1/params", `{`).Code)
}

func TestInstrumentsAndRefresh(t *testing.T) {
	fake := newFake()
	h := NewRouter(fake)

	rec := do(t, h, http.MethodGet, "/api/v1/instruments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Instruments []model.Instrument `json:"instruments"`
		Count       int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "JPY=X", body.Instruments[1].Ticker)

	rec = do(t, h, http.MethodPost, "/api/v1/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fake.refreshed)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/v1/refresh", "").Code)
}

func TestMiddleware(t *testing.T) {
	fake := newFake()
	h := NewRouter(fake)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodOptions, "/api/v1/params", "").Code)

	fake.panicky = true
	rec = do(t, h, http.MethodGet, "/api/v1/dashboard", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewRouter(newFake())
	do(t, h, http.MethodGet, "/api/v1/params", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fxsentinel_http_request_duration_seconds")
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lead_scoring_backend/internal/scheduler"
	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/service"
	"lead_scoring_backend/internal/scoring/transport"
	"lead_scoring_backend/platform/apperr"
	"lead_scoring_backend/platform/httpkit"
	"lead_scoring_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var testUserID = uuid.MustParse("7a1f3c52-0d8e-4b8b-9a53-2f1c1f4b6c01")

type fakeService struct {
	calcOpts    service.CalculateOptions
	adjustDelta int
	adjustActor string
	recalcCalls int
	recalcWith  domain.ChangeReason
	err         error
}

func (f *fakeService) CalculateScore(_ context.Context, leadID uuid.UUID, opts service.CalculateOptions) (*transport.LeadScoreResponse, error) {
	f.calcOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &transport.LeadScoreResponse{LeadID: leadID, TotalScore: 95, QualificationStatus: "hot_lead"}, nil
}

func (f *fakeService) GetScore(_ context.Context, leadID uuid.UUID) (*transport.LeadScoreResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &transport.LeadScoreResponse{LeadID: leadID, TotalScore: 95}, nil
}

func (f *fakeService) AdjustScore(_ context.Context, leadID uuid.UUID, delta int, _ string, actor string) (*transport.LeadScoreResponse, error) {
	f.adjustDelta = delta
	f.adjustActor = actor
	if f.err != nil {
		return nil, f.err
	}
	return &transport.LeadScoreResponse{LeadID: leadID, TotalScore: 95 + delta, ManualAdjustment: delta}, nil
}

func (f *fakeService) ListHistory(_ context.Context, _ uuid.UUID) (*transport.HistoryResponse, error) {
	return &transport.HistoryResponse{Items: []transport.HistoryEntryResponse{}}, f.err
}

func (f *fakeService) GetAnalytics(_ context.Context, q transport.AnalyticsQuery) (*transport.AnalyticsResponse, error) {
	return &transport.AnalyticsResponse{From: q.From, To: q.To}, f.err
}

func (f *fakeService) GetConfig(_ context.Context) (*transport.ScoringConfigResponse, error) {
	return &transport.ScoringConfigResponse{}, f.err
}

func (f *fakeService) UpdateDimensionConfig(_ context.Context, dimension string, _ transport.UpdateDimensionConfigRequest, actor string) (*transport.DimensionConfigResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &transport.DimensionConfigResponse{Dimension: dimension, UpdatedBy: actor}, nil
}

func (f *fakeService) RecalculateAll(_ context.Context, reason domain.ChangeReason) (*transport.RecalculateResponse, error) {
	f.recalcCalls++
	f.recalcWith = reason
	return &transport.RecalculateResponse{Reason: string(reason)}, f.err
}

type fakeQueue struct {
	payloads []scheduler.RecalculateAllPayload
}

func (q *fakeQueue) EnqueueRecalculateAll(_ context.Context, payload scheduler.RecalculateAllPayload) error {
	q.payloads = append(q.payloads, payload)
	return nil
}

func newTestRouter(h *Handler, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if authenticated {
			c.Set(httpkit.ContextUserIDKey, testUserID)
			c.Set(httpkit.ContextRolesKey, []string{"admin"})
		}
		c.Next()
	})
	h.RegisterRoutes(engine.Group("/api/v1"))
	h.RegisterAdminRoutes(engine.Group("/api/v1/admin"), nil)
	return engine
}

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCalculateWithoutBody(t *testing.T) {
	svc := &fakeService{}
	engine := newTestRouter(New(svc, validator.New()), true)

	rec := do(engine, http.MethodPost, "/api/v1/leads/"+uuid.NewString()+"/score", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.calcOpts.Reason != domain.ReasonAutomaticCalculation || svc.calcOpts.ResetAdjustment {
		t.Fatalf("unexpected options %+v", svc.calcOpts)
	}
	if svc.calcOpts.Actor != testUserID.String() {
		t.Fatalf("expected actor %s, got %q", testUserID, svc.calcOpts.Actor)
	}
}

func TestCalculateResetAdjustment(t *testing.T) {
	svc := &fakeService{}
	engine := newTestRouter(New(svc, validator.New()), true)

	rec := do(engine, http.MethodPost, "/api/v1/leads/"+uuid.NewString()+"/score", `{"resetAdjustment":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.calcOpts.ResetAdjustment {
		t.Fatal("expected reset flag to reach the service")
	}
}

func TestInvalidLeadID(t *testing.T) {
	engine := newTestRouter(New(&fakeService{}, validator.New()), true)

	rec := do(engine, http.MethodGet, "/api/v1/leads/not-a-uuid/score", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDomainErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("lead not found"), http.StatusNotFound},
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Configuration("no active dimension"), http.StatusUnprocessableEntity},
		{apperr.Persistence("storage operation failed", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		engine := newTestRouter(New(&fakeService{err: tc.err}, validator.New()), true)
		rec := do(engine, http.MethodGet, "/api/v1/leads/"+uuid.NewString()+"/score", "")
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestAdjustValidation(t *testing.T) {
	svc := &fakeService{}
	engine := newTestRouter(New(svc, validator.New()), true)
	path := "/api/v1/leads/" + uuid.NewString() + "/score/adjustments"

	for _, body := range []string{`{}`, `{"delta":51}`, `{"delta":-51}`, `not json`} {
		rec := do(engine, http.MethodPost, path, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}

	rec := do(engine, http.MethodPost, path, `{"delta":-20,"notes":"called back"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.adjustDelta != -20 || svc.adjustActor != testUserID.String() {
		t.Fatalf("unexpected call delta=%d actor=%q", svc.adjustDelta, svc.adjustActor)
	}
}

func TestAdjustZeroDeltaAccepted(t *testing.T) {
	svc := &fakeService{adjustDelta: 99}
	engine := newTestRouter(New(svc, validator.New()), true)

	rec := do(engine, http.MethodPost, "/api/v1/leads/"+uuid.NewString()+"/score/adjustments", `{"delta":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.adjustDelta != 0 {
		t.Fatalf("expected zero delta, got %d", svc.adjustDelta)
	}
}

func TestUnauthenticatedAdjust(t *testing.T) {
	engine := newTestRouter(New(&fakeService{}, validator.New()), false)

	rec := do(engine, http.MethodPost, "/api/v1/leads/"+uuid.NewString()+"/score/adjustments", `{"delta":5}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAnalyticsQuery(t *testing.T) {
	engine := newTestRouter(New(&fakeService{}, validator.New()), true)

	rec := do(engine, http.MethodGet, "/api/v1/scoring/analytics?from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body transport.AnalyticsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.From.Year() != 2026 || body.To.Month() != 2 {
		t.Fatalf("window not forwarded: %+v", body)
	}

	rec = do(engine, http.MethodGet, "/api/v1/scoring/analytics?from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z&status=warm", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}

	rec = do(engine, http.MethodGet, "/api/v1/scoring/analytics?from=yesterday", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed window, got %d", rec.Code)
	}
}

func TestUpdateConfigPassesDimensionAndActor(t *testing.T) {
	engine := newTestRouter(New(&fakeService{}, validator.New()), true)

	rec := do(engine, http.MethodPut, "/api/v1/admin/scoring/config/budget", `{"weight":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body transport.DimensionConfigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Dimension != "budget" || body.UpdatedBy != testUserID.String() {
		t.Fatalf("unexpected response %+v", body)
	}

	rec = do(engine, http.MethodPut, "/api/v1/admin/scoring/config/budget", `{"weight":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative weight, got %d", rec.Code)
	}
}

func TestRecalculateRunsInlineWithoutQueue(t *testing.T) {
	svc := &fakeService{}
	engine := newTestRouter(New(svc, validator.New()), true)

	rec := do(engine, http.MethodPost, "/api/v1/admin/scoring/recalculate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.recalcCalls != 1 || svc.recalcWith != domain.ReasonAutomaticCalculation {
		t.Fatalf("expected one automatic run, got %d %q", svc.recalcCalls, svc.recalcWith)
	}
}

func TestRecalculateEnqueues(t *testing.T) {
	svc := &fakeService{}
	queue := &fakeQueue{}
	h := New(svc, validator.New())
	h.SetRecalculationScheduler(queue)
	engine := newTestRouter(h, true)

	rec := do(engine, http.MethodPost, "/api/v1/admin/scoring/recalculate?reason=config_update", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if svc.recalcCalls != 0 {
		t.Fatal("queued batch must not run in the request")
	}
	if len(queue.payloads) != 1 || queue.payloads[0].Reason != "config_update" || queue.payloads[0].RequestedBy != testUserID.String() {
		t.Fatalf("unexpected payloads %+v", queue.payloads)
	}

	rec = do(engine, http.MethodPost, "/api/v1/admin/scoring/recalculate?sync=true", "")
	if rec.Code != http.StatusOK || svc.recalcCalls != 1 {
		t.Fatalf("expected synchronous run, got %d calls=%d", rec.Code, svc.recalcCalls)
	}
}

func TestRecalculateRejectsManualReason(t *testing.T) {
	svc := &fakeService{}
	engine := newTestRouter(New(svc, validator.New()), true)

	rec := do(engine, http.MethodPost, "/api/v1/admin/scoring/recalculate?reason=manual_adjustment", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.recalcCalls != 0 {
		t.Fatal("service must not run for an invalid reason")
	}
}

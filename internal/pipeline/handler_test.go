package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"

	"nutrisnap-backend/internal/analyzer"
	"nutrisnap-backend/internal/meals"
	"nutrisnap-backend/internal/recent"
	"nutrisnap-backend/internal/shared/storage/kv/memory"
	"nutrisnap-backend/internal/shared/storage/object/local"
	"nutrisnap-backend/internal/uploads"
)

type scanEnv struct {
	router *gin.Engine
	meals  *meals.MemoryRepo
	caches recent.Slots
}

func newScanEnv(t *testing.T, webhook http.HandlerFunc, store MealStore) *scanEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(webhook)
	t.Cleanup(srv.Close)

	repo := meals.NewMemoryRepo()
	if store == nil {
		store = repo
	}
	caches := recent.Slots{Store: memory.New()}
	p := &Pipeline{
		Uploads:  &uploads.Service{Store: local.New(t.TempDir(), "http://localhost:8080/api/v1/media")},
		Analyzer: analyzer.NewWithHTTPClient(srv.URL, srv.Client()),
		Meals:    store,
		Caches:   caches,
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(p, caches).RegisterRoutes(r.Group("/api/v1"))
	return &scanEnv{router: r, meals: repo, caches: caches}
}

func multipartImage(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="dinner.png"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func (e *scanEnv) postScan(t *testing.T, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartImage(t, data)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func webhookJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

type scanResponse struct {
	MealID   string `json:"mealId"`
	Saved    bool   `json:"saved"`
	Outcome  string `json:"outcome"`
	ImageURL string `json:"imageUrl"`
	Analysis *struct {
		MealName string  `json:"mealName"`
		Calories float64 `json:"calories"`
	} `json:"analysis"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeScan(t *testing.T, resp *httptest.ResponseRecorder) scanResponse {
	t.Helper()
	var out scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestScanCreatesMealAndCacheEntry(t *testing.T) {
	env := newScanEnv(t, webhookJSON(`{"mealName":"Tacos","calories":540,"confidenceScore":0.9,"healthScore":6}`), nil)

	resp := env.postScan(t, []byte("png-bytes"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	out := decodeScan(t, resp)
	if !out.Saved || out.MealID == "" || out.Outcome != "identified" {
		t.Fatalf("unexpected response %+v", out)
	}
	if out.Analysis == nil || out.Analysis.MealName != "Tacos" {
		t.Fatalf("missing analysis in response")
	}

	meal, err := env.meals.GetByID(context.Background(), "user-1", out.MealID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if meal.ImageURL != out.ImageURL {
		t.Fatalf("record image url %q != %q", meal.ImageURL, out.ImageURL)
	}

	cacheResp := httptest.NewRecorder()
	env.router.ServeHTTP(cacheResp, httptest.NewRequest(http.MethodGet, "/api/v1/cache", nil))
	var entries []struct {
		ID        string `json:"id"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.NewDecoder(cacheResp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode cache: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != out.MealID || entries[0].Timestamp == 0 {
		t.Fatalf("unexpected cache %+v", entries)
	}

	clearResp := httptest.NewRecorder()
	env.router.ServeHTTP(clearResp, httptest.NewRequest(http.MethodDelete, "/api/v1/cache", nil))
	if clearResp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", clearResp.Code)
	}
	if got := env.caches.For("user-1").List(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty cache after clear, got %d", len(got))
	}
}

func TestScanAnalysisFailureIs502(t *testing.T) {
	env := newScanEnv(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}, nil)

	resp := env.postScan(t, []byte("png-bytes"))
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if out := decodeScan(t, resp); out.Error == nil || out.Error.Code != "analysis_failed" {
		t.Fatalf("unexpected body %+v", out)
	}
	if meals, _ := env.meals.ListByUser(context.Background(), "user-1", 0, 0); len(meals) != 0 {
		t.Fatalf("expected no meals, got %d", len(meals))
	}
}

func TestScanInvalidResponseIs502(t *testing.T) {
	env := newScanEnv(t, webhookJSON(`{"mealName":"Tacos"}`), nil)

	resp := env.postScan(t, []byte("png-bytes"))
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if out := decodeScan(t, resp); out.Error == nil || out.Error.Code != "invalid_analysis_response" {
		t.Fatalf("unexpected body %+v", out)
	}
}

type failingMeals struct{}

func (failingMeals) Create(context.Context, meals.Meal) (string, error) {
	return "", errors.New("insert failed")
}

func TestScanPersistFailureStillReturnsAnalysis(t *testing.T) {
	env := newScanEnv(t, webhookJSON(`{"mealName":"Unidentifiable","calories":0,"confidenceScore":0}`), failingMeals{})

	resp := env.postScan(t, []byte("png-bytes"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	out := decodeScan(t, resp)
	if out.Saved || out.Outcome != "unidentifiable" || out.Analysis == nil {
		t.Fatalf("unexpected response %+v", out)
	}
	if out.Error == nil || out.Error.Code != "save_failed" {
		t.Fatalf("expected save_failed error, got %+v", out.Error)
	}
	if got := env.caches.For("user-1").List(context.Background()); len(got) != 0 {
		t.Fatalf("expected cache untouched, got %d", len(got))
	}
}

func TestScanRequiresFile(t *testing.T) {
	env := newScanEnv(t, webhookJSON(`{}`), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", nil)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestScanEmptyFileIsSkipped(t *testing.T) {
	env := newScanEnv(t, webhookJSON(`{}`), nil)
	resp := env.postScan(t, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if out := decodeScan(t, resp); out.Outcome != "skipped" || out.Saved {
		t.Fatalf("unexpected response %+v", out)
	}
}

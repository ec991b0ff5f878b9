package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/zombar/linksaver/db"
	"github.com/zombar/linksaver/models"
)

type fakeStore struct {
	records   map[string]*models.ContentRecord
	lastUser  string
	lastList  db.ListFilter
	statsUser string
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*models.ContentRecord{}}
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.ContentRecord, error) {
	return s.records[id], nil
}

func (s *fakeStore) ListByUser(_ context.Context, userPhone string, filter db.ListFilter) ([]*models.ContentRecord, error) {
	s.lastUser = userPhone
	s.lastList = filter
	var out []*models.ContentRecord
	for _, r := range s.records {
		if r.UserPhone == userPhone {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, id string, update models.ContentUpdate) (*models.ContentRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	if update.Title != nil {
		record.Title = *update.Title
	}
	if update.Category != nil {
		record.Category = *update.Category
	}
	now := time.Now().UTC()
	record.UpdatedAt = &now
	return record, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

func (s *fakeStore) Stats(_ context.Context, userPhone string) (*models.UserStats, error) {
	s.statsUser = userPhone
	return &models.UserStats{Total: 2, CategoryCounts: map[models.Category]int{models.CategoryFood: 2}}, nil
}

func (s *fakeStore) Count(_ context.Context) (int, error) {
	return len(s.records), nil
}

type fakePipeline struct {
	gotPhone    string
	gotURL      string
	gotOverride string
	reply       string
}

func (p *fakePipeline) Process(_ context.Context, userPhone, targetURL, overrideTag string) string {
	p.gotPhone = userPhone
	p.gotURL = targetURL
	p.gotOverride = overrideTag
	return p.reply
}

func newTestServer(store *fakeStore, pipeline *fakePipeline) *Server {
	return NewServer(DefaultConfig(), store, pipeline)
}

func postWebhook(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("To", "whatsapp:+15550000000")
	form.Set("Body", body)
	form.Set("MessageSid", "SM123")

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestWebhookSavesLink(t *testing.T) {
	pipeline := &fakePipeline{reply: "[OK] Saved to *Food* [Food]"}
	s := newTestServer(newFakeStore(), pipeline)

	w := postWebhook(t, s, "https://example.com/pasta #food")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("unexpected content type %q", ct)
	}
	if pipeline.gotPhone != "+15551234567" {
		t.Errorf("expected normalized phone, got %q", pipeline.gotPhone)
	}
	if pipeline.gotURL != "https://example.com/pasta" {
		t.Errorf("unexpected url %q", pipeline.gotURL)
	}
	if pipeline.gotOverride != "food" {
		t.Errorf("unexpected override %q", pipeline.gotOverride)
	}
	if !strings.Contains(w.Body.String(), "<Message>") || !strings.Contains(w.Body.String(), "Saved to *Food*") {
		t.Errorf("expected TwiML reply, got %q", w.Body.String())
	}
}

func TestWebhookWithoutURLRepliesHelp(t *testing.T) {
	pipeline := &fakePipeline{reply: "should not be used"}
	s := newTestServer(newFakeStore(), pipeline)

	w := postWebhook(t, s, "hello")

	if pipeline.gotURL != "" {
		t.Error("pipeline must not run without a URL")
	}
	if !strings.Contains(w.Body.String(), "Send me any link") {
		t.Errorf("expected help reply, got %q", w.Body.String())
	}
}

func TestWebhookGetVerification(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakePipeline{})

	req := httptest.NewRequest(http.MethodGet, "/webhook/whatsapp", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestListRequiresUserPhone(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakePipeline{})

	req := httptest.NewRequest(http.MethodGet, "/api/content", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestListPassesFilters(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store, &fakePipeline{})

	req := httptest.NewRequest(http.MethodGet, "/api/content?user_phone=%2B1555&category=food&search=pasta&skip=5&limit=10", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.lastUser != "+1555" {
		t.Errorf("unexpected user %q", store.lastUser)
	}
	if store.lastList.Category != models.CategoryFood || store.lastList.Search != "pasta" {
		t.Errorf("unexpected filter %+v", store.lastList)
	}
	if store.lastList.Skip != 5 || store.lastList.Limit != 10 {
		t.Errorf("unexpected paging %+v", store.lastList)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %q", w.Body.String())
	}
}

func TestListRejectsUnknownCategory(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakePipeline{})

	req := httptest.NewRequest(http.MethodGet, "/api/content?user_phone=%2B1555&category=memes", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetContentNotFound(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakePipeline{})

	req := httptest.NewRequest(http.MethodGet, "/api/content/nope", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestUpdateContent(t *testing.T) {
	store := newFakeStore()
	store.records["abc"] = &models.ContentRecord{ID: "abc", UserPhone: "+1555", Category: models.CategoryOther}
	s := newTestServer(store, &fakePipeline{})

	req := httptest.NewRequest(http.MethodPatch, "/api/content/abc", strings.NewReader(`{"title": "Renamed", "category": "design"}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.records["abc"].Title != "Renamed" || store.records["abc"].Category != models.CategoryDesign {
		t.Errorf("update not applied: %+v", store.records["abc"])
	}
}

func TestUpdateRejectsUnknownCategory(t *testing.T) {
	store := newFakeStore()
	store.records["abc"] = &models.ContentRecord{ID: "abc"}
	s := newTestServer(store, &fakePipeline{})

	req := httptest.NewRequest(http.MethodPatch, "/api/content/abc", strings.NewReader(`{"category": "memes"}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDeleteContent(t *testing.T) {
	store := newFakeStore()
	store.records["abc"] = &models.ContentRecord{ID: "abc"}
	s := newTestServer(store, &fakePipeline{})

	req := httptest.NewRequest(http.MethodDelete, "/api/content/abc", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/content/abc", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store, &fakePipeline{})

	req := httptest.NewRequest(http.MethodGet, "/api/content/stats/+1555", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if store.statsUser != "+1555" {
		t.Errorf("unexpected stats user %q", store.statsUser)
	}
	if !strings.Contains(w.Body.String(), `"total":2`) {
		t.Errorf("unexpected stats body %q", w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakePipeline{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"records":0`) {
		t.Errorf("expected record count in health body, got %q", w.Body.String())
	}
}

func TestListCapsLimit(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store, &fakePipeline{})

	req := httptest.NewRequest(http.MethodGet, "/api/content?user_phone=%2B1555&limit=5000", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if store.lastList.Limit != 100 {
		t.Errorf("expected limit capped at 100, got %d", store.lastList.Limit)
	}
}

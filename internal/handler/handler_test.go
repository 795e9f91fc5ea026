package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/weddinggallery/internal/db"
	"github.com/weddinggallery/internal/service"
)

type stubPhotos struct {
	listMode  service.PhotoListMode
	listErr   error
	items     []service.PhotoSummary
	photo     *db.Photo
	getErr    error
	created   service.PhotoInput
	createErr error
	deleted   uint
	deleteErr error
	orders    []service.PhotoOrder
	orderErr  error
}

func (s *stubPhotos) List(_ context.Context, mode service.PhotoListMode) ([]service.PhotoSummary, error) {
	s.listMode = mode
	return s.items, s.listErr
}

func (s *stubPhotos) Get(_ context.Context, id uint) (*db.Photo, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.photo, nil
}

func (s *stubPhotos) Create(_ context.Context, input service.PhotoInput) (*db.Photo, error) {
	s.created = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &db.Photo{ID: 7, URL: input.URL, DisplayOrder: 1}, nil
}

func (s *stubPhotos) Delete(_ context.Context, id uint) error {
	s.deleted = id
	return s.deleteErr
}

func (s *stubPhotos) Reorder(_ context.Context, orders []service.PhotoOrder) error {
	s.orders = orders
	return s.orderErr
}

type stubVideos struct {
	id  uint
	url string
	err error
}

func (s *stubVideos) List(context.Context) ([]db.Video, error) {
	return []db.Video{{ID: 1, Title: "Церемония", DisplayOrder: 1}}, s.err
}

func (s *stubVideos) UpdateURL(_ context.Context, id uint, url string) error {
	s.id, s.url = id, url
	if id == 0 {
		return service.ErrVideoIDRequired
	}
	return s.err
}

type stubMigrator struct {
	apiKey string
	result service.MigrationResult
	err    error
}

func (s *stubMigrator) ListPending(context.Context) ([]service.PendingPhoto, error) {
	return []service.PendingPhoto{{ID: 3, URLSize: 1200}}, s.err
}

func (s *stubMigrator) MigrateOne(_ context.Context, apiKey string, photoID uint) (service.MigrationResult, error) {
	s.apiKey = apiKey
	if apiKey == "" || photoID == 0 {
		return service.MigrationResult{}, service.ErrMigrationInputRequired
	}
	return s.result, s.err
}

func newTestRouter(api *API, method string, h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.Handle(method, "/", h)
	return r
}

func serve(t *testing.T, r http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func TestGetPhotosSelectsMode(t *testing.T) {
	photos := &stubPhotos{items: []service.PhotoSummary{{ID: 1, Alt: "a", DisplayOrder: 1}}}
	api := NewAPIWithServices(photos, nil, nil, nil, zerolog.Nop())
	r := newTestRouter(api, http.MethodGet, api.GetPhotos)

	rec, body := serve(t, r, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if photos.listMode != service.PhotoListPublic {
		t.Fatalf("expected public mode")
	}
	if len(body["photos"].([]any)) != 1 {
		t.Fatalf("expected one photo, got %v", body["photos"])
	}

	serve(t, r, http.MethodGet, "/?admin=true", "")
	if photos.listMode != service.PhotoListPrivileged {
		t.Fatalf("expected privileged mode")
	}
}

func TestGetPhotoByID(t *testing.T) {
	photos := &stubPhotos{photo: &db.Photo{ID: 4, URL: "https://example.com/4.jpg"}}
	api := NewAPIWithServices(photos, nil, nil, nil, zerolog.Nop())
	r := newTestRouter(api, http.MethodGet, api.GetPhotos)

	rec, body := serve(t, r, http.MethodGet, "/?id=4", "")
	if rec.Code != http.StatusOK || body["url"] != "https://example.com/4.jpg" {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}

	rec, _ = serve(t, r, http.MethodGet, "/?id=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}

	photos.getErr = service.ErrPhotoNotFound
	rec, body = serve(t, r, http.MethodGet, "/?id=5", "")
	if rec.Code != http.StatusNotFound || body["error"] != "Photo not found" {
		t.Fatalf("expected 404, got %d %v", rec.Code, body)
	}
}

func TestDatastoreErrorsAreNotLeaked(t *testing.T) {
	photos := &stubPhotos{listErr: errors.New(`pq: relation "wedding_photos" does not exist`)}
	api := NewAPIWithServices(photos, nil, nil, nil, zerolog.Nop())
	r := newTestRouter(api, http.MethodGet, api.GetPhotos)

	rec, body := serve(t, r, http.MethodGet, "/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] != internalErrorMessage {
		t.Fatalf("expected generic error, got %v", body["error"])
	}
}

func TestCreatePhoto(t *testing.T) {
	photos := &stubPhotos{}
	api := NewAPIWithServices(photos, nil, nil, nil, zerolog.Nop())
	r := newTestRouter(api, http.MethodPost, api.CreatePhoto)

	rec, body := serve(t, r, http.MethodPost, "/", `{"url":"data:image/png;base64,AAA","alt":"свадьба"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if body["id"].(float64) != 7 || body["success"] != true {
		t.Fatalf("unexpected body %v", body)
	}
	if photos.created.Alt != "свадьба" {
		t.Fatalf("expected alt to be forwarded, got %q", photos.created.Alt)
	}

	rec, _ = serve(t, r, http.MethodPost, "/", `{"url":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}

	photos.createErr = service.ErrPhotoImageMissing
	rec, _ = serve(t, r, http.MethodPost, "/", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing url, got %d", rec.Code)
	}
}

func TestDeletePhoto(t *testing.T) {
	photos := &stubPhotos{}
	api := NewAPIWithServices(photos, nil, nil, nil, zerolog.Nop())
	r := newTestRouter(api, http.MethodDelete, api.DeletePhoto)

	rec, _ := serve(t, r, http.MethodDelete, "/", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", rec.Code)
	}

	rec, body := serve(t, r, http.MethodDelete, "/?id=12", "")
	if rec.Code != http.StatusOK || body["message"] != "Photo deleted" {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	if photos.deleted != 12 {
		t.Fatalf("expected id 12 deleted, got %d", photos.deleted)
	}
}

func TestReorderPhotos(t *testing.T) {
	photos := &stubPhotos{}
	api := NewAPIWithServices(photos, nil, nil, nil, zerolog.Nop())
	r := newTestRouter(api, http.MethodPut, api.ReorderPhotos)

	rec, _ := serve(t, r, http.MethodPut, "/", `{"orders":[{"id":3,"display_order":1},{"id":1,"display_order":2}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(photos.orders) != 2 || photos.orders[0] != (service.PhotoOrder{ID: 3, DisplayOrder: 1}) {
		t.Fatalf("unexpected orders %+v", photos.orders)
	}

	photos.orderErr = service.ErrReorderInvalid
	rec, _ = serve(t, r, http.MethodPut, "/", `{"orders":[{"display_order":1}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVideoHandlers(t *testing.T) {
	videos := &stubVideos{}
	api := NewAPIWithServices(nil, videos, nil, nil, zerolog.Nop())

	rec, body := serve(t, newTestRouter(api, http.MethodGet, api.ListVideos), http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || len(body["videos"].([]any)) != 1 {
		t.Fatalf("unexpected list response %d %v", rec.Code, body)
	}

	r := newTestRouter(api, http.MethodPut, api.UpdateVideo)
	rec, _ = serve(t, r, http.MethodPut, "/", `{"id":2,"url":"https://youtu.be/x"}`)
	if rec.Code != http.StatusOK || videos.id != 2 || videos.url != "https://youtu.be/x" {
		t.Fatalf("unexpected update %d %+v", rec.Code, videos)
	}

	rec, body = serve(t, r, http.MethodPut, "/", `{"url":"https://youtu.be/x"}`)
	if rec.Code != http.StatusBadRequest || body["error"] != "Video ID required" {
		t.Fatalf("expected 400, got %d %v", rec.Code, body)
	}
}

func TestCheckPassword(t *testing.T) {
	api := NewAPIWithServices(nil, nil, service.NewAuthService("S"), nil, zerolog.Nop())
	r := newTestRouter(api, http.MethodPost, api.CheckPassword)

	rec, body := serve(t, r, http.MethodPost, "/", `{"password":"S"}`)
	if rec.Code != http.StatusOK || body["authenticated"] != true {
		t.Fatalf("expected authenticated, got %d %v", rec.Code, body)
	}

	rec, body = serve(t, r, http.MethodPost, "/", `{"password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized || body["authenticated"] != false {
		t.Fatalf("expected 401, got %d %v", rec.Code, body)
	}
}

func TestMigrationHandlers(t *testing.T) {
	url := "https://i.ibb.co/full.png"
	migrator := &stubMigrator{result: service.MigrationResult{
		PhotoID:   3,
		Full:      service.FieldOutcome{Status: service.UploadStatusUploaded, URL: &url},
		Thumbnail: service.FieldOutcome{Status: service.UploadStatusFailed, Error: "timeout"},
	}}
	api := NewAPIWithServices(nil, nil, nil, migrator, zerolog.Nop())

	rec, body := serve(t, newTestRouter(api, http.MethodGet, api.ListPendingMigrations), http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || body["total"].(float64) != 1 {
		t.Fatalf("unexpected pending response %d %v", rec.Code, body)
	}

	r := newTestRouter(api, http.MethodPost, api.MigratePhoto)
	rec, body = serve(t, r, http.MethodPost, "/", `{"api_key":"k","photo_id":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != false || body["cdn_full_url"] != url || body["cdn_thumbnail_url"] != nil {
		t.Fatalf("unexpected migrate body %v", body)
	}
	if body["thumbnail"].(map[string]any)["error"] != "timeout" {
		t.Fatalf("expected per-field error, got %v", body["thumbnail"])
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"photo_id":3}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, "header-key")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || migrator.apiKey != "header-key" {
		t.Fatalf("expected header api key to be used, got %d %q", rr.Code, migrator.apiKey)
	}

	rec, _ = serve(t, r, http.MethodPost, "/", `{"photo_id":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without api key, got %d", rec.Code)
	}

	migrator.err = service.ErrPhotoNotFound
	rec, _ = serve(t, r, http.MethodPost, "/", `{"api_key":"k","photo_id":99}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	policy := CORSPolicy{Methods: []string{"GET", "OPTIONS"}, AllowHeaders: []string{"Content-Type"}}
	reached := false
	r := gin.New()
	r.Use(policy.Middleware())
	r.Handle(http.MethodOptions, "/", func(c *gin.Context) { reached = true })
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}
	if reached {
		t.Fatalf("preflight must not reach the handler")
	}
	if rec.Header().Get("Access-Control-Allow-Methods") != "GET, OPTIONS" {
		t.Fatalf("unexpected methods header %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin on regular responses")
	}

	if got := (CORSPolicy{}).Headers()["Access-Control-Allow-Methods"]; got != "*" {
		t.Fatalf("expected wildcard methods for empty policy, got %q", got)
	}
}

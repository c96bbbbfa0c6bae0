package resumes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resumecrack-backend/internal/resumes"
	"resumecrack-backend/internal/shared/server/middleware"
	"resumecrack-backend/internal/shared/storage/kv"
)

type testEnv struct {
	router  *gin.Engine
	objects *fakeObjectStore
	records *resumes.Store
	llm     *fakeLLM
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	objects := newFakeObjectStore()
	records := resumes.NewStore(kv.NewMemoryStore())
	client := &fakeLLM{response: validFeedbackJSON}
	pipeline := newTestPipeline(objects, &fakeRaster{}, client, records, "id-1", "id-2")
	wiper := resumes.NewWiper(objects, records)
	handler := resumes.NewHandler(pipeline, records, objects, wiper)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Identity())
	handler.RegisterRoutes(api)

	return &testEnv{router: r, objects: objects, records: records, llm: client}
}

func multipartBody(t *testing.T, fileName string, file []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(file); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func doSubmit(t *testing.T, env *testEnv) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "resume.pdf", []byte("resume body text"), map[string]string{
		"companyName":    "Acme",
		"jobTitle":       "Backend Engineer",
		"jobDescription": "Build services.",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "abc")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := doSubmit(t, env)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var record resumes.ResumeRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if record.ID == "" || record.Deleted {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.Feedback == nil {
		t.Fatalf("feedback missing from response")
	}
}

func TestSubmitEndpointRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartBody(t, "resume.pdf", []byte("x"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}

func TestSubmitEndpointRejectsMissingFile(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartBody(t, "", nil, map[string]string{"companyName": "Acme"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "abc")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestSubmitEndpointRejectsNonPDF(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartBody(t, "resume.docx", []byte("x"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "abc")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestSubmitEndpointParseFailure(t *testing.T) {
	env := newTestEnv(t)
	env.llm.response = "definitely not json"

	rec := doSubmit(t, env)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422, body %s", rec.Code, rec.Body.String())
	}
}

func TestGetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	seedRecord(t, env.records, "r1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/r1", nil)
	req.Header.Set("X-Guest-Id", "abc")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/resumes/missing", nil)
	req.Header.Set("X-Guest-Id", "abc")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestListEndpointFiltersTombstonesByDefault(t *testing.T) {
	env := newTestEnv(t)
	seedRecord(t, env.records, "r1")
	seedRecord(t, env.records, "r2")
	if _, err := env.records.SoftDelete(context.Background(), "r2"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	listLen := func(url string) int {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("X-Guest-Id", "abc")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d for %s", rec.Code, url)
		}
		var payload struct {
			Resumes []resumes.ResumeRecord `json:"resumes"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		return len(payload.Resumes)
	}

	if n := listLen("/api/v1/resumes"); n != 1 {
		t.Fatalf("default listing returned %d records, want 1", n)
	}
	if n := listLen("/api/v1/resumes?includeDeleted=true"); n != 2 {
		t.Fatalf("includeDeleted listing returned %d records, want 2", n)
	}
}

func TestDeleteEndpointTombstonesRecord(t *testing.T) {
	env := newTestEnv(t)

	rec := doSubmit(t, env)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status %d", rec.Code)
	}
	var record resumes.ResumeRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/resumes/"+record.ID, nil)
	req.Header.Set("X-Guest-Id", "abc")
	del := httptest.NewRecorder()
	env.router.ServeHTTP(del, req)
	if del.Code != http.StatusOK {
		t.Fatalf("delete status %d, body %s", del.Code, del.Body.String())
	}

	stored, err := env.records.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if !stored.Deleted {
		t.Fatalf("record not tombstoned")
	}
	// Blobs are removed best-effort.
	if _, err := env.objects.Open(context.Background(), record.ResumePath); err == nil {
		t.Fatalf("resume blob still present after delete")
	}
}

func TestDeleteEndpointSurvivesBlobFailure(t *testing.T) {
	env := newTestEnv(t)

	rec := doSubmit(t, env)
	var record resumes.ResumeRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	env.objects.failDel[record.ResumePath] = errors.New("access denied")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/resumes/"+record.ID, nil)
	req.Header.Set("X-Guest-Id", "abc")
	del := httptest.NewRecorder()
	env.router.ServeHTTP(del, req)
	if del.Code != http.StatusOK {
		t.Fatalf("delete must succeed despite blob failure, status %d", del.Code)
	}

	stored, err := env.records.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if !stored.Deleted {
		t.Fatalf("record not tombstoned")
	}
}

func TestWipeEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := doSubmit(t, env)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/wipe", nil)
	req.Header.Set("X-Guest-Id", "abc")
	wipe := httptest.NewRecorder()
	env.router.ServeHTTP(wipe, req)
	if wipe.Code != http.StatusOK {
		t.Fatalf("wipe status %d, body %s", wipe.Code, wipe.Body.String())
	}

	var result resumes.WipeResult
	if err := json.Unmarshal(wipe.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode wipe result: %v", err)
	}
	if len(result.Deleted) != 2 || len(result.Failed) != 0 {
		t.Fatalf("unexpected wipe result %+v", result)
	}

	all, err := env.records.List(context.Background())
	if err != nil {
		t.Fatalf("list after wipe: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("records remain after wipe: %d", len(all))
	}
}

func TestFileEndpointStreamsBlob(t *testing.T) {
	env := newTestEnv(t)

	rec := doSubmit(t, env)
	var record resumes.ResumeRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+record.ID+"/file", nil)
	req.Header.Set("X-Guest-Id", "abc")
	file := httptest.NewRecorder()
	env.router.ServeHTTP(file, req)
	if file.Code != http.StatusOK {
		t.Fatalf("file status %d", file.Code)
	}
	if file.Body.String() != "resume body text" {
		t.Fatalf("unexpected file body %q", file.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+record.ID+"/image", nil)
	req.Header.Set("X-Guest-Id", "abc")
	image := httptest.NewRecorder()
	env.router.ServeHTTP(image, req)
	if image.Code != http.StatusOK {
		t.Fatalf("image status %d", image.Code)
	}
	if image.Body.String() != "png-bytes" {
		t.Fatalf("unexpected image body %q", image.Body.String())
	}
}

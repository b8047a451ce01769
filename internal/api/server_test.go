package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"realmquest/internal/engine"
	"realmquest/internal/storage"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewServer(engine.NewService(db)).Handler()
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope from %q: %v", method, path, rec.Body.String(), err)
	}
	return rec, env
}

func decodeData(t *testing.T, env testEnvelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %q: %v", env.Data, err)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec, env := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("code=%d success=%v", rec.Code, env.Success)
	}
}

func TestPreflightAdvertisesPatch(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/daily-quests/some-id/progress", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight code=%d", rec.Code)
	}
	allowed := rec.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(allowed, http.MethodPatch) {
		t.Fatalf("Access-Control-Allow-Methods=%q, want PATCH included", allowed)
	}
}

func TestRealmTaskLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec, env := doJSON(t, h, http.MethodPost, "/api/realms", createRealmRequest{
		Name:        "Ember Keep",
		Description: "A realm for chores around the house",
		Theme:       "fire",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create realm code=%d body=%s", rec.Code, rec.Body.String())
	}
	var realm struct {
		ID string `json:"ID"`
	}
	decodeData(t, env, &realm)
	if realm.ID == "" {
		t.Fatalf("realm id missing in %s", env.Data)
	}

	rec, env = doJSON(t, h, http.MethodPost, "/api/realms/"+realm.ID+"/tasks", createTaskRequest{
		Title:       "Slay the laundry pile",
		Description: "Wash, dry and fold everything in the basket",
		Difficulty:  "easy",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task code=%d body=%s", rec.Code, rec.Body.String())
	}
	var task struct {
		ID string `json:"ID"`
	}
	decodeData(t, env, &task)

	base := "/api/realms/" + realm.ID + "/tasks/" + task.ID
	rec, env = doJSON(t, h, http.MethodPost, base+"/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete code=%d body=%s", rec.Code, rec.Body.String())
	}
	var res struct {
		XPGained      int `json:"xpGained"`
		CurrentStreak int `json:"currentStreak"`
	}
	decodeData(t, env, &res)
	if res.XPGained != 10 || res.CurrentStreak != 1 {
		t.Fatalf("xpGained=%d streak=%d, want 10/1", res.XPGained, res.CurrentStreak)
	}

	rec, env = doJSON(t, h, http.MethodPost, base+"/complete", nil)
	if rec.Code != http.StatusConflict || env.Success {
		t.Fatalf("second complete code=%d success=%v", rec.Code, env.Success)
	}

	rec, _ = doJSON(t, h, http.MethodPost, base+"/uncomplete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("uncomplete code=%d body=%s", rec.Code, rec.Body.String())
	}
	rec, _ = doJSON(t, h, http.MethodPost, base+"/uncomplete", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second uncomplete code=%d, want 409", rec.Code)
	}
}

func TestCreateRealmValidationStatus(t *testing.T) {
	h := newTestServer(t)
	rec, env := doJSON(t, h, http.MethodPost, "/api/realms", createRealmRequest{
		Name: "ab", Description: "too short", Theme: "fire",
	})
	if rec.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("code=%d success=%v, want 400/false", rec.Code, env.Success)
	}
	if env.Message == "" {
		t.Fatal("error message missing")
	}
}

func TestUnknownRealmStatus(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doJSON(t, h, http.MethodGet, "/api/realms/no-such-realm", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code=%d, want 404", rec.Code)
	}
}

func TestCustomQuestEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec, env := doJSON(t, h, http.MethodPost, "/api/daily-quests", customQuestRequest{
		Title:       "Read a chapter",
		Description: "Read one chapter of the Go book",
		Target:      2,
		XPReward:    40,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code=%d body=%s", rec.Code, rec.Body.String())
	}
	var quest struct {
		ID string `json:"ID"`
	}
	decodeData(t, env, &quest)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/daily-quests/"+quest.ID+"/progress", questProgressRequest{Increment: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("progress code=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, env = doJSON(t, h, http.MethodPost, "/api/daily-quests/"+quest.ID+"/claim", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("claim code=%d body=%s", rec.Code, rec.Body.String())
	}
	var claim struct {
		XPGained int `json:"xpGained"`
	}
	decodeData(t, env, &claim)
	if claim.XPGained != 40 {
		t.Fatalf("xpGained=%d, want 40", claim.XPGained)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/daily-quests/"+quest.ID+"/claim", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second claim code=%d, want 409", rec.Code)
	}
}

func TestGenerateQuests(t *testing.T) {
	h := newTestServer(t)
	rec, env := doJSON(t, h, http.MethodPost, "/api/daily-quests/generate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate code=%d body=%s", rec.Code, rec.Body.String())
	}
	var quests []json.RawMessage
	decodeData(t, env, &quests)
	if len(quests) != 3 {
		t.Fatalf("quests=%d, want 3", len(quests))
	}
}

func TestUserStatsAndHistory(t *testing.T) {
	h := newTestServer(t)

	rec, env := doJSON(t, h, http.MethodGet, "/api/users/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats code=%d", rec.Code)
	}
	var stats struct {
		Level   int `json:"level"`
		TotalXP int `json:"totalXP"`
	}
	decodeData(t, env, &stats)
	if stats.Level != 1 || stats.TotalXP != 0 {
		t.Fatalf("stats=%+v, want fresh level 1", stats)
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/api/users/xp-history?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit code=%d, want 400", rec.Code)
	}
}

func TestUserHeaderScopesData(t *testing.T) {
	h := newTestServer(t)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(createRealmRequest{
		Name:        "Ember Keep",
		Description: "A realm for chores around the house",
		Theme:       "fire",
	}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/realms", &buf)
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code=%d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/realms", nil)
	req.Header.Set("X-User-ID", "bob")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var realms []json.RawMessage
	if len(env.Data) > 0 {
		decodeData(t, env, &realms)
	}
	if len(realms) != 0 {
		t.Fatalf("bob sees %d realms, want 0", len(realms))
	}
}

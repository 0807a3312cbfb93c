package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"tripcatalog/internal/catalog"
	"tripcatalog/internal/store"
)

// testEnv wires the handlers over in-memory stores.
type testEnv struct {
	public *Public
	admin  *Admin
	pkgs   Collection
	posts  Collection
	wf     *catalog.Admin
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	packages := store.NewMemoryPackageStore()
	posts := store.NewMemoryPostStore()

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	wf := catalog.NewAdmin(packages, posts, nil, catalog.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	engine := catalog.NewEngine(packages, posts, nil)
	admin := NewAdmin(wf, engine, 12)

	return &testEnv{
		public: NewPublic(engine, 12),
		admin:  admin,
		pkgs:   admin.Packages(),
		posts:  admin.Posts(),
		wf:     wf,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// call runs h against a request built from method, target and an optional
// JSON body. id, when set, becomes the {id} URL parameter.
func call(t *testing.T, h http.HandlerFunc, method, target, id string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	if id != "" {
		req = withChiURLParam(req, "id", id)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeAck(t *testing.T, rec *httptest.ResponseRecorder) ack {
	t.Helper()
	var a ack
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode ack: %v (%q)", err, rec.Body.String())
	}
	return a
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body: %v (%q)", err, rec.Body.String())
	}
	return v
}

// createPackage posts a minimal valid package and returns its id.
func (e *testEnv) createPackage(t *testing.T, title string, price any) string {
	t.Helper()
	rec := call(t, e.pkgs.Create, http.MethodPost, "/admin/api/packages", "", map[string]any{
		"title": title,
		"price": price,
		"image": "/media/" + title + ".jpg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %q: status %d, body %s", title, rec.Code, rec.Body.String())
	}
	return decodeAck(t, rec).ID
}

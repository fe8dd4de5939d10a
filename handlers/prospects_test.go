package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"slotwise/internal/database"
	"slotwise/services/prospects"
)

func prospectsRouter(t *testing.T) *mux.Router {
	t.Helper()
	db, err := database.NewDB(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	h := NewProspectsHandler(prospects.NewService(database.NewProspectRepository(db)))

	router := mux.NewRouter()
	router.HandleFunc("/api/prospects", h.List).Methods(http.MethodGet)
	router.HandleFunc("/api/prospects", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/prospects/{prospectID}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/prospects/{prospectID}", h.Update).Methods(http.MethodPut)
	router.HandleFunc("/api/prospects/{prospectID}", h.Delete).Methods(http.MethodDelete)
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestProspectsEndToEnd(t *testing.T) {
	router := prospectsRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/prospects", prospects.Input{Name: "Ada", Email: "ada@x.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)
	id := created["id"].(string)

	rec = doJSON(t, router, http.MethodGet, "/api/prospects/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/prospects/"+id, prospects.Input{Name: "Ada L.", Email: "ada@x.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["name"] != "Ada L." {
		t.Error("update not reflected")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/prospects", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decodeBody(t, rec)["prospects"].([]any)
	if len(list) != 1 {
		t.Fatalf("got %d prospects, want 1", len(list))
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/prospects/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/prospects/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestProspectsValidation(t *testing.T) {
	router := prospectsRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/prospects", prospects.Input{Name: "", Email: "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/prospects/missing", prospects.Input{Name: "A", Email: "a@x.com"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d, want 404", rec.Code)
	}
}

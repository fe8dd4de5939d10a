package translator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"slotwise/models"
)

func geminiReply(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + jsonString(text) + `}]}}]}`
}

func jsonString(s string) string {
	out := `"`
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\\':
			out += `\\`
		case '\n':
			out += `\n`
		default:
			out += string(r)
		}
	}
	return out + `"`
}

func testClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewGeminiClient("test-key", srv.Client())
	c.baseURL = srv.URL
	return c
}

func TestTranslateReturnsText(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		w.Write([]byte(geminiReply(`{"event":{}}`)))
	})

	text, err := c.Translate(context.Background(), "instructions", "user text")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if text != `{"event":{}}` {
		t.Errorf("text = %q", text)
	}
}

func TestTranslateWithoutKey(t *testing.T) {
	c := NewGeminiClient("", nil)
	_, err := c.Translate(context.Background(), "i", "u")
	if !errors.Is(err, models.ErrTranslatorUnavailable) {
		t.Errorf("err = %v, want ErrTranslatorUnavailable", err)
	}
}

func TestTranslateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(geminiReply("ok")))
	})

	text, err := c.Translate(context.Background(), "i", "u")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if text != "ok" || calls.Load() != 3 {
		t.Errorf("text = %q after %d calls", text, calls.Load())
	}
}

func TestTranslateExhaustedRetries(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Translate(context.Background(), "i", "u")
	if !errors.Is(err, models.ErrTranslatorUnavailable) {
		t.Errorf("err = %v, want ErrTranslatorUnavailable", err)
	}
}

func TestTranslateClientErrorIsFatal(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad request"}}`))
	})

	_, err := c.Translate(context.Background(), "i", "u")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, models.ErrTranslatorUnavailable) {
		t.Errorf("4xx should not read as unavailable: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("4xx retried %d times, want 1 attempt", calls.Load())
	}
}

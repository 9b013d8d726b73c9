package mymemory

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTranslateParsesResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("langpair") != "fr|en" {
			t.Fatalf("unexpected langpair: %q", q.Get("langpair"))
		}
		if q.Get("de") != "ops@example.com" {
			t.Fatalf("expected contact email, got %q", q.Get("de"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"responseData":{"translatedText":"hello world"},"responseStatus":200,"responseDetails":""}`)
	}))
	defer ts.Close()

	c := New(ts.URL, ts.Client(), WithEmail("ops@example.com"))
	got, err := c.Translate(context.Background(), "bonjour le monde", "fr", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "hello world" {
		t.Fatalf("unexpected translation: %q", got)
	}
}

func TestTranslateHandlesStringResponseStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 but an in-body error, with the status as a string.
		_, _ = io.WriteString(w, `{"responseData":{"translatedText":""},"responseStatus":"403","responseDetails":"INVALID LANGUAGE PAIR"}`)
	}))
	defer ts.Close()

	c := New(ts.URL, ts.Client())
	_, err := c.Translate(context.Background(), "hello", "en", "xx")
	if err == nil {
		t.Fatal("expected error")
	}
	mErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if mErr.StatusCode != 403 || !strings.Contains(mErr.Detail, "INVALID LANGUAGE PAIR") {
		t.Fatalf("unexpected error: %+v", mErr)
	}
}

func TestTranslateReturnsTypedErrorOnHTTPFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "MYMEMORY WARNING: YOU USED ALL AVAILABLE FREE TRANSLATIONS FOR TODAY", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := New(ts.URL, ts.Client())
	_, err := c.Translate(context.Background(), "hello", "en", "fr")
	mErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if mErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: %d", mErr.StatusCode)
	}
}

func TestTranslateRejectsEmptyTranslation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"responseData":{"translatedText":"   "},"responseStatus":200}`)
	}))
	defer ts.Close()

	c := New(ts.URL, ts.Client())
	if _, err := c.Translate(context.Background(), "hello", "en", "fr"); err == nil {
		t.Fatal("expected error for blank translation")
	}
}

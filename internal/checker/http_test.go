package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPChecker(t *testing.T) {
	t.Run("successful check", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			w.Write([]byte(`{"suggestions":[{"text":"Teh","suggestion":"The","start":0,"end":3,"type":"spelling"}]}`))
		}))
		defer srv.Close()

		c := NewHTTPChecker("spelling-remote", KindSpelling, srv.URL)
		got, err := c.Check(context.Background(), unitsFor(t, "Teh cat sat."))
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if len(got) != 1 || got[0].Replacement != "The" {
			t.Fatalf("unexpected result %+v", got)
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 call, got %d", calls.Load())
		}
	})

	t.Run("malformed entries dropped not fatal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"suggestions":[
				{"suggestion":"The","start":0,"end":3,"type":"spelling"},
				{"text":"Teh","suggestion":"The","start":0,"end":3,"type":"spelling"}
			]}`))
		}))
		defer srv.Close()

		c := NewHTTPChecker("spelling-remote", KindSpelling, srv.URL)
		got, err := c.Check(context.Background(), unitsFor(t, "Teh cat sat."))
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 surviving entry, got %d", len(got))
		}
		if c.DroppedEntries() != 1 {
			t.Errorf("expected 1 dropped entry, got %d", c.DroppedEntries())
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewHTTPChecker("grammar-remote", KindGrammar, srv.URL)
		if _, err := c.Check(context.Background(), unitsFor(t, "text.")); err == nil {
			t.Error("expected error for non-200 status")
		}
	})

	t.Run("undecodable body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>oops</html>"))
		}))
		defer srv.Close()

		c := NewHTTPChecker("grammar-remote", KindGrammar, srv.URL)
		if _, err := c.Check(context.Background(), unitsFor(t, "text.")); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("timeout degrades to error", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-block
		}))
		defer srv.Close()
		defer close(block)

		c := NewHTTPChecker("slow", KindStyle, srv.URL, WithTimeout(50*time.Millisecond))
		start := time.Now()
		_, err := c.Check(context.Background(), unitsFor(t, "text."))
		if err == nil {
			t.Error("expected timeout error")
		}
		if time.Since(start) > 2*time.Second {
			t.Error("timeout did not bound the call")
		}
	})

	t.Run("no endpoint", func(t *testing.T) {
		c := NewHTTPChecker("unconfigured", KindStyle, "")
		if _, err := c.Check(context.Background(), unitsFor(t, "text.")); err != ErrNoEndpoint {
			t.Errorf("expected ErrNoEndpoint, got %v", err)
		}
	})

	t.Run("empty units short-circuits", func(t *testing.T) {
		c := NewHTTPChecker("noop", KindStyle, "http://unused.invalid")
		got, err := c.Check(context.Background(), nil)
		if err != nil || got != nil {
			t.Errorf("expected nil result for no units, got %v, %v", got, err)
		}
	})
}

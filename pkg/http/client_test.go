package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestClientSendAndParseJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type %q", r.Header.Get("Content-Type"))
		}
		if r.URL.Query().Get("coin") != "bitcoin" {
			t.Errorf("query %q", r.URL.RawQuery)
		}
		var in map[string]int
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"doubled": in["n"] * 2})
	}))
	defer srv.Close()

	var out map[string]int
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method: http.MethodPost,
		URL:    srv.URL,
		Query:  url.Values{"coin": {"bitcoin"}},
		Body:   map[string]int{"n": 21},
	}, &out)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if out["doubled"] != 42 {
		t.Fatalf("unexpected response %v", out)
	}
}

func TestClientStatusError(t *testing.T) {
	codes := map[int]bool{
		http.StatusBadRequest:          false,
		http.StatusTooManyRequests:     true,
		http.StatusServiceUnavailable:  true,
		http.StatusInternalServerError: true,
	}
	for code, temporary := range codes {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))
		var raw []byte
		err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: http.MethodGet, URL: srv.URL}, &raw)
		srv.Close()

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("code %d: expected StatusError, got %v", code, err)
		}
		if se.Code != code || se.Temporary() != temporary {
			t.Fatalf("code %d: got %+v temporary=%v", code, se, se.Temporary())
		}
	}
}

package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newGatewayTestRouter(serviceURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/transactions", proxyTo(serviceURL))
	return r
}

func TestProxyTo_ForwardsRequestAndResponse(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"amount":50}` {
			t.Errorf("backend received body %q", body)
		}
		if r.Header.Get("X-Account-Id") != "7" {
			t.Errorf("backend missing forwarded header, got %q", r.Header.Get("X-Account-Id"))
		}
		if r.URL.RawQuery != "page=2" {
			t.Errorf("backend missing query string, got %q", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":1}`)
	}))
	defer backend.Close()

	router := newGatewayTestRouter(backend.URL)
	req, _ := http.NewRequest(http.MethodPost, "/api/transactions?page=2", strings.NewReader(`{"amount":50}`))
	req.Header.Set("X-Account-Id", "7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != `{"id":1}` {
		t.Errorf("response body not forwarded: %q", w.Body.String())
	}
}

func TestProxyTo_UnreachableService(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	backend.Close()

	router := newGatewayTestRouter(backend.URL)
	req, _ := http.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, fmt.Errorf("read failed") }

func TestProxyTo_BodyReadFailure(t *testing.T) {
	// A truncated client body must be rejected, never proxied as an empty
	// or partial payload.
	backend := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("backend called despite unreadable request body")
	}))
	defer backend.Close()

	router := newGatewayTestRouter(backend.URL)
	req, _ := http.NewRequest(http.MethodPost, "/api/transactions", failingReader{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d; body: %s", w.Code, w.Body.String())
	}
}

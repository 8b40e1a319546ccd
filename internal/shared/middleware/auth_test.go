package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mahsa-meymari/FinancialTracker/internal/shared/token"
)

// ---- mock verifier ----

type mockVerifier struct {
	verifyFn func(string) (*token.Identity, error)
}

func (m *mockVerifier) Verify(tokenString string) (*token.Identity, error) {
	if m.verifyFn != nil {
		return m.verifyFn(tokenString)
	}
	return nil, errors.New("not configured")
}

func acceptAll(userID int64, subject string) *mockVerifier {
	return &mockVerifier{verifyFn: func(string) (*token.Identity, error) {
		return &token.Identity{UserID: userID, Subject: subject}, nil
	}}
}

func rejectAll(err error) *mockVerifier {
	return &mockVerifier{verifyFn: func(string) (*token.Identity, error) {
		return nil, err
	}}
}

// ---- helpers ----

type probe struct {
	called  bool
	userID  int64
	subject string
	hasID   bool
}

func newAuthTestRouter(verifier Verifier, level Requirement, p *probe) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(verifier))
	r.GET("/probe", Require(level), func(c *gin.Context) {
		p.called = true
		p.userID, p.hasID = GetUserID(c)
		p.subject, _ = GetSubject(c)
		c.Status(http.StatusOK)
	})
	return r
}

func authDoRequest(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/probe", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- tests ----

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name     string
		verifier Verifier
		headers  map[string]string
		wantID   bool
		wantUser int64
	}{
		{
			name:     "no header - anonymous pass-through",
			verifier: acceptAll(1, "u1"),
			headers:  nil,
			wantID:   false,
		},
		{
			name:     "valid bearer - identity installed",
			verifier: acceptAll(7, "mahsa"),
			headers:  map[string]string{"Authorization": "Bearer sometoken"},
			wantID:   true,
			wantUser: 7,
		},
		{
			name:     "invalid token - request continues anonymous",
			verifier: rejectAll(token.ErrBadSignature),
			headers:  map[string]string{"Authorization": "Bearer tampered"},
			wantID:   false,
		},
		{
			name:     "non-bearer scheme - ignored",
			verifier: acceptAll(1, "u1"),
			headers:  map[string]string{"Authorization": "Basic dXNlcjpwYXNz"},
			wantID:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p probe
			router := newAuthTestRouter(tt.verifier, Public, &p)
			w := authDoRequest(router, tt.headers)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if !p.called {
				t.Fatalf("handler not reached")
			}
			if p.hasID != tt.wantID {
				t.Fatalf("identity installed = %v, want %v", p.hasID, tt.wantID)
			}
			if tt.wantID && p.userID != tt.wantUser {
				t.Errorf("userID = %d, want %d", p.userID, tt.wantUser)
			}
		})
	}
}

func TestAuthenticate_DoesNotOverwriteIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var p probe
	r := gin.New()
	// A preceding middleware has already established the identity.
	r.Use(func(c *gin.Context) {
		c.Set(contextUserIDKey, int64(99))
		c.Set(contextSubjectKey, "first")
		c.Next()
	})
	r.Use(Authenticate(acceptAll(7, "second")))
	r.GET("/probe", func(c *gin.Context) {
		p.userID, p.hasID = GetUserID(c)
		p.subject, _ = GetSubject(c)
		c.Status(http.StatusOK)
	})

	authDoRequest(r, map[string]string{"Authorization": "Bearer sometoken"})
	if !p.hasID || p.userID != 99 || p.subject != "first" {
		t.Fatalf("identity overwritten: got (%d, %q)", p.userID, p.subject)
	}
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name           string
		verifier       Verifier
		level          Requirement
		headers        map[string]string
		expectedStatus int
	}{
		{
			name:           "public - anonymous allowed",
			verifier:       rejectAll(token.ErrMalformed),
			level:          Public,
			headers:        nil,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "requires credential - anonymous rejected",
			verifier:       acceptAll(1, "u1"),
			level:          RequiresCredential,
			headers:        nil,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "requires credential - expired token rejected",
			verifier:       rejectAll(token.ErrExpired),
			level:          RequiresCredential,
			headers:        map[string]string{"Authorization": "Bearer old"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "requires credential - valid token accepted",
			verifier:       acceptAll(1, "u1"),
			level:          RequiresCredential,
			headers:        map[string]string{"Authorization": "Bearer ok"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "matching header - missing header rejected before any check",
			verifier:       acceptAll(1, "u1"),
			level:          RequiresMatchingUserHeader,
			headers:        map[string]string{"Authorization": "Bearer ok"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "matching header - non-numeric header rejected",
			verifier:       acceptAll(1, "u1"),
			level:          RequiresMatchingUserHeader,
			headers:        map[string]string{"Authorization": "Bearer ok", HeaderUserID: "abc"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "matching header - mismatch rejected",
			verifier:       acceptAll(1, "u1"),
			level:          RequiresMatchingUserHeader,
			headers:        map[string]string{"Authorization": "Bearer ok", HeaderUserID: "2"},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "matching header - match accepted",
			verifier:       acceptAll(1, "u1"),
			level:          RequiresMatchingUserHeader,
			headers:        map[string]string{"Authorization": "Bearer ok", HeaderUserID: "1"},
			expectedStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p probe
			router := newAuthTestRouter(tt.verifier, tt.level, &p)
			w := authDoRequest(router, tt.headers)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected %d got %d; body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK && p.called {
				t.Errorf("handler reached despite rejection")
			}
		})
	}
}

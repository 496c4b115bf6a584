package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"ResuMatch/internal/config"
	"ResuMatch/pkg/logger"
)

func newLoginRouter(t *testing.T, enabled bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init(logrus.ErrorLevel)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	h := NewHandler(nil, config.AuthConfig{
		Enabled:           enabled,
		JwtSecret:         testSecret,
		TokenTTL:          600,
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
	}, logger.New("api-test", "test"))

	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	return r
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	r := newLoginRouter(t, true)

	w := postLogin(r, `{"username":"admin","password":"s3cret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ExpiresIn != 600 {
		t.Fatalf("expires_in = %d, want 600", resp.ExpiresIn)
	}

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != "admin" {
		t.Fatalf("sub claim = %v, want admin", claims["sub"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := newLoginRouter(t, true)

	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"intruder","password":"s3cret"}`,
	} {
		if w := postLogin(r, body); w.Code != http.StatusUnauthorized {
			t.Errorf("body %s: status = %d, want 401", body, w.Code)
		}
	}
}

func TestLoginRejectsIncompleteBody(t *testing.T) {
	r := newLoginRouter(t, true)

	if w := postLogin(r, `{"username":"admin"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLoginDisabled(t *testing.T) {
	r := newLoginRouter(t, false)

	if w := postLogin(r, `{"username":"admin","password":"s3cret"}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when auth is disabled", w.Code)
	}
}

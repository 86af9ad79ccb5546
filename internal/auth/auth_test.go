package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

var secret = []byte("test-secret")

func TestSignAndParse(t *testing.T) {
	tok, err := SignJWT(secret, "u1", "a@b.c", false, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c, err := ParseJWT(secret, tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.UID != "u1" || c.Email != "a@b.c" || c.Anonymous {
		t.Errorf("claims = %+v", c)
	}
	if _, err := ParseJWT([]byte("other"), tok); err == nil {
		t.Error("token parsed with the wrong secret")
	}
	expired, _ := SignJWT(secret, "u1", "", true, -time.Minute)
	if _, err := ParseJWT(secret, expired); err == nil {
		t.Error("expired token accepted")
	}
}

func TestIsAdminIsExact(t *testing.T) {
	cases := []struct {
		claims *Claims
		want   bool
	}{
		{&Claims{Email: "admin@x.io"}, true},
		{&Claims{Email: "Admin@x.io"}, false},
		{&Claims{Email: "admin@x.io", Anonymous: true}, false},
		{&Claims{}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := tc.claims.IsAdmin("admin@x.io"); got != tc.want {
			t.Errorf("IsAdmin(%+v) = %v, want %v", tc.claims, got, tc.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireJWT(secret), RequireAdmin("admin@x.io"), func(c *gin.Context) {
		c.String(http.StatusOK, FromContext(c).UID)
	})

	admin, _ := SignJWT(secret, "adm", "admin@x.io", false, time.Hour)
	visitor, _ := SignJWT(secret, "anon", "", true, time.Hour)
	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer nope", http.StatusUnauthorized},
		{"Bearer " + visitor, http.StatusForbidden},
		{"Bearer " + admin, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("Authorization %q: status %d, want %d", tc.header, w.Code, tc.want)
		}
	}
}

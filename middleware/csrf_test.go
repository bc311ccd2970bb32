package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCSRFStoreIssueVerifyRevoke(t *testing.T) {
	store := NewCSRFStore()

	token := store.Issue(1)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, store.Issue(1), "repeated logins reuse the token")
	assert.NotEqual(t, token, store.Issue(2), "tokens are per user")

	assert.True(t, store.Verify(1, token))
	assert.False(t, store.Verify(1, "wrong"))
	assert.False(t, store.Verify(1, ""))
	assert.False(t, store.Verify(3, token), "never issued means never valid")

	store.Revoke(1)
	assert.False(t, store.Verify(1, token))
	assert.NotEqual(t, token, store.Issue(1), "reissue after revoke rotates the token")
}

func TestCSRFMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewCSRFStore()
	token := store.Issue(1)

	newRouter := func(userID any) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if userID != nil {
				c.Set(ContextUserID, userID)
			}
			c.Next()
		})
		router.Use(CSRFMiddleware(store))
		handler := func(c *gin.Context) { c.Status(http.StatusOK) }
		router.GET("/test", handler)
		router.POST("/test", handler)
		return router
	}

	tests := []struct {
		name           string
		method         string
		userID         any
		header         string
		expectedStatus int
	}{
		{"Safe Method Skips Check", http.MethodGet, uint(1), "", http.StatusOK},
		{"Valid Token", http.MethodPost, uint(1), token, http.StatusOK},
		{"Missing Token", http.MethodPost, uint(1), "", http.StatusForbidden},
		{"Wrong Token", http.MethodPost, uint(1), "bogus", http.StatusForbidden},
		{"Other Users Token", http.MethodPost, uint(2), token, http.StatusForbidden},
		{"No Authenticated User", http.MethodPost, nil, token, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, "/test", nil)
			if tt.header != "" {
				req.Header.Set(CSRFHeader, tt.header)
			}

			w := httptest.NewRecorder()
			newRouter(tt.userID).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

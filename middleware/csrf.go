package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CSRFHeader carries the token on mutating requests.
const CSRFHeader = "X-CSRF-Token"

// CSRFStore issues one opaque token per user at login and verifies it on
// every mutating request before any handler runs.
type CSRFStore struct {
	mu     sync.Mutex
	tokens map[uint]string
}

func NewCSRFStore() *CSRFStore {
	return &CSRFStore{tokens: make(map[uint]string)}
}

// Issue returns the user's token, generating one on first use.
func (s *CSRFStore) Issue(userID uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.tokens[userID]; ok {
		return token
	}
	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	s.tokens[userID] = token
	return token
}

// Verify checks a presented token in constant time.
func (s *CSRFStore) Verify(userID uint, token string) bool {
	s.mu.Lock()
	expected, ok := s.tokens[userID]
	s.mu.Unlock()
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// Revoke drops a user's token, forcing reissue at next login.
func (s *CSRFStore) Revoke(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
}

// CSRFMiddleware rejects mutating requests whose X-CSRF-Token header does
// not match the token issued to the authenticated user. Safe methods pass
// through.
func CSRFMiddleware(store *CSRFStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		userID, exists := c.Get(ContextUserID)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			c.Abort()
			return
		}
		id, ok := userID.(uint)
		if !ok || !store.Verify(id, c.GetHeader(CSRFHeader)) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid CSRF token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

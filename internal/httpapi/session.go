package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims is the JWT payload issued by handleCreateSession: a
// short-lived, websocket-friendly credential derived from a verified API
// key, since WebSocket upgrade requests cannot carry an Authorization
// header from a browser client the way a REST call can.
type sessionClaims struct {
	KeyName string `json:"key_name"`
	jwt.RegisteredClaims
}

// SessionResponse is the body of POST /v1/admin/session.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

var errJWTNotConfigured = errors.New("httpapi: jwt secret not configured")

// issueSessionToken signs a sessionClaims token for keyName, valid for ttl,
// using secret as the HMAC key.
func issueSessionToken(secret string, keyName string, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errJWTNotConfigured
	}
	expiresAt := time.Now().Add(ttl)
	claims := sessionClaims{
		KeyName: keyName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   keyName,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, expiresAt, err
}

// verifySessionToken parses and validates a token minted by
// issueSessionToken, returning the API key name it was issued for.
func verifySessionToken(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", errJWTNotConfigured
	}
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.KeyName, nil
}

// handleCreateSession exchanges an already-verified API key (see
// APIKeyAuth, which runs ahead of this handler) for a short-lived JWT
// suitable for the WebSocket endpoint's ?token= query parameter.
func (s *Server) handleCreateSession(c *gin.Context) {
	keyName, _ := c.Get(ctxKeyAPIKeyName)
	name, _ := keyName.(string)

	token, expiresAt, err := issueSessionToken(s.jwtSecret, name, s.jwtTTL)
	if err != nil {
		respondError(c, NewAPIError("SESSION_DISABLED", "jwt sessions are not configured", http.StatusNotImplemented))
		return
	}
	respondJSON(c, http.StatusCreated, SessionResponse{Token: token, ExpiresAt: expiresAt})
}

// sessionTokenFromQuery validates the ?token= query parameter of a
// WebSocket upgrade request against s.jwtSecret, returning the API key name
// it was issued for.
func (s *Server) sessionTokenFromQuery(c *gin.Context) (string, bool) {
	if s.jwtSecret == "" {
		return "", true
	}
	tok := c.Query("token")
	if tok == "" {
		return "", false
	}
	name, err := verifySessionToken(s.jwtSecret, tok)
	if err != nil {
		return "", false
	}
	return name, true
}

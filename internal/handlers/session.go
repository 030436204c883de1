package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/daily-diet/apiserver/internal/services"
	"github.com/daily-diet/apiserver/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionCookieName is the cookie the credential travels in. A bearer
// Authorization header is accepted as a fallback for non-browser clients.
const sessionCookieName = "sessionId"

// RequireSession is the access gate: it resolves the caller's identity
// from the session credential before any meal operation runs. A missing
// or unresolvable credential short-circuits with 401; the gate never
// falls back to an anonymous identity and never touches ledger state.
func RequireSession(secret string, users *services.UserService) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential, err := credentialFromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			owner, err := parseCredentialSubject(credential, key)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if _, err := users.GetByID(r.Context(), owner); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				writeError(w, http.StatusInternalServerError, "failed to load user")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithOwner(r.Context(), owner)))
		})
	}
}

// issueCredential signs a session credential bound to the given user.
func issueCredential(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseCredentialSubject(credential string, secret []byte) (uuid.UUID, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(credential, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid credential")
	}

	subject, err := uuid.Parse(strings.TrimSpace(claims.Subject))
	if err != nil || subject == uuid.Nil {
		return uuid.Nil, errors.New("invalid subject")
	}
	return subject, nil
}

func credentialFromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value, nil
		}
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing credential")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid credential")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid credential")
	}
	return token, nil
}

func setSessionCookie(w http.ResponseWriter, credential string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    credential,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const ActorIDKey contextKey = "actorID"

const sessionTTL = 24 * time.Hour

func sessionSecret() []byte {
	return []byte(os.Getenv("SESSION_SECRET"))
}

// NewSessionToken signs a session token for the given user.
func NewSessionToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(sessionSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// SessionAuthMiddleware resolves the current actor from a bearer session
// token and injects it into the request context. There is no separate
// identity provider; the token is the one issued by POST /api/session.
func SessionAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer <token>'")
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return sessionSecret(), nil
		})
		if err != nil || !token.Valid {
			log.Printf("Session token verification failed: %v", err)
			respondWithError(w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		actorID, err := uuid.Parse(subject)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		ctx := context.WithValue(r.Context(), ActorIDKey, actorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalSessionAuthMiddleware resolves the actor when a valid bearer
// token is present and passes the request through anonymously otherwise.
// For routes that personalize their response but work without identity.
func OptionalSessionAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actorID, ok := actorFromRequest(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), ActorIDKey, actorID))
		}
		next.ServeHTTP(w, r)
	})
}

func actorFromRequest(r *http.Request) (uuid.UUID, bool) {
	authHeader := r.Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader {
		return uuid.Nil, false
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return sessionSecret(), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, false
	}

	actorID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, false
	}

	return actorID, true
}

// GetActorID extracts the authenticated actor from the context.
func GetActorID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ActorIDKey).(uuid.UUID)
	return id, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error": %q}`, message)
}

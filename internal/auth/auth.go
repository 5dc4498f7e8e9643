package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avolkov/linkshort/internal/config"
	"github.com/avolkov/linkshort/internal/logger"
	"github.com/avolkov/linkshort/internal/models"
	"github.com/avolkov/linkshort/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

type userCtxKeyType string

const (
	cookieName                = "linkshort_token"
	userCtxKey userCtxKeyType = "user_id"
)

func NewClaims() *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.TokenExp)),
		},
		UserID: uuid.New().String(),
	}
}

func (claims *Claims) writeToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Current.JWTSecret))
}

func (claims *Claims) parseToken(tokenString string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Current.JWTSecret), nil
	})
}

func setCookie(w http.ResponseWriter, claims *Claims) {
	token, err := claims.writeToken()
	if err != nil {
		http.Error(w, "Could not create token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(config.TokenExp),
	})
}

func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userCtxKey, userID))
}

// Middleware resolves the request cookie to a principal. First-time callers
// get a fresh token and a hobby-tier user record; a blacklisted ID is
// demoted to anonymous rather than rejected.
func Middleware(store storage.StoreHandler, blacklist *Blacklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := NewClaims()
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				setCookie(w, claims)
				registerUser(store, r.Context(), claims.UserID)
			} else {
				token, err := claims.parseToken(cookie.Value)
				if err != nil || !token.Valid {
					// Parsing fills claims from the payload even when the
					// signature is bad; start over with a clean identity.
					claims = NewClaims()
					setCookie(w, claims)
					registerUser(store, r.Context(), claims.UserID)
				} else if claims.UserID == "" {
					http.Error(w, "No UserID in token", http.StatusUnauthorized)
					return
				}
			}

			userID := claims.UserID
			if blacklist.Blocked(userID) {
				userID = ""
			}
			next.ServeHTTP(w, withUserID(r, userID))
		})
	}
}

func registerUser(store storage.StoreHandler, ctx context.Context, userID string) {
	err := store.SaveUser(ctx, &models.User{ID: userID, Tier: models.TierHobby})
	if err != nil && logger.Log != nil {
		logger.Log.Errorw("register user", "user_id", userID, "error", err)
	}
}

func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userCtxKey).(string)
	if !ok {
		return ""
	}
	return userID
}

package auth

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

const CookieName = "quiz_token"

type AuthService struct {
	hmac   []byte
	secure bool
	ttl    time.Duration
}

func NewAuthService(secret string, secureCookie bool, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &AuthService{hmac: []byte(secret), secure: secureCookie, ttl: ttl}
}

type Claims struct {
	Sub  string `json:"sub"`
	SID  string `json:"sid"`
	Role string `json:"role"` // "taker" or "admin"
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, sid, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		SID:  sid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mindengage-quiz",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// SignIn issues a token and stores it in the identity cookie. An existing
// session id is kept so a re-login on the same browser reuses it.
func (a *AuthService) SignIn(w http.ResponseWriter, r *http.Request, sub, role string) (string, error) {
	sid := SessionIDFromContext(r.Context())
	if sid == "" {
		sid = uuid.New().String()
	}
	tok, err := a.IssueJWT(sub, sid, role)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(a.ttl),
	})
	return sid, nil
}

func (a *AuthService) SignOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// Identify puts the cookie's subject, session id and role into the request
// context. Requests without a valid cookie pass through anonymously.
func Identify(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := a.Parse(c.Value)
			if err != nil {
				a.SignOut(w)
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithSubject(r.Context(), claims.Sub)
			ctx = WithSessionID(ctx, claims.SID)
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin sends anonymous visitors back to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SubjectFromContext(r.Context()) == "" || SessionIDFromContext(r.Context()) == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NormalizeEmail validates a login address and returns its bare form.
func NormalizeEmail(s string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return strings.ToLower(addr.Address), nil
}

// POST /admin/login  form: username, password
func AdminLoginHandler(a *AuthService, user, passHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := r.PostForm.Get("username")
		password := r.PostForm.Get("password")
		if username != user || bcrypt.CompareHashAndPassword([]byte(passHash), []byte(password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if _, err := a.SignIn(w, r, username, rbac.RoleAdmin); err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/submissions", http.StatusSeeOther)
	}
}

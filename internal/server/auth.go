package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/cifra/internal/api"
	"github.com/abhisek/cifra/internal/store"
)

const (
	issuer         = "cifra"
	minPasswordLen = 6
	bcryptCost     = 12
)

// Claims are carried by every issued token. Subject is the user id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (a *tokenIssuer) Issue(u *store.User) (string, error) {
	now := a.now()
	claims := &Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.secret)
}

func (a *tokenIssuer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

type ctxKey struct{}

// userID returns the id put on the context by requireAuth.
func userID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, "Требуется авторизация")
			return
		}
		claims, err := s.tokens.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "Недействительный токен")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims.Subject)))
	})
}

func publicUser(u *store.User) api.User {
	return api.User{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

// POST /auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeErr(w, http.StatusBadRequest, "Заполните все поля")
		return
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		writeErr(w, http.StatusBadRequest, "Пароль должен быть не менее 6 символов")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.internal(w, "hash password", err)
		return
	}
	u := &store.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeErr(w, http.StatusBadRequest, "Пользователь с таким именем или email уже существует")
			return
		}
		s.internal(w, "create user", err)
		return
	}
	s.log.Info("user registered", "user_id", u.ID, "username", u.Username)
	s.respondToken(w, http.StatusCreated, u)
}

// POST /auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.users.ByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.internal(w, "load user", err)
		return
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeErr(w, http.StatusUnauthorized, "Неверное имя пользователя или пароль")
		return
	}
	s.respondToken(w, http.StatusOK, u)
}

// GET /auth/verify
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.ByID(r.Context(), userID(r.Context()))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusUnauthorized, "Пользователь не найден")
			return
		}
		s.internal(w, "load user", err)
		return
	}
	writeJSON(w, http.StatusOK, api.AuthResponse{Success: true, User: publicUser(u)})
}

func (s *Server) respondToken(w http.ResponseWriter, status int, u *store.User) {
	tok, err := s.tokens.Issue(u)
	if err != nil {
		s.internal(w, "issue token", err)
		return
	}
	writeJSON(w, status, api.AuthResponse{Success: true, Token: tok, User: publicUser(u)})
}

func (s *Server) internal(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, "error", fmt.Sprint(err))
	writeErr(w, http.StatusInternalServerError, api.DefaultErrorMessage)
}

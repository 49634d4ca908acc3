package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"resumebuilder/socket"
	"resumebuilder/store"
)

var (
	ErrEmptyTitle = errors.New("title cannot be empty")
	ErrNoUserID   = errors.New("user id is required")
)

// Claims is what a session token carries. Login does not verify who the user
// is; the token only ties later requests to the same session user.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type ResumeService struct {
	Hub      *socket.Hub
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewResumeService(hub *socket.Hub, secret string, tokenTTL time.Duration) *ResumeService {
	return &ResumeService{Hub: hub, secret: []byte(secret), tokenTTL: tokenTTL, now: time.Now}
}

// Login marks the session authenticated and returns a signed session token.
func (s *ResumeService) Login(ctx context.Context, user store.UserRef) (string, store.State, error) {
	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		return "", store.State{}, ErrNoUserID
	}
	st, err := s.dispatch(ctx, store.LoginType, user)
	if err != nil {
		return "", st, err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return "", st, err
	}
	return token, st, nil
}

func (s *ResumeService) Logout(ctx context.Context) (store.State, error) {
	return s.Hub.Submit(ctx, store.Action{Type: store.LogoutType})
}

// CreateResume is the boundary check for blank titles; the store itself
// accepts any title.
func (s *ResumeService) CreateResume(ctx context.Context, title string) (store.State, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return s.Hub.Snapshot(), ErrEmptyTitle
	}
	return s.dispatch(ctx, store.AddResumeType, map[string]string{"title": title})
}

func (s *ResumeService) Dispatch(ctx context.Context, a store.Action) (store.State, error) {
	return s.Hub.Submit(ctx, a)
}

func (s *ResumeService) Snapshot() store.State {
	return s.Hub.Snapshot()
}

func (s *ResumeService) SearchResumes(term string) []store.Document {
	return s.Hub.Snapshot().SearchDocuments(term)
}

func (s *ResumeService) dispatch(ctx context.Context, typ store.CommandType, payload any) (store.State, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return s.Hub.Snapshot(), fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return s.Hub.Submit(ctx, store.Action{Type: typ, Payload: raw})
}

func (s *ResumeService) issueToken(user store.UserRef) (string, error) {
	now := s.now()
	claims := Claims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ABOUTME: Local profile toggle stored under the "user" key
// ABOUTME: Keeps only a bcrypt hash of the password and never verifies it

// Package profile records who is using this shelf. It is a display toggle,
// not authentication: signing in replaces the stored profile unconditionally.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/2389/shelf/internal/store"
)

var (
	// ErrMissingCredentials is returned when username or password is blank.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrNoProfile is returned when nobody is signed in.
	ErrNoProfile = errors.New("no profile")
)

// MsgMissingCredentials is the notice shown for ErrMissingCredentials.
const MsgMissingCredentials = "Please enter both username and password."

// Profile is the stored record.
type Profile struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service reads and writes the profile record.
type Service struct {
	mu     sync.Mutex
	kv     store.KV
	cost   int
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a profile service backed by kv.
func NewService(kv store.KV) *Service {
	return &Service{
		kv:     kv,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		logger: slog.Default().With("component", "profile"),
	}
}

// SignIn stores a profile for username, replacing any existing one.
func (s *Service) SignIn(ctx context.Context, username, password string) (Profile, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return Profile{}, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Profile{}, fmt.Errorf("hashing password: %w", err)
	}

	p := Profile{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	data, err := json.Marshal(p)
	if err != nil {
		return Profile{}, fmt.Errorf("encoding profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, store.KeyProfile, data); err != nil {
		return Profile{}, fmt.Errorf("saving profile: %w", err)
	}

	s.logger.Info("signed in", "username", username)
	return p, nil
}

// Current returns the stored profile or ErrNoProfile.
func (s *Service) Current(ctx context.Context) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(ctx, store.KeyProfile)
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, ErrNoProfile
	}
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil || p.Username == "" {
		s.logger.Warn("stored profile is unreadable, treating as signed out", "error", err)
		return Profile{}, ErrNoProfile
	}
	return p, nil
}

// SignOut removes the stored profile. Signing out with no profile is not
// an error.
func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, store.KeyProfile); err != nil {
		return fmt.Errorf("removing profile: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

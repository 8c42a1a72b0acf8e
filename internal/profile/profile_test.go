// ABOUTME: Tests for the profile toggle
// ABOUTME: Checks trimming, replacement, sign-out and that no plaintext is stored

package profile

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/shelf/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MockStore) {
	t.Helper()
	kv := store.NewMockStore()
	s := NewService(kv)
	s.cost = bcrypt.MinCost
	return s, kv
}

func TestSignIn_StoresHashOnly(t *testing.T) {
	s, kv := newTestService(t)
	ctx := context.Background()

	p, err := s.SignIn(ctx, "  ada ", " hunter2 ")
	require.NoError(t, err)
	assert.Equal(t, "ada", p.Username)

	raw, err := kv.Get(ctx, store.KeyProfile)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "hunter2"), "plaintext password must not be stored")

	cur, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", cur.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cur.PasswordHash), []byte("hunter2")))
}

func TestSignIn_MissingCredentials(t *testing.T) {
	s, kv := newTestService(t)
	ctx := context.Background()

	for _, tc := range [][2]string{{"", "pw"}, {"ada", ""}, {"   ", "   "}} {
		_, err := s.SignIn(ctx, tc[0], tc[1])
		assert.ErrorIs(t, err, ErrMissingCredentials)
	}

	_, err := kv.Get(ctx, store.KeyProfile)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSignIn_ReplacesPrevious(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignIn(ctx, "ada", "one")
	require.NoError(t, err)
	_, err = s.SignIn(ctx, "grace", "two")
	require.NoError(t, err)

	cur, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "grace", cur.Username)
}

func TestSignOut(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignIn(ctx, "ada", "pw")
	require.NoError(t, err)
	require.NoError(t, s.SignOut(ctx))

	_, err = s.Current(ctx)
	assert.ErrorIs(t, err, ErrNoProfile)

	// signing out twice is fine
	assert.NoError(t, s.SignOut(ctx))
}

func TestCurrent_UnreadableProfile(t *testing.T) {
	s, kv := newTestService(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, store.KeyProfile, []byte("garbage")))
	_, err := s.Current(ctx)
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestCurrent_LegacyPlaintextRecord(t *testing.T) {
	s, kv := newTestService(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, store.KeyProfile, []byte(`{"username":"ada","password":"pw"}`)))
	cur, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", cur.Username)
	assert.Empty(t, cur.PasswordHash)
}

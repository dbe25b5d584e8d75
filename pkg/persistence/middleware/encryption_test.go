package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/aldaque/storyloom/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretStory() *domain.Story {
	story := domain.NewStory("vault", domain.StoryOptions{DisplayName: "Vault"})
	story.UpsertMod(domain.Mod{
		ID:      "main",
		Handler: "vault-viewer",
		Intent: domain.Intent{
			Action:     "com.example.view",
			Parameters: map[string]any{"token": "my-secret-sauce"},
		},
	})
	story.SetLink("shared/secret", "hunter2")
	return story
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	key := generateKey(t)
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(underlying)

	ctx := context.Background()
	original := secretStory()

	require.NoError(t, store.Save(ctx, "vault", original))

	// Record at rest exposes the name only.
	raw, err := underlying.Load(ctx, "vault")
	require.NoError(t, err)
	assert.Equal(t, "vault", raw.Name)
	assert.Empty(t, raw.Mods)
	assert.NotContains(t, raw.Links, "shared/secret")

	loaded, err := store.Load(ctx, "vault")
	require.NoError(t, err)
	assert.Equal(t, original.Mods, loaded.Mods)
	assert.Equal(t, "hunter2", loaded.Links["shared/secret"])
}

func TestEncryptionMiddleware_WrongKeyFails(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()

	writer := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	require.NoError(t, writer.Save(ctx, "vault", secretStory()))

	reader := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := reader.Load(ctx, "vault")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decrypt")
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()

	oldKey := generateKey(t)
	writer := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, writer.Save(ctx, "vault", secretStory()))

	// New active key, old key demoted to fallback.
	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := rotated.Load(ctx, "vault")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", loaded.Links["shared/secret"])
}

func TestEncryptionMiddleware_UnencryptedRecordRejected(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "vault", secretStory()))

	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := store.Load(ctx, "vault")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing encrypted data envelope")
}

func TestEncryptionMiddleware_RequiresAES256Key(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}

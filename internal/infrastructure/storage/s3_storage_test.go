package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/travelcrm/backend/internal/infrastructure/config"
)

func validStorageConfig() *infraconfig.StorageConfig {
	return &infraconfig.StorageConfig{
		Endpoint:          "localhost:9000",
		Region:            "ap-south-1",
		Bucket:            "travelcrm-proofs",
		AccessKey:         "test-access",
		SecretKey:         "test-secret",
		UsePathStyle:      true,
		PresignExpiration: 10 * time.Minute,
	}
}

func TestNewS3ProofStorage(t *testing.T) {
	t.Run("creates storage with valid config", func(t *testing.T) {
		store, err := NewS3ProofStorage(validStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, "travelcrm-proofs", store.Bucket())
		assert.Equal(t, 10*time.Minute, store.presignExpiration)
	})

	t.Run("requires config", func(t *testing.T) {
		_, err := NewS3ProofStorage(nil)
		assert.Error(t, err)
	})

	t.Run("requires bucket", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3ProofStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket")
	})

	t.Run("requires credentials", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.AccessKey = ""
		_, err := NewS3ProofStorage(cfg)
		assert.Error(t, err)

		cfg = validStorageConfig()
		cfg.SecretKey = ""
		_, err = NewS3ProofStorage(cfg)
		assert.Error(t, err)
	})

	t.Run("defaults presign expiration", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.PresignExpiration = 0
		store, err := NewS3ProofStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, store.presignExpiration)
	})

	t.Run("applies options", func(t *testing.T) {
		store, err := NewS3ProofStorage(validStorageConfig(),
			WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, store.presignExpiration)
	})
}

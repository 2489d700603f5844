package storage

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://cdn.example.com/assets/")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/assets/tournaments/1/emblem.png", PublicURL(base, "tournaments/1/emblem.png"))
	assert.Equal(t, "https://cdn.example.com/assets/tournaments/1/emblem.png", PublicURL(base, "/tournaments/1/emblem.png"))
	assert.Empty(t, PublicURL(base, ""))
	assert.Empty(t, PublicURL(nil, "key"))
}

func TestCloudflareR2UploaderConfig_Configured(t *testing.T) {
	cfg := CloudflareR2UploaderConfig{AccountID: "acc", AccessKeyID: "id", SecretAccessKey: "secret", BucketName: "b"}
	assert.False(t, cfg.Configured())

	cfg.PublicBaseURL = "https://cdn.example.com"
	assert.True(t, cfg.Configured())
}

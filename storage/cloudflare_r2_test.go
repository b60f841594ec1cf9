package storage

import (
	"context"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "exports/g1/FH5-000001.xlsx", "https://cdn.example.com/exports/g1/FH5-000001.xlsx"},
		{"https://cdn.example.com/", "/exports/a.png", "https://cdn.example.com/exports/a.png"},
		{"https://pub.r2.dev/bucket", "a.png", "https://pub.r2.dev/bucket/a.png"},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		base, err := url.Parse(tt.base)
		require.NoError(t, err)
		assert.Equal(t, tt.want, PublicURL(base, tt.key), tt.base+" + "+tt.key)
	}
}

func TestNewCloudflareR2Uploader_Config(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"}, logger)
	assert.Error(t, err)

	cfg := CloudflareR2UploaderConfig{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "exports",
		PublicBaseURL:   "not a url",
	}
	_, err = NewCloudflareR2Uploader(context.Background(), cfg, logger)
	assert.Error(t, err)

	cfg.PublicBaseURL = "https://cdn.example.com"
	u, err := NewCloudflareR2Uploader(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x/y.png", u.GetPublicURL("x/y.png"))
}

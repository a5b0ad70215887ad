// Package storage keeps export archives in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const DefaultPresignExpiry = 15 * time.Minute

var ErrArchiveDisabled = errors.New("export archive storage is not configured")

type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PresignExpiry time.Duration
}

func (cfg Config) Enabled() bool {
	return strings.TrimSpace(cfg.Endpoint) != "" && strings.TrimSpace(cfg.Bucket) != ""
}

type ArchivedObject struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Size      int64     `json:"size"`
}

type ArchiveStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewArchiveStore connects and makes sure the bucket exists.
func NewArchiveStore(ctx context.Context, cfg Config) (*ArchiveStore, error) {
	if !cfg.Enabled() {
		return nil, ErrArchiveDisabled
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &ArchiveStore{client: client, bucket: cfg.Bucket, expiry: expiry}, nil
}

// Put uploads payload under key and returns a presigned GET URL for it.
func (store *ArchiveStore) Put(ctx context.Context, key string, contentType string, payload []byte, now time.Time) (ArchivedObject, error) {
	info, err := store.client.PutObject(ctx, store.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return ArchivedObject{}, fmt.Errorf("upload %s: %w", key, err)
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf(`attachment; filename="%s"`, archiveFileName(key)))
	presigned, err := store.client.PresignedGetObject(ctx, store.bucket, key, store.expiry, params)
	if err != nil {
		return ArchivedObject{}, fmt.Errorf("presign %s: %w", key, err)
	}

	return ArchivedObject{
		Key:       key,
		URL:       presigned.String(),
		ExpiresAt: now.UTC().Add(store.expiry),
		Size:      info.Size,
	}, nil
}

// ArchiveKey groups archives per user and orders them by time.
func ArchiveKey(userID string, now time.Time, extension string) string {
	return fmt.Sprintf("exports/%s/consultations-%s.%s", userID, now.UTC().Format("20060102T150405Z"), strings.TrimPrefix(extension, "."))
}

func archiveFileName(key string) string {
	if index := strings.LastIndex(key, "/"); index >= 0 {
		return key[index+1:]
	}
	return key
}

// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package objectstore wraps an S3 compatible bucket (MinIO, Supabase Storage, S3)
// holding publicly readable objects.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type (
	// Note: For env parsing to work, we must export all struct fields
	Config struct {
		Endpoint  string `env:"ENDPOINT"   envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY" envDefault:"minioadmin"`
		SecretKey string `env:"SECRET_KEY" envDefault:"minioadmin"`
		UseSSL    bool   `env:"USE_SSL"    envDefault:"false"`
		Region    string `env:"REGION"`
		Bucket    string `env:"BUCKET"     envDefault:"profile-photos"`

		// PublicBaseURL prefixes "<bucket>/<key>" in returned URLs.
		// Defaults to the endpoint URL.
		PublicBaseURL string `env:"PUBLIC_BASE_URL"`
		// PublicRead applies an anonymous read policy when the bucket is created.
		PublicRead bool `env:"PUBLIC_READ" envDefault:"true"`
	}

	Client struct {
		client  *minio.Client
		bucket  string
		baseURL string
		cfg     Config
	}
)

const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

func New(cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket name is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = client.EndpointURL().String()
	}

	return &Client{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/"),
		cfg:     cfg,
	}, nil
}

// EnsureBucket creates the bucket when missing.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.cfg.Region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	slog.InfoContext(ctx, "created object storage bucket", slog.String("bucket", c.bucket))

	if c.cfg.PublicRead {
		if err := c.client.SetBucketPolicy(ctx, c.bucket, fmt.Sprintf(publicReadPolicy, c.bucket)); err != nil {
			return fmt.Errorf("failed to set bucket policy: %w", err)
		}
	}
	return nil
}

// Put uploads data under key and returns the public URL of the object.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return PublicURL(c.baseURL, c.bucket, key), nil
}

func (c *Client) Remove(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// KeyFromURL extracts the object key from a URL returned by Put.
func (c *Client) KeyFromURL(publicURL string) (string, bool) {
	return KeyFromURL(c.bucket, publicURL)
}

// PublicURL joins the public base, bucket and key.
func PublicURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL returns everything after the "/<bucket>/" path segment.
func KeyFromURL(bucket, publicURL string) (string, bool) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", false
	}
	marker := "/" + bucket + "/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return "", false
	}
	key := u.Path[idx+len(marker):]
	if key == "" {
		return "", false
	}
	return key, true
}

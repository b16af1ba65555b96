// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client used by
// the admin to upload cover images and video thumbnails directly from the
// browser. It wraps the AWS SDK v2 and is configured for path-style access,
// which MinIO, CEPH and most S3 clones require.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"vivabem/internal/slug"
)

// UploadExpiry is how long a presigned upload URL stays valid.
const UploadExpiry = 15 * time.Minute

// ErrNotConfigured is returned when uploads are requested but no object
// storage endpoint or credentials were configured.
var ErrNotConfigured = errors.New("object storage not configured")

// ErrContentType is returned for uploads that are not images.
var ErrContentType = errors.New("unsupported content type")

// allowedTypes maps accepted upload content types to file extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// Upload describes a presigned PUT the client performs itself.
type Upload struct {
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Client wraps an S3 client for presigned uploads into one public bucket.
type Client struct {
	presigner *s3.PresignClient
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for public files
	now       func() time.Time
	newID     func() string
}

// New creates a storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to start
// without storage.
func New(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		presigner: s3.NewPresignClient(s3Client),
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// PresignUpload returns a presigned PUT URL for an image named after
// filename, plus the public URL the object will be served from. The bucket
// policy is expected to allow anonymous reads under uploads/. A nil client
// reports ErrNotConfigured.
func (c *Client) PresignUpload(ctx context.Context, filename, contentType string) (*Upload, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}

	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContentType, contentType)
	}

	key := ObjectKey(c.now(), c.newID(), filename, ext)

	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(UploadExpiry))
	if err != nil {
		return nil, fmt.Errorf("s3 presign %s/%s: %w", c.bucket, key, err)
	}

	return &Upload{
		UploadURL: req.URL,
		PublicURL: c.FileURL(key),
		Key:       key,
		ExpiresAt: c.now().Add(UploadExpiry).UTC(),
	}, nil
}

// FileURL returns the public URL for an object key. Uses the configured
// public URL if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// ObjectKey builds "uploads/YYYY/MM/<id>-<slug><ext>" from the original
// filename. The slug part is dropped when the name has no usable characters.
func ObjectKey(now time.Time, id, filename, ext string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	name := id
	if s := slug.Generate(base); s != "" {
		if len(s) > 60 {
			s = strings.Trim(s[:60], "-")
		}
		name += "-" + s
	}
	return fmt.Sprintf("uploads/%04d/%02d/%s%s", now.Year(), int(now.Month()), name, ext)
}

// Package aws_s3 contains the blob store adapter holding user bundles
// (client-computed encrypted snapshots) in an S3 bucket.
package aws_s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nuibits/userbase"
)

// Bundles can be big; stream in 8MB parts so upload memory stays bounded
// regardless of body size.
const uploadPartSize = 8 * 1024 * 1024

type bundleStore struct {
	bucketName string
	s3Client   *s3.Client
	uploader   *manager.Uploader
}

// NewBundleStore returns an S3-backed implementation of userbase.BundleStore
// storing bundles in the named bucket under "{userID}/{bundleSeqNo}" keys.
func NewBundleStore(s3Client *s3.Client, bucketName string) (userbase.BundleStore, error) {
	if s3Client == nil {
		return nil, fmt.Errorf("s3Client parameter can't be nil")
	}
	uploader := manager.NewUploader(s3Client, func(u *manager.Uploader) {
		u.PartSize = uploadPartSize
	})
	return &bundleStore{
		bucketName: bucketName,
		s3Client:   s3Client,
		uploader:   uploader,
	}, nil
}

// Upload streams the body into the bucket. The manager uploader reads the
// body in parts, it never buffers the whole bundle.
func (b *bundleStore) Upload(ctx context.Context, key string, contentType string, body io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return userbase.NewError(userbase.TransientFailure,
			fmt.Errorf("couldn't upload bundle %s to bucket %s, details: %w", key, b.bucketName, err))
	}
	return nil
}

// Download returns the object's body stream together with the content length
// and MIME type the client uploaded it with.
func (b *bundleStore) Download(ctx context.Context, key string) (userbase.BundleObject, error) {
	result, err := b.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return userbase.BundleObject{}, userbase.Errorf(userbase.NotFound, "bundle %s not found", key)
		}
		return userbase.BundleObject{}, userbase.NewError(userbase.TransientFailure,
			fmt.Errorf("couldn't fetch bundle %s from bucket %s, details: %w", key, b.bucketName, err))
	}
	o := userbase.BundleObject{
		Body: result.Body,
	}
	if result.ContentLength != nil {
		o.ContentLength = *result.ContentLength
	}
	if result.ContentType != nil {
		o.ContentType = *result.ContentType
	}
	return o, nil
}

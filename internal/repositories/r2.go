package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rohits-web03/formstore/internal/config"
)

// R2Bucket keeps form artifacts in a Cloudflare R2 bucket. Storage-relative
// paths map to object keys under an optional prefix; a directory is every
// object sharing its key as prefix.
type R2Bucket struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewR2Bucket initializes the R2 client using static credentials and custom endpoint.
func NewR2Bucket(cfg config.R2Config) (*R2Bucket, error) {
	if cfg.AccountID == "" || cfg.BucketName == "" {
		return nil, errors.New("r2: account id and bucket name are required")
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return NewR2BucketWithClient(client, cfg.BucketName, cfg.Prefix), nil
}

func NewR2BucketWithClient(client *s3.Client, bucket, prefix string) *R2Bucket {
	return &R2Bucket{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (b *R2Bucket) key(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(rel, "\\", "/")), "/")
	if b.prefix == "" {
		return rel
	}
	return b.prefix + "/" + rel
}

// Exists checks if an object, or any object below it, exists in the bucket.
func (b *R2Bucket) Exists(ctx context.Context, rel string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(rel)),
	})
	if err == nil {
		return true, nil
	}
	var nsk *s3types.NotFound
	if !errors.As(err, &nsk) {
		return false, err
	}
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		Prefix:  aws.String(b.key(rel) + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, err
	}
	return len(out.Contents) > 0, nil
}

// Open streams an object's content.
func (b *R2Bucket) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(rel)),
	})
	if err != nil {
		return nil, fmt.Errorf("r2: get %s: %w", rel, err)
	}
	return out.Body, nil
}

// Remove deletes the object at rel and every object below rel/. Missing
// objects are not an error.
func (b *R2Bucket) Remove(ctx context.Context, rel string) error {
	key := b.key(rel)
	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("r2: delete %s: %w", key, err)
	}

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(key + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("r2: list %s: %w", key, err)
		}
		if len(page.Contents) == 0 {
			continue
		}
		ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
		}
		if _, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		}); err != nil {
			return fmt.Errorf("r2: delete under %s: %w", key, err)
		}
	}
	return nil
}

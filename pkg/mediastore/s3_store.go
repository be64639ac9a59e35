package mediastore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type S3Options struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		if opts.Endpoint != "" {
			baseURL = joinURL(opts.Endpoint, opts.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
		}
	}

	return newS3StoreWithClient(client, opts.Bucket, baseURL), nil
}

func newS3StoreWithClient(client s3API, bucket, baseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, baseURL: baseURL}
}

func (s *S3Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) (Object, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return Object{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return Object{Key: key, URL: s.URL(key)}, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	if out != nil && len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("delete objects: %d failed, first %s: %s",
			len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, prefix string, cursor string, limit int) (Page, error) {
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if limit > 0 {
		in.MaxKeys = aws.Int32(int32(limit))
	}
	if cursor != "" {
		in.ContinuationToken = aws.String(cursor)
	}

	out, err := s.client.ListObjectsV2(ctx, in)
	if err != nil {
		return Page{}, fmt.Errorf("list objects %s: %w", prefix, err)
	}

	page := Page{Keys: make([]string, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		page.Keys = append(page.Keys, aws.ToString(obj.Key))
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextCursor = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// DeleteFolder removes the zero-byte folder marker some consoles create for
// a prefix. A missing marker is not an error.
func (s *S3Store) DeleteFolder(ctx context.Context, prefix string) error {
	err := s.Delete(ctx, folderMarker(prefix))
	if errors.Is(err, ErrObjectNotFound) {
		return nil
	}
	return err
}

func (s *S3Store) URL(key string) string {
	return joinURL(s.baseURL, key)
}

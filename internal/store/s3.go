package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Bucket keeps tables under a prefix of one S3 bucket.
type Bucket struct {
	Client S3API
	Name   string
	Prefix string
}

func (b Bucket) key(k string) string {
	if p := strings.Trim(b.Prefix, "/"); p != "" {
		return path.Join(p, k)
	}
	return k
}

func (b Bucket) Location(k string) string { return "s3://" + b.Name + "/" + b.key(k) }

func contentType(k string) string {
	switch path.Ext(k) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}

func (b Bucket) Put(ctx context.Context, k string, body []byte) error {
	_, err := b.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.Name),
		Key:         aws.String(b.key(k)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType(k)),
	})
	return err
}

func (b Bucket) Get(ctx context.Context, k string) ([]byte, error) {
	out, err := b.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.Name),
		Key:    aws.String(b.key(k)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

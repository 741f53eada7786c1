package kv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// ObjectBucket is the subset of *oss.Bucket the store relies on.
type ObjectBucket interface {
	GetObject(objectKey string, options ...oss.Option) (io.ReadCloser, error)
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
}

type OSSStore struct {
	bucket ObjectBucket
	prefix string
}

func NewOSSStore(bucket ObjectBucket, prefix string) *OSSStore {
	return &OSSStore{bucket: bucket, prefix: prefix}
}

func BuildBucket(endpoint, accessKey, secretKey, bucketName string) (*oss.Bucket, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, err
	}
	return cli.Bucket(bucketName)
}

func (s *OSSStore) objectKey(key string) string {
	return path.Join(s.prefix, key+".json")
}

func (s *OSSStore) Load(ctx context.Context, key string) ([]byte, error) {
	span := startObjectSpan(ctx, "get-object", s.objectKey(key))
	if span != nil {
		defer span.Finish()
	}

	r, err := s.bucket.GetObject(s.objectKey(key))
	if span != nil {
		ext.Error.Set(span, err != nil)
	}
	if err != nil {
		var serviceErr oss.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.Code == "NoSuchKey" {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *OSSStore) Save(ctx context.Context, key string, value []byte) error {
	span := startObjectSpan(ctx, "put-object", s.objectKey(key))
	if span != nil {
		defer span.Finish()
	}

	err := s.bucket.PutObject(s.objectKey(key), bytes.NewReader(value), oss.ContentType("application/json"))
	if span != nil {
		ext.Error.Set(span, err != nil)
	}
	return err
}

func startObjectSpan(ctx context.Context, operation, objectKey string) opentracing.Span {
	if ctx == nil {
		return nil
	}
	parentSpan := opentracing.SpanFromContext(ctx)
	if parentSpan == nil {
		return nil
	}
	sp := parentSpan.Tracer().StartSpan(operation, opentracing.ChildOf(parentSpan.Context()))
	sp.SetTag("object-key", objectKey)
	return sp
}

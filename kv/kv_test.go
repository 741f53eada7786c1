package kv_test

import (
	"bytes"
	"context"
	"defectboard/config"
	"defectboard/kv"
	"defectboard/testinfra"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	. "github.com/onsi/gomega"
)

func verifyRoundTrip(s kv.Store) {
	ctx := context.Background()

	_, err := s.Load(ctx, "workflowNodes")
	Expect(err).To(Equal(kv.ErrKeyNotFound))

	Expect(s.Save(ctx, "workflowNodes", []byte(`[{"id":"1"}]`))).To(Succeed())
	v, err := s.Load(ctx, "workflowNodes")
	Expect(err).To(BeNil())
	Expect(string(v)).To(Equal(`[{"id":"1"}]`))

	Expect(s.Save(ctx, "workflowNodes", []byte(`[]`))).To(Succeed())
	v, err = s.Load(ctx, "workflowNodes")
	Expect(err).To(BeNil())
	Expect(string(v)).To(Equal(`[]`))
}

func TestMemoryStore(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should save and load values", func(t *testing.T) {
		verifyRoundTrip(kv.NewMemoryStore())
	})

	t.Run("should not share the saved slice with callers", func(t *testing.T) {
		s := kv.NewMemoryStore()
		value := []byte("true")
		Expect(s.Save(context.Background(), "workflowLayout", value)).To(Succeed())
		value[0] = 'x'
		v, _ := s.Load(context.Background(), "workflowLayout")
		Expect(string(v)).To(Equal("true"))
	})
}

func TestFileStore(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should save and load values", func(t *testing.T) {
		s, err := kv.NewFileStore(t.TempDir())
		Expect(err).To(BeNil())
		verifyRoundTrip(s)
	})

	t.Run("should write one json file per key without leftovers", func(t *testing.T) {
		dir := t.TempDir()
		s, err := kv.NewFileStore(dir)
		Expect(err).To(BeNil())
		Expect(s.Save(context.Background(), "workflowEdges", []byte("[]"))).To(Succeed())

		files, err := ioutil.ReadDir(dir)
		Expect(err).To(BeNil())
		Expect(len(files)).To(Equal(1))
		Expect(files[0].Name()).To(Equal("workflowEdges.json"))
	})

	t.Run("should reject keys escaping the directory", func(t *testing.T) {
		s, err := kv.NewFileStore(t.TempDir())
		Expect(err).To(BeNil())
		Expect(s.Save(context.Background(), "../evil", []byte("x"))).ToNot(Succeed())
		_, err = s.Load(context.Background(), "a/b")
		Expect(err).ToNot(BeNil())
	})
}

func TestDatabaseStore(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should save and load values", func(t *testing.T) {
		db := testinfra.StartSqliteTestDatabase("kv")
		defer testinfra.StopTestDatabase(db)

		s, err := kv.NewDatabaseStore(db.DS)
		Expect(err).To(BeNil())
		verifyRoundTrip(s)
	})
}

type fakeBucket struct {
	objects map[string][]byte
	failPut error
}

func (b *fakeBucket) GetObject(key string, options ...oss.Option) (io.ReadCloser, error) {
	v, ok := b.objects[key]
	if !ok {
		return nil, oss.ServiceError{Code: "NoSuchKey", StatusCode: 404}
	}
	return ioutil.NopCloser(bytes.NewReader(v)), nil
}

func (b *fakeBucket) PutObject(key string, r io.Reader, options ...oss.Option) error {
	if b.failPut != nil {
		return b.failPut
	}
	v, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	b.objects[key] = v
	return nil
}

func TestOSSStore(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should save and load values under prefix", func(t *testing.T) {
		bucket := &fakeBucket{objects: map[string][]byte{}}
		s := kv.NewOSSStore(bucket, "workflow")
		verifyRoundTrip(s)
		Expect(bucket.objects).To(HaveKey("workflow/workflowNodes.json"))
	})

	t.Run("should surface put failures", func(t *testing.T) {
		bucket := &fakeBucket{objects: map[string][]byte{}, failPut: errors.New("bucket unavailable")}
		s := kv.NewOSSStore(bucket, "workflow")
		Expect(s.Save(context.Background(), "workflowNodes", []byte("[]"))).To(MatchError("bucket unavailable"))
	})
}

func TestOpen(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should open memory and file stores", func(t *testing.T) {
		s, err := kv.Open(&config.Config{Workflow: config.WorkflowConfig{Storage: "memory"}}, nil)
		Expect(err).To(BeNil())
		Expect(s).To(BeAssignableToTypeOf(&kv.MemoryStore{}))

		dir := filepath.Join(t.TempDir(), "nested")
		s, err = kv.Open(&config.Config{Workflow: config.WorkflowConfig{Storage: "file", FileDir: dir}}, nil)
		Expect(err).To(BeNil())
		Expect(s).To(BeAssignableToTypeOf(&kv.FileStore{}))
		_, err = os.Stat(dir)
		Expect(err).To(BeNil())
	})

	t.Run("should reject database storage without data source", func(t *testing.T) {
		_, err := kv.Open(&config.Config{Workflow: config.WorkflowConfig{Storage: "database"}}, nil)
		Expect(err).To(MatchError("kv: database storage requires a data source"))
	})

	t.Run("should reject unknown storage", func(t *testing.T) {
		_, err := kv.Open(&config.Config{Workflow: config.WorkflowConfig{Storage: "tape"}}, nil)
		Expect(err).To(MatchError("kv: unknown storage 'tape'"))
	})
}

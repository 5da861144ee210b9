package plugin

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/livyctl/livyctl/internal/api"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	key     string
	body    string
	expires *time.Time
}

type fakePutter struct {
	mu    sync.Mutex
	calls map[string]putCall
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]putCall{}
	}
	f.calls[aws.ToString(in.Key)] = putCall{
		key:     aws.ToString(in.Key),
		body:    string(body),
		expires: in.Expires,
	}
	return &s3.PutObjectOutput{}, nil
}

var (
	fixedNow  = time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	fixedUUID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
)

func newTestUploader(t *testing.T, putter ObjectPutter, cfg config.UploadS3Config) *UploadS3 {
	t.Helper()
	u, err := NewUploadS3(putter, cfg)
	require.NoError(t, err)
	u.now = func() time.Time { return fixedNow }
	u.newUUID = func() uuid.UUID { return fixedUUID }
	return u
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestUploadS3_PreSubmit(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "main.py", "print('hi')")
	dep := writeFile(t, dir, "dep.zip", "zip")
	data := writeFile(t, dir, "lookup.csv", "a,b")

	putter := &fakePutter{}
	u := newTestUploader(t, putter, config.UploadS3Config{
		Bucket:       "example-bucket",
		FolderFormat: `/{{.ScriptName}}-{{.Time.Format "20060102"}}-{{.UUID}}/`,
		ExpireDays:   3,
	})

	req := &api.CreateBatchRequest{
		File:    script,
		PyFiles: []string{dep, "s3://other/lib.zip"},
		Files:   []string{data},
		Jars:    []string{"S3://jars/spark-avro.jar"},
	}
	require.NoError(t, u.PreSubmit(context.Background(), req))

	folder := "main-20210501-6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	assert.Equal(t, "s3://example-bucket/"+folder+"/main.py", req.File)
	assert.Equal(t, []string{"s3://example-bucket/" + folder + "/py_files/dep.zip", "s3://other/lib.zip"}, req.PyFiles)
	assert.Equal(t, []string{"s3://example-bucket/" + folder + "/files/lookup.csv"}, req.Files)
	assert.Equal(t, []string{"S3://jars/spark-avro.jar"}, req.Jars)

	require.Len(t, putter.calls, 3)
	call := putter.calls[folder+"/main.py"]
	assert.Equal(t, "print('hi')", call.body)
	require.NotNil(t, call.expires)
	assert.Equal(t, fixedNow.AddDate(0, 0, 3), *call.expires)
}

func TestUploadS3_NoExpireDate(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "job.py", "")

	for _, days := range []int{0, -1} {
		putter := &fakePutter{}
		u := newTestUploader(t, putter, config.UploadS3Config{Bucket: "b", FolderFormat: "f", ExpireDays: days})

		req := &api.CreateBatchRequest{File: script}
		require.NoError(t, u.PreSubmit(context.Background(), req))
		assert.Nil(t, putter.calls["f/job.py"].expires)
	}
}

func TestUploadS3_Errors(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "main.py", "")

	t.Run("missing file", func(t *testing.T) {
		u := newTestUploader(t, &fakePutter{}, config.UploadS3Config{Bucket: "b", FolderFormat: "f"})
		req := &api.CreateBatchRequest{File: script, Files: []string{filepath.Join(dir, "missing.txt")}}
		assert.ErrorContains(t, u.PreSubmit(context.Background(), req), "missing.txt")
	})

	t.Run("put failure keeps the local path", func(t *testing.T) {
		u := newTestUploader(t, &fakePutter{err: errors.New("access denied")}, config.UploadS3Config{Bucket: "b", FolderFormat: "f"})
		req := &api.CreateBatchRequest{File: script}
		assert.ErrorContains(t, u.PreSubmit(context.Background(), req), "access denied")
		assert.Equal(t, script, req.File)
	})

	t.Run("bad folder template", func(t *testing.T) {
		u := newTestUploader(t, &fakePutter{}, config.UploadS3Config{Bucket: "b", FolderFormat: "{{.Nope}}"})
		req := &api.CreateBatchRequest{File: script}
		assert.ErrorContains(t, u.PreSubmit(context.Background(), req), "folder_format")
	})
}

func TestNewUploadS3_Validation(t *testing.T) {
	tcs := []struct {
		name string
		cfg  config.UploadS3Config
	}{
		{name: "missing bucket", cfg: config.UploadS3Config{FolderFormat: "f"}},
		{name: "missing folder", cfg: config.UploadS3Config{Bucket: "b"}},
		{name: "unparsable folder", cfg: config.UploadS3Config{Bucket: "b", FolderFormat: "{{"}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUploadS3(&fakePutter{}, tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestIsS3Path(t *testing.T) {
	assert.True(t, isS3Path("s3://bucket/key"))
	assert.True(t, isS3Path("S3://bucket/key"))
	assert.False(t, isS3Path("/tmp/s3://x"))
	assert.False(t, isS3Path("s3:"))
}

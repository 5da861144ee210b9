package plugin

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/livyctl/livyctl/internal/api"
	"github.com/livyctl/livyctl/pkg/config"
	"golang.org/x/sync/errgroup"
)

const (
	uploadS3Name         = "upload_s3"
	maxConcurrentUploads = 4
)

func init() {
	Register(uploadS3Name, newUploadS3)
}

// ObjectPutter is the part of the S3 client the hook uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// folderData is available to plugin.upload_s3.folder_format.
type folderData struct {
	ScriptName string
	Time       time.Time
	UUID       string
}

// UploadS3 copies local script and dependency files to S3 and points the
// request at the uploaded objects, so the cluster can read them.
type UploadS3 struct {
	client     ObjectPutter
	bucket     string
	folder     *template.Template
	expireDays int

	now     func() time.Time
	newUUID func() uuid.UUID
}

func newUploadS3(ctx context.Context, cfg *config.Config) (Hook, error) {
	s3cfg := cfg.UploadS3
	if s3cfg.Bucket == "" {
		return nil, fmt.Errorf("plugin.upload_s3.bucket is not configured")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if s3cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s3cfg.Region))
	}
	// Static keys win over the default chain, e.g. for a MinIO endpoint
	if s3cfg.AccessKeyID != "" || s3cfg.SecretAccessKey != "" {
		if s3cfg.AccessKeyID == "" || s3cfg.SecretAccessKey == "" {
			return nil, fmt.Errorf("plugin.upload_s3.access_key_id and plugin.upload_s3.secret_access_key must be set together")
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// MinIO and other S3-compatible stores
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewUploadS3(client, s3cfg)
}

// NewUploadS3 creates the hook on top of an S3 client.
func NewUploadS3(client ObjectPutter, cfg config.UploadS3Config) (*UploadS3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("plugin.upload_s3.bucket is not configured")
	}
	if cfg.FolderFormat == "" {
		return nil, fmt.Errorf("plugin.upload_s3.folder_format is not configured")
	}

	folder, err := template.New("folder_format").Option("missingkey=error").Parse(cfg.FolderFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid plugin.upload_s3.folder_format: %w", err)
	}

	expireDays := cfg.ExpireDays
	if expireDays < 0 {
		slog.Warn("expire_days must be a positive integer, uploading without expire date", "expire_days", expireDays)
		expireDays = 0
	}

	return &UploadS3{
		client:     client,
		bucket:     cfg.Bucket,
		folder:     folder,
		expireDays: expireDays,
		now:        time.Now,
		newUUID:    uuid.New,
	}, nil
}

func (u *UploadS3) Name() string {
	return uploadS3Name
}

// upload is one local file to copy; dst receives the s3:// URI.
type upload struct {
	src string
	key string
	dst *string
}

// PreSubmit uploads every local path of req and rewrites it to its s3:// URI.
// Paths already on S3 are left alone.
func (u *UploadS3) PreSubmit(ctx context.Context, req *api.CreateBatchRequest) error {
	folder, err := u.folderName(req.File)
	if err != nil {
		return err
	}
	slog.Debug("Uploading files", "bucket", u.bucket, "folder", folder)

	var uploads []upload
	add := func(kind string, p *string) {
		if isS3Path(*p) {
			return
		}
		uploads = append(uploads, upload{
			src: *p,
			key: path.Join(folder, kind, filepath.Base(*p)),
			dst: p,
		})
	}

	add("", &req.File)
	for kind, list := range map[string][]string{
		"jars":     req.Jars,
		"py_files": req.PyFiles,
		"files":    req.Files,
		"archives": req.Archives,
	} {
		for i := range list {
			add(kind, &list[i])
		}
	}

	var expires *time.Time
	if u.expireDays > 0 {
		expires = aws.Time(u.now().UTC().AddDate(0, 0, u.expireDays))
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentUploads)
	for _, up := range uploads {
		eg.Go(func() error {
			return u.put(ctx, up, expires)
		})
	}
	return eg.Wait()
}

func (u *UploadS3) put(ctx context.Context, up upload, expires *time.Time) error {
	f, err := os.Open(up.src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", up.src, err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", up.src, err)
	}

	slog.Info("Upload file",
		"src", up.src,
		"dst", fmt.Sprintf("s3://%s/%s", u.bucket, up.key),
		"size", humanize.Bytes(uint64(info.Size())), //nolint:gosec // Size of a regular file
	)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(up.key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		Expires:       expires,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", up.src, u.bucket, up.key, err)
	}

	*up.dst = fmt.Sprintf("s3://%s/%s", u.bucket, up.key)
	return nil
}

func (u *UploadS3) folderName(script string) (string, error) {
	base := filepath.Base(script)
	data := folderData{
		ScriptName: strings.TrimSuffix(base, filepath.Ext(base)),
		Time:       u.now(),
		UUID:       u.newUUID().String(),
	}

	var buf bytes.Buffer
	if err := u.folder.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to expand plugin.upload_s3.folder_format: %w", err)
	}
	return strings.Trim(buf.String(), "/"), nil
}

func isS3Path(p string) bool {
	return len(p) >= 5 && strings.EqualFold(p[:5], "s3://")
}

package data

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"moviereview/internal/biz"
	"moviereview/internal/conf"
)

const maxImageSize = 5 << 20

type imageHost struct {
	client  *minio.Client
	bucket  string
	baseURL string
	log     *log.Helper
}

// disabledImageHost rejects every upload; used when no storage endpoint is configured.
type disabledImageHost struct{}

func (disabledImageHost) Upload(context.Context, string, *biz.Image) (string, error) {
	return "", biz.ErrImageHostingDisabled
}

// NewImageHost creates the MinIO backed image host
func NewImageHost(c *conf.Data, logger log.Logger) (biz.ImageHost, error) {
	l := log.NewHelper(log.With(logger, "module", "data/image"))
	if c.Storage == nil || c.Storage.Endpoint == "" {
		l.Info("storage endpoint not configured, image uploads disabled")
		return disabledImageHost{}, nil
	}
	s := c.Storage

	client, err := minio.New(s.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
		Secure: s.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	h := &imageHost{
		client:  client,
		bucket:  s.Bucket,
		baseURL: publicBaseURL(s),
		log:     l,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.ensureBucket(ctx); err != nil {
		l.Warnf("failed to prepare bucket %s: %v", s.Bucket, err)
	} else {
		l.Infof("connected to minio at %s", s.Endpoint)
	}
	return h, nil
}

func publicBaseURL(s *conf.Storage) string {
	if s.PublicURL != "" {
		return strings.TrimRight(s.PublicURL, "/")
	}
	scheme := "http"
	if s.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, s.Endpoint, s.Bucket)
}

func (h *imageHost) ensureBucket(ctx context.Context) error {
	exists, err := h.client.BucketExists(ctx, h.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return h.client.MakeBucket(ctx, h.bucket, minio.MakeBucketOptions{})
}

// Upload stores the image under folder with a generated name and returns its public URL.
func (h *imageHost) Upload(ctx context.Context, folder string, image *biz.Image) (string, error) {
	if err := checkImage(image); err != nil {
		return "", err
	}

	object := objectName(folder, image.Name)
	size := image.Size
	if size <= 0 {
		size = -1
	}
	_, err := h.client.PutObject(ctx, h.bucket, object, image.Body, size, minio.PutObjectOptions{
		ContentType: image.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	h.log.WithContext(ctx).Infof("uploaded image %s/%s", h.bucket, object)
	return h.baseURL + "/" + object, nil
}

func checkImage(image *biz.Image) error {
	if image == nil || image.Body == nil {
		return biz.InvalidArgument("image is required")
	}
	if image.Size > maxImageSize {
		return biz.InvalidArgument("image must be at most %d bytes", maxImageSize)
	}
	if image.ContentType != "" && !strings.HasPrefix(image.ContentType, "image/") {
		return biz.InvalidArgument("unsupported image type %q", image.ContentType)
	}
	return nil
}

// objectName keeps only the extension of the client supplied name.
func objectName(folder, filename string) string {
	return path.Join(folder, biz.NewID()+strings.ToLower(filepath.Ext(filename)))
}

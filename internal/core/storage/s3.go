package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appcfg "go-gin-contacts/internal/core/config"
	"go-gin-contacts/pkg/utils"
)

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// AvatarStore 头像上传到 S3 兼容存储（MinIO 等）
type AvatarStore struct {
	client  putter
	bucket  string
	baseURL string
}

func NewS3(ctx context.Context, c appcfg.S3) (*AvatarStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	base := c.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
	}
	return newStore(client, c.Bucket, base), nil
}

func newStore(client putter, bucket, baseURL string) *AvatarStore {
	return &AvatarStore{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

// AvatarKey avatars/<uid>/<yyyy>/<mm>/<id><ext>
func AvatarKey(uid uint, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("avatars/%d/%04d/%02d/%s%s", uid, now.Year(), now.Month(), utils.NewID(), ext)
}

// Upload 返回对象的公开 URL
func (s *AvatarStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

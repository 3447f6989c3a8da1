package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestUpload(t *testing.T) {
	p := &fakePutter{}
	s := newStore(p, "avatars", "http://minio:9000/avatars/")

	url, err := s.Upload(context.Background(), "avatars/7/a.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/avatars/avatars/7/a.png", url)
	assert.Equal(t, "avatars", aws.ToString(p.in.Bucket))
	assert.Equal(t, "image/png", aws.ToString(p.in.ContentType))
	assert.Equal(t, "png", p.body)
}

func TestUpload_Error(t *testing.T) {
	s := newStore(&fakePutter{err: errors.New("denied")}, "b", "http://x")
	_, err := s.Upload(context.Background(), "k", strings.NewReader(""), "image/png")
	assert.ErrorContains(t, err, "denied")
}

func TestAvatarKey(t *testing.T) {
	k := AvatarKey(7, "Me.PNG", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^avatars/7/2024/03/[0-9a-f]{32}\.png$`), k)
}

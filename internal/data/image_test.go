package data

import (
	"context"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviereview/internal/biz"
	"moviereview/internal/conf"
)

func TestNewImageHostDisabled(t *testing.T) {
	t.Parallel()

	host, err := NewImageHost(&conf.Data{}, log.DefaultLogger)
	require.NoError(t, err)

	_, err = host.Upload(context.Background(), "posters", &biz.Image{Name: "a.png", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, biz.ErrImageHostingDisabled)
}

func TestPublicBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://localhost:9000/images", publicBaseURL(&conf.Storage{Endpoint: "localhost:9000", Bucket: "images"}))
	assert.Equal(t, "https://s3.example.com/images", publicBaseURL(&conf.Storage{Endpoint: "s3.example.com", Bucket: "images", UseSSL: true}))
	assert.Equal(t, "https://cdn.example.com/images", publicBaseURL(&conf.Storage{Endpoint: "minio:9000", Bucket: "images", PublicURL: "https://cdn.example.com/images/"}))
}

func TestObjectName(t *testing.T) {
	t.Parallel()

	name := objectName("posters", "../../Dune Poster.PNG")
	assert.True(t, strings.HasPrefix(name, "posters/"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(name, "posters/"), ".png"), biz.IDLength)
}

func TestCheckImage(t *testing.T) {
	t.Parallel()

	ok := &biz.Image{Name: "a.jpg", ContentType: "image/jpeg", Size: 10, Body: strings.NewReader("x")}
	assert.NoError(t, checkImage(ok))

	for name, img := range map[string]*biz.Image{
		"nil":       nil,
		"no body":   {Name: "a.jpg"},
		"too large": {Name: "a.jpg", Size: maxImageSize + 1, Body: strings.NewReader("x")},
		"not image": {Name: "a.pdf", ContentType: "application/pdf", Body: strings.NewReader("x")},
	} {
		assert.True(t, biz.IsInvalidArgument(checkImage(img)), name)
	}
}

package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepare_ShrinksWideImages(t *testing.T) {
	t.Parallel()

	f, err := Prepare(bytes.NewReader(pngBytes(t, 1600, 400)), "Wide.PNG")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(f.Name, ".jpg"))
	assert.Equal(t, "image/jpeg", f.ContentType)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(f.Data))
	require.NoError(t, err)
	assert.Equal(t, MaxWidth, cfg.Width)
	assert.Equal(t, 200, cfg.Height, "aspect ratio is kept")
}

func TestPrepare_NeverUpscales(t *testing.T) {
	t.Parallel()

	f, err := Prepare(bytes.NewReader(pngBytes(t, 120, 90)), "small.png")
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(f.Data))
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, 90, cfg.Height)
}

func TestPrepare_UniqueNames(t *testing.T) {
	t.Parallel()
	data := pngBytes(t, 10, 10)
	a, err := Prepare(bytes.NewReader(data), "a.png")
	require.NoError(t, err)
	b, err := Prepare(bytes.NewReader(data), "a.png")
	require.NoError(t, err)
	assert.NotEqual(t, a.Name, b.Name)
}

func TestPrepare_Rejects(t *testing.T) {
	t.Parallel()

	_, err := Prepare(strings.NewReader("GIF89a"), "anim.gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Prepare(strings.NewReader("not really a jpeg"), "broken.jpg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func multipartRequest(t *testing.T, files map[string][]string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, names := range files {
		for _, name := range names {
			part, err := mw.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = part.Write(data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.WriteField("title", "x"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/add-product", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(10<<20))
	return r
}

func TestFromForm(t *testing.T) {
	t.Parallel()
	data := pngBytes(t, 20, 20)

	r := multipartRequest(t, map[string][]string{"mainImage": {"m.png"}, "subImages": {"a.png", "b.png"}}, data)
	main, err := FromForm(r, "mainImage")
	require.NoError(t, err)
	require.NotNil(t, main)

	subs, err := AllFromForm(r, "subImages")
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	missing, err := FromForm(r, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

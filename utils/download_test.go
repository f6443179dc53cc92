package utils

import (
	"bytes"
	"image"
	colorpalette "image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var portraitExts = []string{".jpg", ".jpeg", ".png"}

func writeSamplePNG(t *testing.T, w io.Writer) {
	t.Helper()
	if err := png.Encode(w, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("could not encode the sample image: %v", err)
	}
}

func TestUtils_ShouldDownloadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSamplePNG(t, w)
	}))
	defer srv.Close()

	f, err := DownloadImage(srv.URL+"/sample", portraitExts)
	if f != nil {
		defer os.Remove(f.Name())
		defer f.Close()
	}
	if err != nil {
		t.Fatalf("could't download test file: %v", err)
	}

	name := filepath.Base(f.Name())
	if !strings.HasPrefix(name, "eyeson-") || filepath.Ext(name) != ".png" {
		t.Errorf("The downloaded image should have been saved in a png temporary file, got %s", name)
	}
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestUtils_ShouldRejectUnsupportedImageType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := gif.Encode(w, image.NewPaletted(image.Rect(0, 0, 4, 4), colorpalette.Plan9), nil); err != nil {
			t.Errorf("could not encode the sample gif: %v", err)
		}
	}))
	defer srv.Close()

	f, err := DownloadImage(srv.URL, portraitExts)
	assert.Nil(t, f)
	assert.ErrorContains(t, err, ".gif images are not supported")

	f, err = DownloadImage(srv.URL, append(portraitExts, ".gif"))
	if f != nil {
		defer os.Remove(f.Name())
		defer f.Close()
	}
	assert.NoError(t, err)
}

func TestUtils_ShouldRejectNonImageDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not an image</body></html>"))
	}))
	defer srv.Close()

	f, err := DownloadImage(srv.URL, portraitExts)
	assert.Nil(t, f)
	assert.ErrorContains(t, err, "is not a supported image")
}

func TestUtils_ShouldFailOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f, err := DownloadImage(srv.URL, portraitExts)
	assert.Nil(t, f)
	assert.Error(t, err)
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsValidUrl("https://example.com/portraits/anime.png"))
	assert.False(IsValidUrl("portraits/anime.png"))
	assert.False(IsValidUrl("-"))
}

func TestUtils_ShouldDetectImageExt(t *testing.T) {
	assert := assert.New(t)

	buf := new(bytes.Buffer)
	writeSamplePNG(t, buf)

	ext, err := imageExt(buf.Bytes(), portraitExts)
	assert.NoError(err)
	assert.Equal(".png", ext)

	_, err = imageExt(buf.Bytes(), []string{".jpeg"})
	assert.Error(err)

	_, err = imageExt(nil, portraitExts)
	assert.Error(err)
}

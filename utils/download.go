package utils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// sniffLen is the number of leading bytes http.DetectContentType considers.
const sniffLen = 512

// imageTypes maps the sniffed image content types to a file extension.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
}

var httpClient = &http.Client{Timeout: time.Minute}

// DownloadImage downloads a portrait into a temporary file named after its
// sniffed type. Only content whose extension is listed in exts is accepted.
// The caller owns the returned file, which is also returned alongside
// errors raised after its creation.
func DownloadImage(uri string, exts []string) (*os.File, error) {
	res, err := httpClient.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download image file from URI %s: status %v", uri, res.Status)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	ext, err := imageExt(data, exts)
	if err != nil {
		return nil, fmt.Errorf("unable to use %s: %w", uri, err)
	}

	tmpfile, err := os.CreateTemp("", "eyeson-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}
	if _, err := io.Copy(tmpfile, bytes.NewReader(data)); err != nil {
		return tmpfile, fmt.Errorf("unable to copy the source URI into the destination file: %w", err)
	}
	if _, err := tmpfile.Seek(0, io.SeekStart); err != nil {
		return tmpfile, err
	}
	return tmpfile, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	if _, err := url.ParseRequestURI(uri); err != nil {
		return false
	}
	u, err := url.Parse(uri)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// imageExt returns the extension of the sniffed image type when it is one of exts.
func imageExt(data []byte, exts []string) (string, error) {
	ctype := http.DetectContentType(data[:min(len(data), sniffLen)])
	ext, ok := imageTypes[ctype]
	if !ok {
		return "", fmt.Errorf("content type %q is not a supported image", ctype)
	}
	for _, e := range exts {
		if strings.EqualFold(e, ext) || (ext == ".jpg" && strings.EqualFold(e, ".jpeg")) {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%s images are not supported", ext)
}

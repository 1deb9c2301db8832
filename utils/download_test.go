package utils

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("could not encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestUtils_ShouldDownloadImage(t *testing.T) {
	data := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	f, err := DownloadImage(context.Background(), srv.URL+"/sample.png")
	if err != nil {
		t.Fatalf("could't download test file: %v", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != int64(len(data)) {
		t.Errorf("expected %d bytes to be saved, got %d", len(data), fi.Size())
	}
}

func TestUtils_ShouldRejectNonImageDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not an image</body></html>"))
	}))
	defer srv.Close()

	if _, err := DownloadImage(context.Background(), srv.URL); err == nil {
		t.Errorf("a non image payload should have been rejected")
	}
}

func TestUtils_ShouldRejectFailedDownload(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := DownloadImage(context.Background(), srv.URL); err == nil {
		t.Errorf("a 404 response should have been reported")
	}
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	cases := map[string]bool{
		"https://github.com/toposonics/": true,
		"http://localhost:8080/a.png":    true,
		"file:///tmp/a.png":              false,
		"/tmp/a.png":                     false,
		"a.png":                          false,
	}
	for uri, want := range cases {
		if got := IsValidUrl(uri); got != want {
			t.Errorf("IsValidUrl(%q) = %v, want %v", uri, got, want)
		}
	}
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	sampleImg := filepath.Join(t.TempDir(), "sample.png")
	if err := os.WriteFile(sampleImg, pngBytes(t), 0o644); err != nil {
		t.Fatal(err)
	}

	ftype, err := DetectContentType(sampleImg)
	if err != nil {
		t.Fatalf("could not detect content type: %v", err)
	}

	if ftype != "image/png" {
		t.Errorf("Content type expected to be image/png, got: %v", ftype)
	}
}

func TestUtils_DetectContentTypeErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := DetectContentType(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing file")
	}

	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	ftype, err := DetectContentType(empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ftype != "text/plain; charset=utf-8" {
		t.Errorf("unexpected content type for an empty file: %s", ftype)
	}
}

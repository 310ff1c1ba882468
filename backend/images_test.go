package backend

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngStub is a tiny valid-enough payload; content is irrelevant, the
// encoder never inspects image bytes.
var pngStub = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01, 0x02}

func writeTempImage(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing temp image: %v", err)
	}
	return path
}

func TestEncodeImagesRoundTrip(t *testing.T) {
	path := writeTempImage(t, "photo.png", pngStub)

	encoded, err := encodeImages([]string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(encoded) != 1 {
		t.Fatalf("expected 1 encoded image, got %d", len(encoded))
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded[0])
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	if string(decoded) != string(pngStub) {
		t.Error("decoded bytes differ from the original file")
	}
}

func TestEncodeImagesPreservesOrder(t *testing.T) {
	first := writeTempImage(t, "a.jpg", []byte("first"))
	second := writeTempImage(t, "b.jpg", []byte("second"))

	encoded, err := encodeImages([]string{first, second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(encoded) != 2 {
		t.Fatalf("expected 2 images, got %d", len(encoded))
	}
	if encoded[0] != base64.StdEncoding.EncodeToString([]byte("first")) {
		t.Error("first image out of order")
	}
	if encoded[1] != base64.StdEncoding.EncodeToString([]byte("second")) {
		t.Error("second image out of order")
	}
}

func TestEncodeImagesURLPassthrough(t *testing.T) {
	url := "https://example.com/cat.png"
	encoded, err := encodeImages([]string{url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded[0] != url {
		t.Errorf("remote URL must pass through untouched, got %q", encoded[0])
	}
}

func TestEncodeImageDataURLHasMIMEType(t *testing.T) {
	path := writeTempImage(t, "photo.webp", pngStub)

	dataURL, err := encodeImageDataURL(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(dataURL, "data:image/webp;base64,") {
		t.Errorf("expected webp data URL prefix, got %q", dataURL)
	}

	raw := strings.TrimPrefix(dataURL, "data:image/webp;base64,")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("data URL payload is not valid base64: %v", err)
	}
	if string(decoded) != string(pngStub) {
		t.Error("data URL payload differs from the original file")
	}
}

func TestEncodeImagesRejectsUnsupportedExtension(t *testing.T) {
	path := writeTempImage(t, "doc.tiff", []byte("x"))
	if _, err := encodeImages([]string{path}); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestEncodeImagesMissingFile(t *testing.T) {
	_, err := encodeImages([]string{filepath.Join(t.TempDir(), "absent.png")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found message, got %v", err)
	}
}

func TestEncodeImagesEmptyInput(t *testing.T) {
	encoded, err := encodeImages(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded != nil {
		t.Errorf("expected nil for empty input, got %v", encoded)
	}
}

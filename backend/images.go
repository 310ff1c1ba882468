// Image attachment encoding for multimodal requests.
//
// Local files become base64 (Ollama) or data URLs (OpenAI-compatible
// content parts); http(s) URLs pass through untouched. MLX-VLM takes raw
// paths and never calls into this file.

package backend

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxImageBytes caps attachment size at 100MB.
const maxImageBytes = 100 << 20

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// isRemoteURL reports whether the path is an http(s) URL rather than a
// local file.
func isRemoteURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// readImage validates and reads a local image file.
func readImage(path string) ([]byte, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("image file not found: %s", path)
	}
	if info.Size() > maxImageBytes {
		return nil, "", fmt.Errorf("image file too large: %d bytes (max %d)", info.Size(), maxImageBytes)
	}

	ext := strings.ToLower(filepath.Ext(path))
	mime, ok := imageMIMETypes[ext]
	if !ok {
		return nil, "", fmt.Errorf("unsupported image format %q (supported: jpg, jpeg, png, gif, webp)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading image %s: %w", path, err)
	}
	return data, mime, nil
}

// encodeImageBase64 encodes a local image file as a bare base64 string.
func encodeImageBase64(path string) (string, error) {
	data, _, err := readImage(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// encodeImageDataURL encodes a local image file as a data URL with its MIME
// type, the shape OpenAI-compatible image_url parts expect.
func encodeImageDataURL(path string) (string, error) {
	data, mime, err := readImage(path)
	if err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// encodeImages returns base64 for local files and URLs as-is.
func encodeImages(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	encoded := make([]string, 0, len(paths))
	for _, path := range paths {
		if isRemoteURL(path) {
			encoded = append(encoded, path)
			continue
		}
		b64, err := encodeImageBase64(path)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, b64)
	}
	return encoded, nil
}

// encodeImagesDataURLs returns data URLs for local files and URLs as-is.
func encodeImagesDataURLs(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	encoded := make([]string, 0, len(paths))
	for _, path := range paths {
		if isRemoteURL(path) {
			encoded = append(encoded, path)
			continue
		}
		dataURL, err := encodeImageDataURL(path)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, dataURL)
	}
	return encoded, nil
}

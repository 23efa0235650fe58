package utils

import (
	"net/http"
	"path/filepath"
	"strings"
)

// imageTypes maps sniffed content types to the extension used for stored files.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImageType sniffs the first bytes of an upload and returns the
// canonical extension for it. ok is false for anything that is not a
// supported raster image.
func DetectImageType(head []byte) (ext string, ok bool) {
	if len(head) > 512 {
		head = head[:512]
	}
	ext, ok = imageTypes[http.DetectContentType(head)]
	return ext, ok
}

// CleanFilename reduces a client supplied filename to a safe base name.
func CleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

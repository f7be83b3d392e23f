package domain

import "strings"

var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "tif": {}, "tiff": {}, "webp": {},
}

// NormalizeExt lower-cases an extension and strips the leading dot.
func NormalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

func IsImageExt(ext string) bool {
	_, ok := imageExtensions[NormalizeExt(ext)]
	return ok
}

// IsSupportedExt reports whether text extraction attempts anything for ext.
func IsSupportedExt(ext string) bool {
	ext = NormalizeExt(ext)
	return ext == "pdf" || IsImageExt(ext)
}

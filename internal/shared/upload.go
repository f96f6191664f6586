package shared

import (
	"io"
	"path/filepath"
	"strings"
)

// MaxImageKB bounds uploaded image size.
const MaxImageKB = 2000

var imageExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
}

// Upload describes a file received in a multipart form. Content is read at
// most once, when the file is stored.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// ValidateImage returns a user-facing message when the upload is not an
// acceptable image, or "" when it is.
func ValidateImage(u *Upload) string {
	if u == nil {
		return "gambar wajib diisi"
	}
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if _, ok := imageExtensions[ext]; !ok {
		return "gambar harus berformat jpeg, jpg, atau png"
	}
	if u.Size > MaxImageKB*1024 {
		return "ukuran gambar maksimal 2000 KB"
	}
	return ""
}

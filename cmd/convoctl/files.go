package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mk-yl/convocation-portal/pkg/formdata"
)

// openUpload opens path for a multipart upload. A blank path yields nil.
func openUpload(path string) (*formdata.File, func(), error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open %s: %w", path, err)
	}
	return &formdata.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Content:     file,
	}, func() { _ = file.Close() }, nil
}

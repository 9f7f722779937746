package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dev-c-webd/tube-v/internal/common"
)

const multipartMemory = 1 << 20

// parseMultipart bounds the body and parses the form. A non-multipart body is
// accepted so that urlencoded sign-ups fall through to field validation.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if s.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return common.Errorf(common.ErrorValidation, "upload exceeds %d bytes", tooLarge.Limit)
	}
	return common.NewError(common.ErrorValidation, "invalid multipart form")
}

// saveUpload copies the multipart file field into UploadDir and returns the
// temp path, or "" when the field is absent. Callers remove the file.
func (s *Server) saveUpload(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	src, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", field, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.opts.UploadDir, field+"-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write %s: %w", field, err)
	}
	return dst.Name(), nil
}

func removeAll(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}

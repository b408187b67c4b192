// Package storage keeps uploaded room images on the local filesystem.  The
// upload directory is served statically, so a saved file is reachable at
// the returned public path right away.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// ErrInvalidFilename is returned for names that would escape the upload
// directory or are empty.
var ErrInvalidFilename = errors.New("invalid image filename")

const (
	thumbDir    = "thumbs"
	thumbWidth  = 320
	thumbHeight = 240
)

type ImageStore struct {
	basePath  string
	urlPrefix string
}

func NewImageStore(basePath, urlPrefix string) *ImageStore {
	return &ImageStore{basePath: basePath, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

// Save writes body to <basePath>/<filename>, replacing any file with the
// same name, and returns <urlPrefix>/<filename>.  A thumbnail is written
// under thumbs/ when the file decodes as an image; failing that is logged
// and does not fail the upload.
func (s *ImageStore) Save(ctx context.Context, filename string, body io.Reader) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, name)
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return "", err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	if err := s.writeThumbnail(fullPath, name); err != nil {
		logrus.WithError(err).WithField("file", name).Warn("image store: thumbnail skipped")
	}
	return path.Join(s.urlPrefix, name), nil
}

// ThumbnailPath returns where the thumbnail of filename is written.
func (s *ImageStore) ThumbnailPath(filename string) string {
	return filepath.Join(s.basePath, thumbDir, filepath.Base(filename))
}

func (s *ImageStore) writeThumbnail(src, name string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(s.basePath, thumbDir), 0o755); err != nil {
		return err
	}
	thumb := imaging.Thumbnail(img, thumbWidth, thumbHeight, imaging.Lanczos)
	return imaging.Save(thumb, s.ThumbnailPath(name))
}

func cleanName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", ErrInvalidFilename
	}
	return name, nil
}

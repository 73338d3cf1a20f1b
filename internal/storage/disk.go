package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DiskStorage implements Storage interface using local disk
type DiskStorage struct {
	logger  *zap.Logger
	baseDir string
}

// NewDiskStorage creates a new disk storage
func NewDiskStorage(logger *zap.Logger, baseDir string) (*DiskStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	return &DiskStorage{
		logger:  logger,
		baseDir: abs,
	}, nil
}

// BaseDir returns the absolute storage root
func (s *DiskStorage) BaseDir() string {
	return s.baseDir
}

// Path maps a slash separated name onto the storage root, rejecting names that leave it
func (s *DiskStorage) Path(name string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	if clean == "/" {
		return "", ErrInvalidName
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean[1:])), nil
}

// Save writes into a temporary file next to the target and renames it into place,
// so readers never observe a partial file.
func (s *DiskStorage) Save(ctx context.Context, name string, content io.Reader) (int64, error) {
	filePath, err := s.Path(name)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	var n int64
	if n, err = io.Copy(tmp, content); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err = tmp.Close(); err != nil {
		return 0, err
	}
	if err = os.Rename(tmp.Name(), filePath); err != nil {
		return 0, err
	}

	s.logger.Debug("stored file", zap.String("name", name), zap.Int64("bytes", n))
	return n, nil
}

// Open opens a stored file
func (s *DiskStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	filePath, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(filePath)
}

func (s *DiskStorage) Exists(ctx context.Context, name string) (bool, error) {
	filePath, err := s.Path(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// List lists the files directly under dir; a missing dir yields no names
func (s *DiskStorage) List(ctx context.Context, dir string) ([]string, error) {
	dirPath := s.baseDir
	if strings.Trim(dir, "/") != "" {
		var err error
		if dirPath, err = s.Path(dir); err != nil {
			return nil, err
		}
	}

	files, err := os.ReadDir(dirPath)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if !file.IsDir() && !strings.HasPrefix(file.Name(), ".upload-") {
			names = append(names, file.Name())
		}
	}

	return names, nil
}

// Delete removes a stored file
func (s *DiskStorage) Delete(ctx context.Context, name string) error {
	filePath, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

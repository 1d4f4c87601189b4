package adapters

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type FilesystemRepo struct {
	basePath string
}

// NewFileSystemRepository creates a new FilesystemRepo instance.
func NewFileSystemRepository(basePath string) (*FilesystemRepo, error) {
	if basePath == "" {
		return nil, nil // no path, return empty repository
	}

	r := &FilesystemRepo{basePath: basePath}

	if err := os.MkdirAll(r.basePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", basePath, err)
	}

	return r, nil
}

// WriteFile writes the given contents to the given path.
// Relative paths are resolved against the base path of the repository, absolute paths are used as is.
// If the parent directory does not exist, it is created.
// The file is replaced atomically, readers never see a partially written file.
func (r *FilesystemRepo) WriteFile(path string, contents io.Reader, mode os.FileMode) error {
	filePath := path
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(r.basePath, path)
	}
	parentDirectory := filepath.Dir(filePath)

	if err := os.MkdirAll(parentDirectory, 0750); err != nil {
		return fmt.Errorf("failed to create parent directory %s: %w", parentDirectory, err)
	}

	tmpFile, err := os.CreateTemp(parentDirectory, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", parentDirectory, err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		if _, err := os.Stat(tmpName); err == nil {
			if err := os.Remove(tmpName); err != nil {
				slog.Error("failed to remove temporary file", "file", tmpName, "error", err)
			}
		}
	}()

	if _, err = io.Copy(tmpFile, contents); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write file contents: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", tmpName, err)
	}
	if mode != 0 {
		if err := os.Chmod(tmpName, mode); err != nil {
			return fmt.Errorf("failed to set file mode of %s: %w", tmpName, err)
		}
	}

	if err := os.Rename(tmpName, filePath); err != nil {
		return fmt.Errorf("failed to replace file %s: %w", filePath, err)
	}

	return nil
}

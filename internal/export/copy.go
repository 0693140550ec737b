package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fakeyudi/relapse/internal/selection"
)

// CopyTree copies files under dest, recreating each relative path. File
// mode and modification time are preserved.
func CopyTree(dest string, files []selection.SelectedFile) error {
	for _, f := range files {
		target := filepath.Join(dest, f.Relative)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("copying %s: %w", f.Relative, err)
		}
		if err := copyFile(f.Absolute, target); err != nil {
			return fmt.Errorf("copying %s: %w", f.Relative, err)
		}
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	// Chtimes after the final write; closing does not touch mtime.
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

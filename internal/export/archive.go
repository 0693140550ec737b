// Package export writes a selection out of the tree: as a gzipped tarball,
// as a copied directory tree, or as arguments to an external program.
package export

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fakeyudi/relapse/internal/selection"
)

// StdoutName is the output name that sends the archive to standard output.
const StdoutName = "-"

// WriteArchive streams a gzip-compressed tar of files to w, naming each
// entry by its relative path.
func WriteArchive(w io.Writer, files []selection.SelectedFile) (err error) {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	defer func() {
		if cerr := tw.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("finishing archive: %w", cerr)
		}
		if cerr := gz.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("finishing archive: %w", cerr)
		}
	}()

	for _, f := range files {
		if err := addFile(tw, f); err != nil {
			return err
		}
	}
	return nil
}

func addFile(tw *tar.Writer, f selection.SelectedFile) error {
	src, err := os.Open(f.Absolute)
	if err != nil {
		return fmt.Errorf("adding %s: %w", f.Relative, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("adding %s: %w", f.Relative, err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("adding %s: %w", f.Relative, err)
	}
	hdr.Name = filepath.ToSlash(f.Relative)

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("adding %s: %w", f.Relative, err)
	}
	if _, err := io.CopyN(tw, src, hdr.Size); err != nil {
		return fmt.Errorf("adding %s: %w", f.Relative, err)
	}
	return nil
}

// CreateArchive writes the archive to path, creating parent directories.
// The archive is assembled in a temporary file next to path and renamed
// into place only once complete, so a failure leaves no partial output.
func CreateArchive(path string, files []selection.SelectedFile) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	tmpName := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".partial")
	tmp, err := os.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = WriteArchive(tmp, files); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	return nil
}

// Package scan lists the regular files under a root directory together with
// their modification times.
package scan

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// IgnoreFile is read from the scan root for extra ignore patterns.
const IgnoreFile = ".relapseignore"

// FileEntry is a regular file observed during a scan.
type FileEntry struct {
	Path    string    // absolute, symlinks resolved
	ModTime time.Time
}

// Scanner walks a directory tree. The zero value scans everything and logs nothing.
type Scanner struct {
	IgnorePatterns []string
	Log            *zerolog.Logger
}

// Scan returns an entry for every regular file reachable under root.
// Entries that disappear or cannot be read mid-walk are skipped. An empty
// tree yields an empty slice and a nil error.
func (s *Scanner) Scan(root string) ([]FileEntry, error) {
	log := s.logger()

	patterns, err := s.loadIgnorePatterns(root)
	if err != nil {
		log.Warn().Err(err).Str("file", IgnoreFile).Msg("ignoring unreadable ignore file")
		patterns = s.IgnorePatterns
	}

	entries := []FileEntry{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// d is nil only when the root itself cannot be stat'ed.
			if d == nil && path == root {
				return err
			}
			log.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if isIgnored(root, path, patterns) {
			return nil
		}

		// os.Stat follows symlinks, so a link to a regular file counts.
		info, err := os.Stat(path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("skipping vanished file")
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("skipping unresolvable file")
			return nil
		}
		if !filepath.IsAbs(resolved) {
			if resolved, err = filepath.Abs(resolved); err != nil {
				return nil
			}
		}
		entries = append(entries, FileEntry{Path: resolved, ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("root", root).Int("files", len(entries)).Msg("scan complete")
	return entries, nil
}

func (s *Scanner) logger() *zerolog.Logger {
	if s.Log != nil {
		return s.Log
	}
	nop := zerolog.Nop()
	return &nop
}

// isIgnored reports whether path matches any of the given glob patterns.
func isIgnored(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel := path
	if r, err := filepath.Rel(root, path); err == nil {
		rel = r
	}
	base := filepath.Base(path)

	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// loadIgnorePatterns merges the configured patterns with those from the
// root's ignore file, if any.
func (s *Scanner) loadIgnorePatterns(root string) ([]string, error) {
	patterns := make([]string, len(s.IgnorePatterns))
	copy(patterns, s.IgnorePatterns)

	extra, err := readPatternFile(filepath.Join(root, IgnoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return patterns, nil
		}
		return patterns, err
	}
	return append(patterns, extra...), nil
}

// readPatternFile reads a gitignore-style file and returns non-empty, non-comment lines.
func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

package harvest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/discogs-harvester/internal/domain"
)

// DirImageSink writes images under a directory, named after the requested file.
type DirImageSink struct {
	dir string
}

// NewDirImageSink returns a sink rooted at dir.
func NewDirImageSink(dir string) *DirImageSink {
	return &DirImageSink{dir: dir}
}

// Save writes the record's bytes atomically: a temp file in the same
// directory renamed over the final name.
func (s *DirImageSink) Save(ctx context.Context, rec domain.Record) (string, error) {
	if s == nil || strings.TrimSpace(s.dir) == "" {
		return "", fmt.Errorf("image directory is not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := imageFileName(rec)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(rec.Image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close image %s: %w", name, err)
	}

	final := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, final); err != nil {
		return "", fmt.Errorf("store image %s: %w", name, err)
	}
	return final, nil
}

// imageFileName keeps only the base name of the target so a job cannot
// write outside the directory.
func imageFileName(rec domain.Record) string {
	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(rec.Target, `\`, "/")))
	if name == "/" || name == "." || name == "" {
		return rec.ID
	}
	return name
}

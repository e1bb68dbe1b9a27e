package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samvad-hq/discogs-harvester/internal/domain"
	"github.com/samvad-hq/discogs-harvester/pkg/jobs"
)

// Lookup validates a one-off job and fetches it once, without dedupe or publishing.
func Lookup(ctx context.Context, res jobs.Resources, job jobs.Job) (domain.Record, error) {
	if job.ID == "" {
		job.ID = "lookup"
	}
	reg, err := jobs.NewRegistry([]jobs.Job{job})
	if err != nil {
		return domain.Record{}, err
	}
	job = reg.All()[0]

	fetcher, err := jobs.DefaultFetcherRegistry(res).FetcherFor(job)
	if err != nil {
		return domain.Record{}, err
	}
	return fetcher.Fetch(ctx, job)
}

// WriteRecord prints a JSON record indented to w, or writes image bytes to
// out. An image without out is an error so binary never reaches a terminal.
func WriteRecord(w io.Writer, rec domain.Record, out string) error {
	if rec.IsImage() {
		if out == "" {
			return fmt.Errorf("%s returned an image (%s); pass --out to save it", rec.Key, rec.ContentType)
		}
		if err := os.WriteFile(out, rec.Image, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		_, err := fmt.Fprintf(w, "wrote %d bytes to %s\n", len(rec.Image), out)
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, rec.Payload, "", "  "); err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	buf.WriteByte('\n')

	if out != "" {
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
		return nil
	}
	_, err := w.Write(buf.Bytes())
	return err
}

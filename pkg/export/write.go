package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mchmarny/sprio/pkg/score"
	"gopkg.in/yaml.v3"
)

const (
	fileMode = 0600
)

type entry struct {
	score.Scored `yaml:",inline"`
	Extra        map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

func (r *Report) entries() []*entry {
	list := make([]*entry, 0, len(r.Rows))
	for i, s := range r.Rows {
		if s == nil {
			continue
		}
		e := &entry{Scored: *s}
		if len(r.ExtraColumns) > 0 {
			e.Extra = make(map[string]string, len(r.ExtraColumns))
			for j, c := range r.ExtraColumns {
				e.Extra[c] = r.extra(i, j)
			}
		}
		list = append(list, e)
	}
	return list
}

// Write serializes the report in format f. The sheet name only applies to XLSX.
func Write(w io.Writer, f Format, sheet string, r *Report) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatXLSX:
		return WriteXLSX(w, sheet, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range r.Rows {
		if s == nil {
			continue
		}
		if err := cw.Write(r.Strings(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func WriteJSON(w io.Writer, r *Report) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(r.entries()); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func WriteYAML(w io.Writer, r *Report) error {
	e := yaml.NewEncoder(w)
	defer e.Close()
	if err := e.Encode(r.entries()); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return nil
}

// WriteFile renders the report fully in memory and then replaces path, so a
// failed export never leaves a partial file behind.
func WriteFile(path string, f Format, sheet string, r *Report) error {
	var buf bytes.Buffer
	if err := Write(&buf, f, sheet, r); err != nil {
		return fmt.Errorf("%w: rendering %s: %w", ErrExport, path, err)
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	slog.Debug("report written", "path", path, "format", f, "rows", len(r.Rows))
	return nil
}

func writeAtomic(path string, b []byte) (retErr error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sprio-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer func() {
		if retErr != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), fileMode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving report to %s: %w", path, err)
	}
	return nil
}

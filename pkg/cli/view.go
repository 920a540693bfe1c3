package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mchmarny/sprio/pkg/entry"
	"github.com/mchmarny/sprio/pkg/export"
	"github.com/mchmarny/sprio/pkg/score"
	"github.com/mchmarny/sprio/pkg/table"
)

const (
	tabBulk      = "bulk"
	tabSingle    = "single"
	tabDownloads = "downloads"

	bulkReportFileName   = "species_prioritization_report.xlsx"
	singleReportFileName = "single_species_report.xlsx"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"

	uploadField = "file"
)

// httpError carries the response status for a failed request.
type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string {
	return e.err.Error()
}

func (e *httpError) Unwrap() error {
	return e.err
}

func badRequest(err error) error {
	return &httpError{status: http.StatusBadRequest, err: err}
}

func statusFor(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	var ve *entry.ValidationError
	if errors.As(err, &ve) || errors.Is(err, table.ErrSchema) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *handler) viewData(tab string, form url.Values) map[string]any {
	if form == nil {
		form = url.Values{}
	}
	return map[string]any{
		"version":      version,
		"commit":       commit,
		"build_date":   date,
		"tab":          tab,
		"form":         form,
		"iucn":         score.IUCNStatuses(),
		"endemism":     score.EndemismValues(),
		"altitude":     score.AltitudinalRanges(),
		"exploitation": score.ExploitationLevels(),
		"criteria":     score.Criteria(),
		"priorities":   score.AllPriorities(),
		"columns":      table.Columns(),
		"limits": map[string]int{
			"threat_min":      entry.ThreatMin,
			"threat_max":      entry.ThreatMax,
			"threat_default":  entry.ThreatDefault,
			"habitat_min":     entry.HabitatMin,
			"habitat_max":     entry.HabitatMax,
			"habitat_default": entry.HabitatDefault,
			"use_min":         entry.UseMin,
			"use_max":         entry.UseMax,
			"use_default":     entry.UseDefault,
		},
	}
}

func (h *handler) render(w http.ResponseWriter, status int, name string, d map[string]any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, d); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func (h *handler) renderError(w http.ResponseWriter, tab string, form url.Values, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "tab", tab, "error", err)
	} else {
		slog.Debug("request rejected", "tab", tab, "error", err)
	}
	d := h.viewData(tab, form)
	d["err"] = err.Error()
	h.render(w, status, "home", d)
}

func (h *handler) homeView(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	switch tab {
	case tabSingle, tabDownloads:
	default:
		tab = tabBulk
	}
	h.render(w, http.StatusOK, "home", h.viewData(tab, nil))
}

// scoreUpload reads the uploaded CSV and scores it.
func (h *handler) scoreUpload(w http.ResponseWriter, r *http.Request) (*table.Dataset, []*score.Scored, error) {
	r.Body = http.MaxBytesReader(w, r.Body, serverMaxUploadBytes)
	if err := r.ParseMultipartForm(serverMaxUploadBytes); err != nil {
		return nil, nil, badRequest(fmt.Errorf("invalid upload: %w", err))
	}

	file, hdr, err := r.FormFile(uploadField)
	if err != nil {
		return nil, nil, badRequest(errors.New("CSV file required"))
	}
	defer file.Close()

	d, err := table.Read(file)
	if err != nil {
		return nil, nil, badRequest(fmt.Errorf("reading %s: %w", hdr.Filename, err))
	}

	rows, err := score.ScoreAll(r.Context(), d.Records, h.workers)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("upload scored", "file", hdr.Filename, "rows", len(rows))
	return d, rows, nil
}

func (h *handler) bulkView(w http.ResponseWriter, r *http.Request) {
	_, rows, err := h.scoreUpload(w, r)
	if err != nil {
		h.renderError(w, tabBulk, nil, err)
		return
	}

	d := h.viewData(tabBulk, nil)
	d["rows"] = rows
	d["summary"] = score.Summarize(rows)
	h.render(w, http.StatusOK, "result", d)
}

func (h *handler) bulkReport(w http.ResponseWriter, r *http.Request) {
	ds, rows, err := h.scoreUpload(w, r)
	if err != nil {
		h.renderError(w, tabBulk, nil, err)
		return
	}

	rep := export.NewReport(rows, ds)
	err = sendFile(w, bulkReportFileName, contentTypeXLSX, func(out io.Writer) error {
		return export.WriteXLSX(out, export.SheetBatch, rep)
	})
	if err != nil {
		h.renderError(w, tabBulk, nil, err)
	}
}

func (h *handler) scoreForm(r *http.Request) (*score.Scored, error) {
	if err := r.ParseForm(); err != nil {
		return nil, badRequest(fmt.Errorf("invalid form: %w", err))
	}
	rec, err := h.validator.Parse(r.PostForm)
	if err != nil {
		return nil, badRequest(err)
	}
	return score.ScoreOne(rec), nil
}

func (h *handler) singleView(w http.ResponseWriter, r *http.Request) {
	s, err := h.scoreForm(r)
	if err != nil {
		h.renderError(w, tabSingle, r.PostForm, err)
		return
	}

	d := h.viewData(tabSingle, r.PostForm)
	d["rows"] = []*score.Scored{s}
	d["single"] = s
	h.render(w, http.StatusOK, "result", d)
}

func (h *handler) singleReport(w http.ResponseWriter, r *http.Request) {
	s, err := h.scoreForm(r)
	if err != nil {
		h.renderError(w, tabSingle, r.PostForm, err)
		return
	}

	rep := export.NewReport([]*score.Scored{s}, nil)
	err = sendFile(w, singleReportFileName, contentTypeXLSX, func(out io.Writer) error {
		return export.WriteXLSX(out, export.SheetSingle, rep)
	})
	if err != nil {
		h.renderError(w, tabSingle, r.PostForm, err)
	}
}

func sampleDownload(w http.ResponseWriter, _ *http.Request) {
	if err := sendFile(w, sampleFileName, contentTypeCSV, export.WriteSampleCSV); err != nil {
		slog.Error("failed to send sample", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func criteriaDownload(w http.ResponseWriter, _ *http.Request) {
	if err := sendFile(w, criteriaFileName, contentTypeXLSX, export.WriteCriteriaXLSX); err != nil {
		slog.Error("failed to send criteria", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// sendFile renders the whole file before writing headers so that a failed
// render can still produce an error response.
func sendFile(w http.ResponseWriter, name, contentType string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("%w: rendering %s: %w", export.ErrExport, name, err)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write file", "name", name, "error", err)
	}
	return nil
}

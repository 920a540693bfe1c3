package cli

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mchmarny/sprio/pkg/export"
	"github.com/mchmarny/sprio/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleCSV(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, export.WriteSampleCSV(&buf))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, path string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if content != nil {
		fw, err := mw.CreateFormFile(uploadField, "species.csv")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formRequest(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func speciesForm() url.Values {
	return url.Values{
		"species_name":        {"Species B"},
		"iucn_status":         {"Vulnerable"},
		"endemism":            {"No"},
		"threat_level":        {"2"},
		"altitudinal_range":   {"1001-1500"},
		"exploitation":        {"Not exploited"},
		"habitat_specificity": {"1"},
		"use_value":           {"1"},
	}
}

func serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	makeRouter(2).ServeHTTP(w, req)
	return w
}

func TestHomeView(t *testing.T) {
	for _, tab := range []string{"", tabBulk, tabSingle, tabDownloads} {
		t.Run("tab="+tab, func(t *testing.T) {
			w := serve(httptest.NewRequest(http.MethodGet, "/?tab="+tab, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), "Species Prioritization")
		})
	}
}

func TestHomeView_SingleListsVocabularies(t *testing.T) {
	w := serve(httptest.NewRequest(http.MethodGet, "/?tab=single", nil))
	require.Equal(t, http.StatusOK, w.Code)
	for _, v := range score.IUCNStatuses() {
		assert.Contains(t, w.Body.String(), v)
	}
}

func TestUnknownRoute(t *testing.T) {
	w := serve(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkView(t *testing.T) {
	w := serve(uploadRequest(t, "/bulk", sampleCSV(t)))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Species A")
	assert.Contains(t, body, "Critical")
	assert.Contains(t, body, "41.0")
	assert.Contains(t, body, "Species B")
	assert.Contains(t, body, "Medium")
	assert.Contains(t, body, "30.0")
}

func TestBulkView_SummaryInSeverityOrder(t *testing.T) {
	w := serve(uploadRequest(t, "/bulk", sampleCSV(t)))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	i := strings.Index(body, "<h2>Summary</h2>")
	require.GreaterOrEqual(t, i, 0)
	summary := body[i:]

	last := -1
	for _, p := range score.AllPriorities() {
		pos := strings.Index(summary, ">"+p.String()+"</span>")
		require.GreaterOrEqual(t, pos, 0, p)
		assert.Greater(t, pos, last, p)
		last = pos
	}
}

func TestBulkView_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"no file", nil, "CSV file required"},
		{"missing columns", []byte("species_name,iucn_status\nX,Endangered\n"), "missing required columns"},
		{"empty field", []byte("species_name,iucn_status,endemism,threat_level,altitudinal_range,exploitation,habitat_specificity,use_value\nX,,Yes,3,<500,Local use,1,1\n"), "iucn_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(uploadRequest(t, "/bulk", tt.content))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestBulkReport(t *testing.T) {
	w := serve(uploadRequest(t, "/bulk/report", sampleCSV(t)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), bulkReportFileName)

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetBatch)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Species A", rows[1][0])
	assert.Equal(t, "Critical", rows[1][len(rows[1])-1])
}

func TestSingleView(t *testing.T) {
	w := serve(formRequest("/single", speciesForm()))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Species B")
	assert.Contains(t, body, "Medium")
	assert.Contains(t, body, "30.0")
	assert.Contains(t, body, `action="/single/report"`)
}

func TestSingleView_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"unknown status", "iucn_status", "Extinct"},
		{"threat out of range", "threat_level", "7"},
		{"malformed number", "use_value", "lots"},
		{"missing name", "species_name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := speciesForm()
			v.Set(tt.field, tt.value)
			w := serve(formRequest("/single", v))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.field)
		})
	}
}

func TestSingleReport(t *testing.T) {
	w := serve(formRequest("/single/report", speciesForm()))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), singleReportFileName)

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetSingle)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Species B", rows[1][0])
}

func TestDownloads(t *testing.T) {
	tests := []struct {
		path        string
		name        string
		contentType string
	}{
		{"/download/sample.csv", sampleFileName, contentTypeCSV},
		{"/download/criteria.xlsx", criteriaFileName, contentTypeXLSX},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Contains(t, w.Header().Get("Content-Disposition"), tt.name)
			assert.Positive(t, w.Body.Len())
		})
	}
}

func TestScoreAPI(t *testing.T) {
	b, err := json.Marshal(score.SampleRecords())
	require.NoError(t, err)

	w := serve(httptest.NewRequest(http.MethodPost, "/api/score", bytes.NewReader(b)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var rows []*score.Scored
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 41.0, rows[0].TotalScore)
	assert.Equal(t, score.PriorityCritical, rows[0].Priority)
	assert.Equal(t, 30.0, rows[1].TotalScore)
	assert.Equal(t, score.PriorityMedium, rows[1].Priority)
}

func TestScoreAPI_Empty(t *testing.T) {
	w := serve(httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader("[]")))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestScoreAPI_BadRequest(t *testing.T) {
	for _, body := range []string{"", "{", `{"species_name":"x"}`, "[null]"} {
		t.Run(body, func(t *testing.T) {
			w := serve(httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var res map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.NotEmpty(t, res["error"])
		})
	}
}

func TestCriteriaAPI(t *testing.T) {
	w := serve(httptest.NewRequest(http.MethodGet, "/api/criteria", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list []score.Criterion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, score.Criteria(), list)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(badRequest(assert.AnError)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, statusFor(export.ErrExport))
}

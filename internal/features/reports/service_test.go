package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "reportdesk/internal/common/errors"
	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/models"
)

type fakeAPI struct {
	gets      map[string]interface{}
	downloads map[string]*apihttp.Blob
	paths     []string
}

func (f *fakeAPI) Get(ctx context.Context, path string, out interface{}) (apihttp.Result, error) {
	f.paths = append(f.paths, path)
	v, ok := f.gets[path]
	if !ok {
		return apihttp.Result{}, apperrors.NewAPIError(404, nil, nil)
	}
	if err, isErr := v.(error); isErr {
		return apihttp.Result{}, err
	}
	data, _ := json.Marshal(v)
	return apihttp.Result{Status: 200}, json.Unmarshal(data, out)
}

func (f *fakeAPI) Download(ctx context.Context, path string) (*apihttp.Blob, error) {
	f.paths = append(f.paths, path)
	blob, ok := f.downloads[path]
	if !ok {
		return nil, apperrors.NewAPIError(500, nil, nil)
	}
	return blob, nil
}

func newTestService(t *testing.T, api *fakeAPI) (*Service, *notify.Recorder) {
	t.Helper()
	rec := notify.NewRecorder()
	return NewService(ServiceDependencies{Logger: logger.NewTestLogger(t), API: api, Notifier: rec}), rec
}

var sampleReport = models.Report{
	ID:         "r1",
	Title:      "EMI Calculator Report",
	Status:     models.ReportGenerated,
	Industry:   "Banking",
	ReportType: "Loan Assessment",
	Content:    "## Summary\n\nYour EMI is **4,500**.",
	Files:      []models.UploadedFileInfo{{ID: "f1", Filename: "bank.csv", FileSize: 4096, DataSummary: "12 rows"}},
}

func TestService_ListAndGet(t *testing.T) {
	api := &fakeAPI{gets: map[string]interface{}{
		"/reports":    []models.Report{sampleReport},
		"/reports/r1": sampleReport,
	}}
	s, rec := newTestService(t, api)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	r, err := s.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, sampleReport.Content, r.Content)

	_, err = s.Get(context.Background(), "missing")
	assert.Equal(t, 404, apperrors.StatusCode(err))
	assert.Equal(t, []string{"Failed to load report"}, rec.Errors())
}

func TestService_Export(t *testing.T) {
	tests := []struct {
		name     string
		format   models.ExportFormat
		blob     *apihttp.Blob
		wantFile string
	}{
		{
			name:     "pdf with server filename",
			format:   models.ExportPDF,
			blob:     &apihttp.Blob{Data: []byte("%PDF-1.7"), Filename: "EMI Report.pdf"},
			wantFile: "EMI_Report.pdf",
		},
		{
			name:     "markdown without filename",
			format:   models.ExportMarkdown,
			blob:     &apihttp.Blob{Data: []byte("# EMI")},
			wantFile: "report-r1.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("/reports/r1/export/%s", tt.format)
			api := &fakeAPI{downloads: map[string]*apihttp.Blob{path: tt.blob}}
			s, rec := newTestService(t, api)
			dir := filepath.Join(t.TempDir(), "exports")

			got, err := s.Export(context.Background(), "r1", tt.format, dir)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.wantFile), got)

			data, err := os.ReadFile(got)
			require.NoError(t, err)
			assert.Equal(t, tt.blob.Data, data)
			assert.Len(t, rec.Successes(), 1)
		})
	}
}

func TestService_ExportFailures(t *testing.T) {
	s, rec := newTestService(t, &fakeAPI{})

	_, err := s.Export(context.Background(), "r1", "docx", t.TempDir())
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(err))

	_, err = s.Export(context.Background(), "r1", models.ExportMarkdown, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, []string{"Failed to export Markdown"}, rec.Errors())
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		server string
		format models.ExportFormat
		want   string
	}{
		{server: "", format: models.ExportPDF, want: "report-r1.pdf"},
		{server: "../../etc/passwd", format: models.ExportPDF, want: "passwd.pdf"},
		{server: "summary", format: models.ExportMarkdown, want: "summary.md"},
		{server: "Q1 plan (final).md", format: models.ExportMarkdown, want: "Q1_plan_final_.md"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportFilename(tt.server, "r1", tt.format))
		})
	}
}

func TestService_Tools(t *testing.T) {
	api := &fakeAPI{gets: map[string]interface{}{
		"/tools": []models.Tool{
			{ID: "emi", Title: "EMI Calculator", Category: "Finance"},
			{ID: "roi", Title: "ROI Calculator", Category: "Investment"},
			{ID: "sip", Title: "SIP Calculator", Category: "Finance"},
			{ID: "misc", Title: "Misc"},
		},
		"/tools/emi": models.Tool{ID: "emi", Title: "EMI Calculator"},
		"/tools/emi/fields": []models.InputField{
			{ID: "b", Label: "Tenure", SortOrder: 2},
			{ID: "a", Label: "Amount", SortOrder: 1},
			{ID: "c", Label: "Rate", SortOrder: 2},
		},
		"/tools/categories": []string{"Finance", "Investment"},
	}}
	s, _ := newTestService(t, api)
	ctx := context.Background()

	tools, err := s.Tools(ctx)
	require.NoError(t, err)
	order, groups := ToolsByCategory(tools)
	assert.Equal(t, []string{"Finance", "Investment", "Other"}, order)
	assert.Len(t, groups["Finance"], 2)

	tool, err := s.Tool(ctx, "emi")
	require.NoError(t, err)
	assert.Equal(t, "EMI Calculator", tool.Title)

	fields, err := s.ToolFields(ctx, "emi")
	require.NoError(t, err)
	var ids []string
	for _, f := range fields {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids, "stable by sortOrder")

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Finance", "Investment"}, cats)
}

func TestMarkdown(t *testing.T) {
	md := Markdown(&sampleReport)
	assert.Contains(t, md, "# EMI Calculator Report")
	assert.Contains(t, md, "- **Industry:** Banking")
	assert.NotContains(t, md, "**Audience:**")
	assert.Contains(t, md, "Your EMI is **4,500**.")
	assert.Contains(t, md, "- bank.csv (4 KB): 12 rows")

	pending := models.Report{Title: "Pending", Status: models.ReportProcessing}
	assert.Contains(t, Markdown(&pending), "still being generated")
}

func TestMarkdown_Charts(t *testing.T) {
	tests := []struct {
		name    string
		content string
		chart   models.ChartData
		want    []string
		notWant []string
	}{
		{
			name: "datasets become columns",
			chart: models.ChartData{
				ID: "c1", ChartType: "BAR", Title: "Revenue by Quarter",
				DataJSON: `{"labels":["Q1","Q2","Q3"],"datasets":[{"label":"Revenue","data":[100,150.5,200]},{"label":"Cost","data":[80,90]}]}`,
			},
			want: []string{
				"## Charts",
				"### Revenue by Quarter (bar)",
				"| Label | Revenue | Cost |",
				"| --- | --- | --- |",
				"| Q2 | 150.5 | 90 |",
				"| Q3 | 200 |  |",
			},
		},
		{
			name:  "unlabelled dataset",
			chart: models.ChartData{Title: "Split", ChartType: "pie", DataJSON: `{"labels":["A|B"],"datasets":[{"data":[1]}]}`},
			want:  []string{"| Label | Series 1 |", "| A\\|B | 1 |"},
		},
		{
			name:  "malformed data",
			chart: models.ChartData{Title: "Broken", ChartType: "line", DataJSON: `{"labels":`},
			want:  []string{"### Broken (line)", "_Failed to render chart._"},
		},
		{
			name:    "inline chart blocks are dropped from content",
			content: "Intro\n\n```chart\n{\"type\":\"bar\"}\n```\n\nOutro",
			chart:   models.ChartData{Title: "Revenue", DataJSON: `{"labels":["Q1"],"datasets":[{"label":"R","data":[1]}]}`},
			want:    []string{"Intro", "Outro", "### Revenue\n"},
			notWant: []string{"```chart"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleReport
			if tt.content != "" {
				r.Content = tt.content
			}
			r.Charts = []models.ChartData{tt.chart}
			md := Markdown(&r)
			for _, w := range tt.want {
				assert.Contains(t, md, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, md, w)
			}
		})
	}

	assert.NotContains(t, Markdown(&sampleReport), "## Charts")
}

func TestSummarize(t *testing.T) {
	list := []models.Report{
		{ID: "r1", Status: models.ReportGenerated, CreatedAt: "2025-01-02T10:00:00Z"},
		{ID: "r2", Status: models.ReportFailed, CreatedAt: "2025-03-01T10:00:00Z"},
		{ID: "r3", Status: models.ReportGenerated},
		{ID: "r4", Status: models.ReportDraft, CreatedAt: "2025-02-01T10:00:00Z"},
	}

	tests := []struct {
		name       string
		n          int
		wantRecent []string
	}{
		{name: "newest first", n: 3, wantRecent: []string{"r2", "r4", "r1"}},
		{name: "more than available", n: 10, wantRecent: []string{"r2", "r4", "r1", "r3"}},
		{name: "none", n: 0, wantRecent: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(list, tt.n)
			assert.Equal(t, 4, s.Total)
			assert.Equal(t, map[models.ReportStatus]int{
				models.ReportGenerated: 2,
				models.ReportFailed:    1,
				models.ReportDraft:     1,
			}, s.ByStatus)

			var ids []string
			for _, r := range s.Recent {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantRecent, ids)
		})
	}

	assert.Equal(t, "r1", list[0].ID, "the input is not reordered")
}

func TestRender(t *testing.T) {
	out, err := Render(&sampleReport, "notty", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "EMI Calculator Report")
	assert.Contains(t, out, "4,500")
}

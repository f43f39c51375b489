package wizard

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"reportdesk/internal/common/config"
	apperrors "reportdesk/internal/common/errors"
	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/models"
)

// ==========================
// Fake API
// ==========================

type call struct {
	Method string
	Path   string
	Body   interface{}
}

type handler func(body interface{}) (interface{}, error)

type fakeAPI struct {
	mu     sync.Mutex
	calls  []call
	routes map[string]handler
	upload func(ctx context.Context, file apihttp.FilePart) (*models.FileUpload, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{routes: map[string]handler{}}
}

func (f *fakeAPI) on(method, path string, h handler) *fakeAPI {
	f.routes[method+" "+path] = h
	return f
}

func (f *fakeAPI) record(c call) handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.routes[c.Method+" "+c.Path]
}

func (f *fakeAPI) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeAPI) Get(ctx context.Context, path string, out interface{}) (apihttp.Result, error) {
	return f.serve(call{Method: "GET", Path: path}, out)
}

func (f *fakeAPI) Post(ctx context.Context, path string, body, out interface{}) (apihttp.Result, error) {
	return f.serve(call{Method: "POST", Path: path, Body: body}, out)
}

func (f *fakeAPI) Upload(ctx context.Context, path string, file apihttp.FilePart, fields map[string]string, out interface{}) (apihttp.Result, error) {
	f.record(call{Method: "UPLOAD", Path: path, Body: file.Filename})
	resp, err := f.upload(ctx, file)
	if err != nil {
		return apihttp.Result{}, err
	}
	return respond(resp, out)
}

func (f *fakeAPI) serve(c call, out interface{}) (apihttp.Result, error) {
	h := f.record(c)
	if h == nil {
		return apihttp.Result{}, apperrors.NewAPIError(404, map[string]interface{}{"message": "Not found"}, nil)
	}
	resp, err := h(c.Body)
	if err != nil {
		return apihttp.Result{}, err
	}
	return respond(resp, out)
}

// respond round-trips v through JSON the way the real client decodes bodies.
func respond(v, out interface{}) (apihttp.Result, error) {
	if v == nil {
		return apihttp.Result{Status: 204, Empty: true}, nil
	}
	if out == nil {
		return apihttp.Result{Status: 200}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return apihttp.Result{}, err
	}
	return apihttp.Result{Status: 200}, json.Unmarshal(data, out)
}

// ==========================
// Test Helpers
// ==========================

var emiTool = models.Tool{ID: "emi", Title: "EMI Calculator", Description: "Calculate loan EMI", Category: "Finance", Industry: "Banking"}

func ptr(f float64) *float64 { return &f }

var emiFields = []models.InputField{
	{ID: "f-amount", Label: "Loan Amount", Type: models.FieldNumber, Required: true, MinValue: ptr(1000)},
	{ID: "f-tenure", Label: "Tenure", Type: models.FieldSelect, Required: false, Options: []string{"12", "24", "36"}},
}

func toolAPI() *fakeAPI {
	return newFakeAPI().
		on("GET", "/tools/emi", func(interface{}) (interface{}, error) { return emiTool, nil }).
		on("GET", "/report-templates/emi", func(interface{}) (interface{}, error) {
			return models.UserReportTemplate{ToolID: "emi", InputFields: emiFields}, nil
		})
}

func newTestWizard(t *testing.T, api *fakeAPI, cfg *Config) (*Wizard, *notify.Recorder) {
	t.Helper()
	rec := notify.NewRecorder()
	w := New(ServiceDependencies{
		Logger:   logger.NewTestLogger(t),
		API:      api,
		Notifier: rec,
	}, cfg)
	return w, rec
}

// startedWizard returns a wizard on the review step with every gate satisfied.
func startedWizard(t *testing.T, api *fakeAPI) (*Wizard, *notify.Recorder) {
	t.Helper()
	w, rec := newTestWizard(t, api, nil)
	require.NoError(t, w.Start(context.Background(), "emi"))
	require.NoError(t, w.SetReportType("Loan Assessment"))
	require.NoError(t, w.SetAudience("Self"))
	require.NoError(t, w.SetPurpose("Planning"))
	require.NoError(t, w.SetAnswer("f-amount", "250000"))
	w.SetNotes("first home")
	for w.Step() != StepReview {
		_, err := w.Next()
		require.NoError(t, err)
	}
	return w, rec
}

func fileParts(names ...string) []apihttp.FilePart {
	parts := make([]apihttp.FilePart, 0, len(names))
	for _, n := range names {
		parts = append(parts, apihttp.FilePart{Filename: n, Content: strings.NewReader("data of " + n)})
	}
	return parts
}

func echoUpload(ctx context.Context, file apihttp.FilePart) (*models.FileUpload, error) {
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return nil, err
	}
	return &models.FileUpload{ID: "id-" + file.Filename, Filename: file.Filename, FileSize: int64(len(data))}, nil
}

// ==========================
// Steps
// ==========================

func TestSteps(t *testing.T) {
	want := []string{"Industry", "Report Type", "Audience & Purpose", "Tone & Depth", "Data Inputs", "Review & Generate"}
	var got []string
	for _, s := range Steps() {
		got = append(got, s.String())
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 6, StepCount)
	assert.Equal(t, "Unknown", Step(9).String())
}

func TestWizard_DefaultDraft(t *testing.T) {
	w, _ := newTestWizard(t, newFakeAPI(), nil)
	d := w.Draft()
	assert.Equal(t, "Professional", d.Tone)
	assert.Equal(t, "Comprehensive", d.Depth)
	assert.Equal(t, StepIndustry, w.Step())
	assert.False(t, w.CanProceed())
}

func TestWizard_NextBlocksIncompleteSteps(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(w *Wizard)
		step    Step
		missing []string
	}{
		{
			name:    "industry empty",
			prepare: func(w *Wizard) {},
			step:    StepIndustry,
			missing: []string{"industry"},
		},
		{
			name: "report type empty",
			prepare: func(w *Wizard) {
				_ = w.SetIndustry("Finance")
				_, _ = w.Next()
			},
			step:    StepReportType,
			missing: []string{"reportType"},
		},
		{
			name: "purpose missing",
			prepare: func(w *Wizard) {
				_ = w.SetIndustry("Finance")
				_, _ = w.Next()
				_ = w.SetReportType("Tax Planning")
				_, _ = w.Next()
				_ = w.SetAudience("Investor")
			},
			step:    StepAudiencePurpose,
			missing: []string{"purpose"},
		},
		{
			name: "audience and purpose missing",
			prepare: func(w *Wizard) {
				_ = w.SetIndustry("Finance")
				_, _ = w.Next()
				_ = w.SetReportType("Tax Planning")
				_, _ = w.Next()
			},
			step:    StepAudiencePurpose,
			missing: []string{"audience", "purpose"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newTestWizard(t, newFakeAPI(), nil)
			tt.prepare(w)
			require.Equal(t, tt.step, w.Step())
			assert.False(t, w.CanProceed())
			assert.Equal(t, tt.missing, w.Missing())

			step, err := w.Next()
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeStepIncomplete, apperrors.CodeOf(err))
			assert.Equal(t, tt.step, step, "a blocked Next stays put")
		})
	}
}

func TestWizard_DataInputsStepIsOptional(t *testing.T) {
	w, _ := newTestWizard(t, newFakeAPI(), nil)
	require.NoError(t, w.SetIndustry("Startups"))
	_, _ = w.Next()
	require.NoError(t, w.SetReportType("Runway Projection"))
	_, _ = w.Next()
	require.NoError(t, w.SetAudience("Business"))
	require.NoError(t, w.SetPurpose("Advisory"))
	_, _ = w.Next()
	_, _ = w.Next()
	require.Equal(t, StepDataInputs, w.Step())
	assert.True(t, w.CanProceed())

	step, err := w.Next()
	require.NoError(t, err)
	assert.Equal(t, StepReview, step)

	step, err = w.Next()
	require.NoError(t, err)
	assert.Equal(t, StepReview, step, "Next on the last step is a no-op")
	assert.False(t, w.CanProceed())
}

func TestWizard_BackKeepsDraft(t *testing.T) {
	w, _ := startedWizard(t, toolAPI())
	before := w.Draft()

	for i := 0; i < StepCount+2; i++ {
		w.Back()
	}
	assert.Equal(t, StepIndustry, w.Step())
	if diff := cmp.Diff(before, w.Draft()); diff != "" {
		t.Errorf("draft changed after Back (-before +after):\n%s", diff)
	}
}

// ==========================
// Selections
// ==========================

func TestWizard_Selections(t *testing.T) {
	w, _ := newTestWizard(t, newFakeAPI(), nil)

	err := w.SetReportType("Tax Planning")
	assert.Equal(t, apperrors.ErrCodeStepIncomplete, apperrors.CodeOf(err), "report type needs an industry")

	assert.Error(t, w.SetIndustry("Agriculture"))
	require.NoError(t, w.SetIndustry("Finance"))
	assert.Error(t, w.SetReportType("Loan Assessment"), "not a Finance report type")
	require.NoError(t, w.SetReportType("Tax Planning"))
	assert.Equal(t, []string{"Financial Analysis", "Tax Planning", "Investment Strategy", "Retirement Planning"}, w.ReportTypes())

	assert.Error(t, w.SetAudience("Everyone"))
	assert.Error(t, w.SetPurpose(""))
	assert.Error(t, w.SetTone("Angry"))
	assert.Error(t, w.SetDepth("Shallow"))
	require.NoError(t, w.SetTone("Technical"))
	require.NoError(t, w.SetDepth("Quick Overview"))

	// switching to an industry without the chosen type clears it
	require.NoError(t, w.SetIndustry("Banking"))
	d := w.Draft()
	assert.Equal(t, "Banking", d.Industry)
	assert.Empty(t, d.ReportType)
	assert.Equal(t, "Technical", d.Tone)
	assert.Equal(t, "Quick Overview", d.Depth)
}

func TestWizard_SetAnswer(t *testing.T) {
	w, _ := newTestWizard(t, toolAPI(), nil)
	require.NoError(t, w.Start(context.Background(), "emi"))

	require.NoError(t, w.SetAnswer("f-tenure", "24"))
	assert.Error(t, w.SetAnswer("f-unknown", "x"))
	require.NoError(t, w.SetAnswer("f-tenure", ""))
	assert.Empty(t, w.Draft().Inputs)
}

// ==========================
// Start
// ==========================

func TestWizard_StartPrefillsIndustry(t *testing.T) {
	api := toolAPI()
	w, _ := newTestWizard(t, api, nil)
	require.NoError(t, w.Start(context.Background(), "emi"))

	assert.Equal(t, "Banking", w.Draft().Industry)
	assert.Equal(t, &emiTool, w.Tool())
	assert.Len(t, w.Fields(), 2)
	assert.True(t, w.CanProceed())
}

func TestWizard_StartWithoutTemplate(t *testing.T) {
	api := newFakeAPI().on("GET", "/tools/roi", func(interface{}) (interface{}, error) {
		return models.Tool{ID: "roi", Title: "ROI Calculator", Industry: "Capital Markets"}, nil
	})
	w, rec := newTestWizard(t, api, nil)
	require.NoError(t, w.Start(context.Background(), "roi"))
	assert.Empty(t, w.Fields())
	assert.Empty(t, rec.Errors())
}

func TestWizard_StartTemplateFailure(t *testing.T) {
	api := toolAPI().on("GET", "/report-templates/emi", func(interface{}) (interface{}, error) {
		return nil, apperrors.NewAPIError(500, map[string]interface{}{"message": "Template service unavailable"}, nil)
	})
	w, rec := newTestWizard(t, api, nil)

	err := w.Start(context.Background(), "emi")
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.StatusCode(err))
	assert.Equal(t, []string{"Template service unavailable"}, rec.Errors())
	assert.Nil(t, w.Tool(), "a wizard without its questions never starts")

	_, err = w.Generate(context.Background())
	require.Error(t, err)
	for _, c := range api.Calls() {
		assert.NotEqual(t, "POST", c.Method, "nothing is created after a failed start")
	}
}

func TestWizard_StartToolFailure(t *testing.T) {
	w, rec := newTestWizard(t, newFakeAPI(), nil)
	err := w.Start(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))
	assert.Equal(t, []string{"Failed to load tool"}, rec.Errors())
	assert.Nil(t, w.Tool())
}

// ==========================
// Uploads
// ==========================

func TestWizard_UploadAttachesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := newFakeAPI()
	api.upload = echoUpload
	w, rec := newTestWizard(t, api, nil)

	got, err := w.Upload(context.Background(), fileParts("a.csv", "b.pdf", "c.json"))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, []string{"id-a.csv", "id-b.pdf", "id-c.json"}, w.Draft().FileIDs())
	assert.Equal(t, []string{"3 file(s) uploaded successfully!"}, rec.Successes())
	assert.False(t, w.Uploading())

	_, err = w.Upload(context.Background(), fileParts("d.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id-a.csv", "id-b.pdf", "id-c.json", "id-d.txt"}, w.Draft().FileIDs())
}

func TestWizard_UploadRespectsConcurrencyLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	var inFlight, peak int32
	api := newFakeAPI()
	api.upload = func(ctx context.Context, file apihttp.FilePart) (*models.FileUpload, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return echoUpload(ctx, file)
	}

	cfg := DefaultConfig()
	cfg.UploadConcurrency = 2
	w, _ := newTestWizard(t, api, cfg)

	_, err := w.Upload(context.Background(), fileParts("1", "2", "3", "4", "5"))
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Len(t, w.Draft().Files, 5)
}

func TestWizard_UploadBusyRejectsSecondBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	release := make(chan struct{})
	api := newFakeAPI()
	api.upload = func(ctx context.Context, file apihttp.FilePart) (*models.FileUpload, error) {
		close(started)
		<-release
		return echoUpload(ctx, file)
	}
	w, _ := newTestWizard(t, api, nil)

	done := make(chan error, 1)
	go func() {
		_, err := w.Upload(context.Background(), fileParts("slow.xlsx"))
		done <- err
	}()

	<-started
	assert.True(t, w.Uploading())
	_, err := w.Upload(context.Background(), fileParts("second.csv"))
	assert.Equal(t, apperrors.ErrCodeUploadInProgress, apperrors.CodeOf(err))

	_, err = w.Generate(context.Background())
	assert.Error(t, err, "generation waits for uploads")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"id-slow.xlsx"}, w.Draft().FileIDs())
}

func TestWizard_UploadFailureAttachesNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := newFakeAPI()
	api.upload = func(ctx context.Context, file apihttp.FilePart) (*models.FileUpload, error) {
		if file.Filename == "bad.exe" {
			return nil, apperrors.NewAPIError(400, map[string]interface{}{"message": "Unsupported file type"}, nil)
		}
		return echoUpload(ctx, file)
	}
	w, rec := newTestWizard(t, api, nil)

	_, err := w.Upload(context.Background(), fileParts("ok.csv", "bad.exe"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUploadFailed, apperrors.CodeOf(err))
	assert.Empty(t, w.Draft().Files)
	assert.Equal(t, []string{"Unsupported file type"}, rec.Errors())
	assert.False(t, w.Uploading())
}

func TestWizard_RemoveFileIsLocal(t *testing.T) {
	api := newFakeAPI()
	api.upload = echoUpload
	w, _ := newTestWizard(t, api, nil)

	_, err := w.Upload(context.Background(), fileParts("a.csv", "b.csv"))
	require.NoError(t, err)
	callsBefore := len(api.Calls())

	assert.True(t, w.RemoveFile("id-a.csv"))
	assert.False(t, w.RemoveFile("id-a.csv"))
	assert.Equal(t, []string{"id-b.csv"}, w.Draft().FileIDs())
	assert.Len(t, api.Calls(), callsBefore, "removal issues no request")
}

// ==========================
// Generate
// ==========================

func TestWizard_GenerateSuccess(t *testing.T) {
	api := toolAPI()
	api.upload = echoUpload
	var created models.CreateReportRequest
	api.on("POST", "/reports", func(body interface{}) (interface{}, error) {
		created = body.(models.CreateReportRequest)
		return models.Report{ID: "r-42", Status: models.ReportDraft}, nil
	})
	api.on("POST", "/reports/r-42/generate", func(interface{}) (interface{}, error) {
		return models.Report{ID: "r-42", Status: models.ReportGenerated}, nil
	})

	w, rec := startedWizard(t, api)
	_, err := w.Upload(context.Background(), fileParts("bank.csv"))
	require.NoError(t, err)

	outcome, err := w.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Outcome{ReportID: "r-42", Navigate: "/dashboard/my-reports"}, outcome)

	want := models.CreateReportRequest{
		ToolID:     "emi",
		Title:      "EMI Calculator Report",
		Industry:   "Banking",
		ReportType: "Loan Assessment",
		Audience:   "Self",
		Purpose:    "Planning",
		Tone:       "Professional",
		Depth:      "Comprehensive",
		WizardData: models.WizardData{Notes: "first home", UploadedFileIDs: []string{"id-bank.csv"}},
		Inputs:     map[string]string{"f-amount": "250000"},
	}
	if diff := cmp.Diff(want, created); diff != "" {
		t.Errorf("create payload mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, rec.Successes(), "Report generated successfully!")

	// the draft starts over, industry pre-filled from the tool again
	assert.Equal(t, StepIndustry, w.Step())
	assert.Equal(t, "Banking", w.Draft().Industry)
	assert.Empty(t, w.Draft().Files)
}

func TestWizard_GenerateFailures(t *testing.T) {
	apiErr := apperrors.NewAPIError(500, map[string]interface{}{"message": "AI quota exceeded"}, nil)

	tests := []struct {
		name       string
		create     handler
		generate   handler
		wantCode   apperrors.ErrorCode
		wantReport string
		wantCalls  int
	}{
		{
			name:      "create fails",
			create:    func(interface{}) (interface{}, error) { return nil, apiErr },
			wantCode:  apperrors.ErrCodeReportCreateFailed,
			wantCalls: 1,
		},
		{
			name:      "create returns no id",
			create:    func(interface{}) (interface{}, error) { return models.Report{}, nil },
			wantCode:  apperrors.ErrCodeReportCreateFailed,
			wantCalls: 1,
		},
		{
			name:       "generate fails",
			create:     func(interface{}) (interface{}, error) { return models.Report{ID: "r-7"}, nil },
			generate:   func(interface{}) (interface{}, error) { return nil, apiErr },
			wantCode:   apperrors.ErrCodeReportGenerateFailed,
			wantReport: "r-7",
			wantCalls:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := toolAPI().on("POST", "/reports", tt.create)
			if tt.generate != nil {
				api.on("POST", "/reports/r-7/generate", tt.generate)
			}
			w, rec := startedWizard(t, api)
			before := w.Draft()

			outcome, err := w.Generate(context.Background())
			require.Error(t, err)
			assert.Nil(t, outcome)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.Len(t, rec.Errors(), 1)

			if tt.wantReport != "" {
				se := apperrors.Normalize(err)
				assert.Equal(t, tt.wantReport, se.Metadata["reportId"])
				assert.Equal(t, "AI quota exceeded", rec.Errors()[0])
			}

			var posts int
			for _, c := range api.Calls() {
				if c.Method == "POST" {
					posts++
				}
			}
			assert.Equal(t, tt.wantCalls, posts)

			assert.Equal(t, StepReview, w.Step())
			if diff := cmp.Diff(before, w.Draft()); diff != "" {
				t.Errorf("draft lost after failure (-before +after):\n%s", diff)
			}
		})
	}
}

func TestWizard_GenerateValidatesBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(w *Wizard)
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "missing required answer",
			prepare:  func(w *Wizard) { _ = w.SetAnswer("f-amount", "") },
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name:     "answer below minimum",
			prepare:  func(w *Wizard) { _ = w.SetAnswer("f-amount", "10") },
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name:     "option outside the list",
			prepare:  func(w *Wizard) { _ = w.SetAnswer("f-tenure", "7") },
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name:     "not on the review step",
			prepare:  func(w *Wizard) { w.Back() },
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name:     "report type cleared",
			prepare:  func(w *Wizard) { _ = w.SetIndustry("Insurance") },
			wantCode: apperrors.ErrCodeStepIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := toolAPI()
			w, _ := startedWizard(t, api)
			tt.prepare(w)
			callsBefore := len(api.Calls())

			_, err := w.Generate(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.Len(t, api.Calls(), callsBefore)
		})
	}
}

func TestWizard_GenerateWithoutTool(t *testing.T) {
	w, _ := newTestWizard(t, newFakeAPI(), nil)
	_, err := w.Generate(context.Background())
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(err))
}

// ==========================
// Config
// ==========================

func TestConfig(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "zero concurrency", mutate: func(c *Config) { c.UploadConcurrency = 0 }},
		{name: "no route", mutate: func(c *Config) { c.DoneRoute = "" }},
		{name: "no industries", mutate: func(c *Config) { c.Catalog.Industries = nil }},
		{name: "unknown default tone", mutate: func(c *Config) { c.Catalog.DefaultTone = "Loud" }},
		{name: "unknown default depth", mutate: func(c *Config) { c.Catalog.DefaultDepth = "Deep" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestCatalogFrom(t *testing.T) {
	assert.Len(t, DefaultConfig().Catalog.Industries, 7)

	c := CatalogFrom(configWizard())
	assert.Equal(t, []string{"Healthcare"}, c.IndustryNames())
	types, ok := c.ReportTypes("Healthcare")
	assert.True(t, ok)
	assert.Equal(t, []string{"Clinic Budget"}, types)
	assert.Equal(t, []string{"Board"}, c.Audiences)
	assert.Equal(t, DefaultCatalog().Purposes, c.Purposes, "empty lists keep defaults")
	assert.Equal(t, "Professional", c.DefaultTone)
}

func configWizard() config.WizardConfig {
	return config.WizardConfig{
		Industries: []config.IndustryConfig{{Name: "Healthcare", ReportTypes: []string{"Clinic Budget"}}},
		Audiences:  []string{"Board"},
	}
}

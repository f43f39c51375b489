package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportdesk/internal/models"
	"reportdesk/internal/testutil/fakeapi"
	"reportdesk/pkg/registry"
)

// ==========================
// Harness
// ==========================

type cli struct {
	t      *testing.T
	srv    *fakeapi.Server
	dir    string
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("app:\n  name: reportdesk-test\nlogging:\n  level: error\n"), 0o600))
	return &cli{t: t, srv: srv, dir: dir, config: config}
}

// run executes one command line as a fresh process would, sharing only the
// token file with earlier runs.
func (c *cli) run(stdin string, args ...string) (string, string, error) {
	c.t.Helper()
	a := &app{}
	root := newRootCmd(a)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--config", c.config,
		"--api-base", c.srv.URL,
		"--token-store", "file",
		"--token-file", filepath.Join(c.dir, "token"),
	}, args...))

	err := execute(context.Background(), a, root)
	return out.String(), errOut.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, err := c.run("", args...)
	require.NoError(c.t, err, "stderr: %s", errOut)
	return out
}

func (c *cli) login(email string) {
	c.t.Helper()
	c.mustRun("login", "--email", email, "--password", "secret")
}

// ==========================
// Session commands
// ==========================

func TestCLI_LoginWhoamiLogout(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("login", "--email", "user@example.com", "--password", "secret")
	assert.Contains(t, out, "Signed in as user@example.com (USER)")
	assert.Contains(t, out, "Continue at /dashboard")

	out = c.mustRun("whoami", "-o", "json")
	var user models.AuthUser
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, 10, user.Credits)

	c.mustRun("logout")
	_, _, err := c.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestCLI_LoginReadsPasswordFromStdin(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run("secret\n", "login", "--email", "admin@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Continue at /admin")
}

func TestCLI_LoginFailureShowsServerMessage(t *testing.T) {
	c := newCLI(t)

	_, errOut, err := c.run("", "login", "--email", "user@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(errOut, "Invalid email or password"), "stderr: %s", errOut)

	_, _, err = c.run("", "whoami")
	assert.Error(t, err, "a failed login stores nothing")
}

func TestCLI_ExpiredStoredTokenIsCleared(t *testing.T) {
	c := newCLI(t)
	tokenFile := filepath.Join(c.dir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("auth_token: "+c.srv.Token("user@example.com", -time.Hour)+"\n"), 0o600))

	_, _, err := c.run("", "whoami")
	require.Error(t, err)
	assert.Equal(t, 0, c.srv.Count("GET", "/auth/me"), "expired tokens are dropped without a server call")

	_, statErr := os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

// ==========================
// Route guards
// ==========================

func TestCLI_AnonymousIsSentToLoginAndReturned(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run("", "reports", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
	assert.Equal(t, 0, c.srv.Count("GET", "/reports"))

	out := c.mustRun("login", "--email", "user@example.com", "--password", "secret")
	assert.Contains(t, out, "Continue at /dashboard/my-reports")

	// The remembered path is used once.
	c.mustRun("logout")
	out = c.mustRun("login", "--email", "user@example.com", "--password", "secret")
	assert.Contains(t, out, "Continue at /dashboard\n")
}

func TestCLI_RoleSpaces(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		args    []string
		wantErr string
	}{
		{name: "user blocked from admin", email: "user@example.com", args: []string{"admin", "templates", "list"}, wantErr: "access denied"},
		{name: "admin sent to admin home", email: "admin@example.com", args: []string{"reports", "list"}, wantErr: "continue at /admin"},
		{name: "user sees reports", email: "user@example.com", args: []string{"reports", "list"}},
		{name: "admin sees templates", email: "admin@example.com", args: []string{"admin", "templates", "list"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			c.login(tt.email)

			_, _, err := c.run("", tt.args...)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCLI_UnknownOutputFormat(t *testing.T) {
	c := newCLI(t)
	_, _, err := c.run("", "tools", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestCLI_ErrorsPrintOnce(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantText   string
		wantPrefix bool
	}{
		{name: "notified failure", args: []string{"login", "--email", "user@example.com", "--password", "wrong"}, wantText: "Invalid email or password"},
		{name: "silent failure", args: []string{"tools", "-o", "xml"}, wantText: "unknown output format", wantPrefix: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			_, errOut, err := c.run("", tt.args...)
			require.Error(t, err)
			assert.Equal(t, 1, strings.Count(errOut, tt.wantText), "stderr: %s", errOut)
			assert.Equal(t, tt.wantPrefix, strings.Contains(errOut, "Error:"), "stderr: %s", errOut)
		})
	}
}

// ==========================
// Tools, reports and the wizard
// ==========================

func TestCLI_Tools(t *testing.T) {
	c := newCLI(t)
	c.login("user@example.com")

	out := c.mustRun("tools")
	assert.Contains(t, out, "EMI Calculator")
	assert.Contains(t, out, "Runway Planner")

	out = c.mustRun("tools", "--category", "loans", "-o", "json")
	var tools []models.Tool
	require.NoError(t, json.Unmarshal([]byte(out), &tools))
	require.Len(t, tools, 1)
	assert.Equal(t, "emi", tools[0].ID)

	out = c.mustRun("tools", "fields", "emi")
	assert.Contains(t, out, "Loan amount")
	assert.Contains(t, out, "12, 24, 36")
}

func TestCLI_NewReportFromFlags(t *testing.T) {
	c := newCLI(t)
	c.login("user@example.com")

	data := filepath.Join(c.dir, "bank.csv")
	require.NoError(t, os.WriteFile(data, []byte("month,amount\njan,100\n"), 0o600))

	out := c.mustRun("new-report", "emi",
		"--report-type", "Credit Analysis",
		"--audience", "Investor",
		"--purpose", "Planning",
		"--answer", "Loan amount=250000",
		"--answer", "f-tenure=24",
		"--notes", "compare with last year",
		"--file", data,
	)
	assert.Contains(t, out, "is being generated")

	out = c.mustRun("reports", "list", "-o", "json")
	var list []models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	report := list[0]
	assert.Equal(t, models.ReportGenerated, report.Status)
	assert.Equal(t, "Banking", report.Industry)
	assert.Equal(t, "Comprehensive", report.Depth)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "bank.csv", report.Files[0].Filename)

	out = c.mustRun("reports", "show", report.ID, "--style", "notty", "--width", "60")
	assert.Contains(t, out, "Credit Analysis")

	exports := filepath.Join(c.dir, "exports")
	out = c.mustRun("reports", "export", report.ID, "--format", "pdf", "--dir", exports)
	assert.Contains(t, out, filepath.Join(exports, report.ID+".pdf"))
	saved, err := os.ReadFile(filepath.Join(exports, report.ID+".pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(saved, []byte("%PDF")))
}

func TestCLI_NewReportRejectsIncompleteStep(t *testing.T) {
	c := newCLI(t)
	c.login("user@example.com")

	_, _, err := c.run("", "new-report", "emi", "--report-type", "Credit Analysis", "--answer", "f-amount=5000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Audience")
	assert.Equal(t, 0, c.srv.Count("POST", "/reports"))
}

func TestCLI_InteractiveUploadsFilesFirst(t *testing.T) {
	c := newCLI(t)
	c.login("user@example.com")

	_, _, err := c.run("", "new-report", "emi", "--interactive", "--file", filepath.Join(c.dir, "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv", "an unreadable --file stops before the wizard opens")
	assert.Equal(t, 0, c.srv.Count("POST", "/files/upload"))
	assert.Equal(t, 0, c.srv.Count("POST", "/reports"))
}

func TestCLI_NewReportGenerateFailure(t *testing.T) {
	c := newCLI(t)
	c.login("user@example.com")
	c.srv.Fail("POST", "/reports/r-1/generate", 402, "Insufficient credits")

	_, errOut, err := c.run("", "new-report", "emi",
		"--report-type", "Loan Assessment",
		"--audience", "Self",
		"--purpose", "Planning",
		"--answer", "f-amount=5000",
	)
	require.Error(t, err)
	assert.Contains(t, errOut, "Insufficient credits")

	out := c.mustRun("reports", "list", "-o", "json")
	var list []models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.NotEqual(t, models.ReportGenerated, list[0].Status)
}

// ==========================
// Billing
// ==========================

func TestCLI_Dashboard(t *testing.T) {
	c := newCLI(t)
	c.login("user@example.com")

	args := []string{"new-report", "emi",
		"--report-type", "Loan Assessment",
		"--audience", "Self",
		"--purpose", "Planning",
		"--answer", "f-amount=5000",
	}
	c.mustRun(args...)
	c.srv.Fail("POST", "/reports/r-2/generate", 402, "Insufficient credits")
	_, _, err := c.run("", args...)
	require.Error(t, err)

	out := c.mustRun("dashboard")
	assert.Contains(t, out, "Credits: 9")
	assert.Contains(t, out, "Reports: 2 (generated 1, draft 1)")
	assert.Contains(t, out, "r-1")
	assert.Contains(t, out, "r-2")

	out = c.mustRun("dashboard", "--recent", "1", "-o", "json")
	var got struct {
		Credits int `json:"credits"`
		Reports struct {
			Total    int             `json:"total"`
			ByStatus map[string]int  `json:"byStatus"`
			Recent   []models.Report `json:"recent"`
		} `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 9, got.Credits)
	assert.Equal(t, 2, got.Reports.Total)
	assert.Equal(t, map[string]int{"GENERATED": 1, "DRAFT": 1}, got.Reports.ByStatus)
	assert.Len(t, got.Reports.Recent, 1)
}

func TestCLI_Billing(t *testing.T) {
	c := newCLI(t)
	c.login("user@example.com")

	out := c.mustRun("billing")
	assert.Contains(t, out, "Balance: 10 credits")
	assert.Contains(t, out, "PDF export")
	assert.Contains(t, out, "pk-100")

	out = c.mustRun("billing", "purchase", "pk-10")
	assert.Contains(t, out, "Purchase completed")

	out = c.mustRun("billing", "purchase", "pk-100")
	assert.Contains(t, out, "Complete the payment at https://pay.example.com/checkout/pk-100")

	out = c.mustRun("billing", "subscribe", "p-pro")
	assert.Contains(t, out, "Pro")
}

// ==========================
// Admin
// ==========================

func TestCLI_FieldRoundTrip(t *testing.T) {
	c := newCLI(t)
	c.login("admin@example.com")

	out := c.mustRun("admin", "templates", "fields", "add", "t-emi",
		"--label", "Interest rate", "--type", "number", "--required", "--min", "0", "--max", "30", "-o", "json")
	var field models.InputField
	require.NoError(t, json.Unmarshal([]byte(out), &field))
	require.NotEmpty(t, field.ID)
	assert.Equal(t, models.FieldNumber, field.Type)
	assert.Equal(t, 3, field.SortOrder)

	c.mustRun("admin", "templates", "fields", "update", "t-emi", field.ID, "--label", "Annual interest rate")
	stored, ok := c.srv.Template("t-emi")
	require.True(t, ok)
	require.Len(t, stored.InputFields, 3)
	assert.Equal(t, "Annual interest rate", stored.InputFields[2].Label)
	assert.True(t, stored.InputFields[2].Required, "unchanged attributes are kept")

	c.mustRun("admin", "templates", "fields", "delete", "t-emi", field.ID)
	stored, _ = c.srv.Template("t-emi")
	assert.Len(t, stored.InputFields, 2)
}

func TestCLI_FieldValidationNeverReachesServer(t *testing.T) {
	c := newCLI(t)
	c.login("admin@example.com")

	_, _, err := c.run("", "admin", "templates", "fields", "add", "t-emi", "--label", "Plan", "--type", "select")
	require.Error(t, err)
	assert.Equal(t, 0, c.srv.Count("POST", "/admin/report-templates/t-emi/input-fields"))
}

func TestCLI_TemplateCreateUpdateDelete(t *testing.T) {
	c := newCLI(t)
	c.login("admin@example.com")

	out := c.mustRun("admin", "templates", "create",
		"--tool", "roi", "--title", "ROI Report",
		"--system-prompt", "s", "--calculation-prompt", "c", "--output-format-prompt", "o",
		"--temperature", "0.7", "-o", "json")
	var created models.ReportTemplate
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotEmpty(t, created.ID)

	c.mustRun("admin", "templates", "update", created.ID, "--title", "ROI Deep Dive")
	stored, ok := c.srv.Template(created.ID)
	require.True(t, ok)
	assert.Equal(t, "ROI Deep Dive", stored.Title)
	require.NotNil(t, stored.Temperature)
	assert.InDelta(t, 0.7, *stored.Temperature, 1e-9)

	_, _, err := c.run("n\n", "admin", "templates", "delete", created.ID)
	require.Error(t, err)
	_, ok = c.srv.Template(created.ID)
	assert.True(t, ok, "declined delete keeps the template")
	assert.Equal(t, 0, c.srv.Count("DELETE", "/admin/report-templates/"+created.ID))

	c.mustRun("admin", "templates", "delete", created.ID, "--yes")
	_, ok = c.srv.Template(created.ID)
	assert.False(t, ok)
}

func TestCLI_TemplateCreateRejectsOutOfRangeTemperature(t *testing.T) {
	c := newCLI(t)
	c.login("admin@example.com")

	_, errOut, err := c.run("", "admin", "templates", "create",
		"--tool", "roi", "--title", "ROI Report",
		"--system-prompt", "s", "--calculation-prompt", "c", "--output-format-prompt", "o",
		"--temperature", "3")
	require.Error(t, err)
	assert.Contains(t, errOut, "Temperature must be between 0 and 2")
	assert.Equal(t, 0, c.srv.Count("POST", "/admin/report-templates"))
}

func TestCLI_BundleExportImport(t *testing.T) {
	c := newCLI(t)
	c.login("admin@example.com")

	bundlePath := filepath.Join(c.dir, "bundles", "templates.yaml")
	out := c.mustRun("admin", "templates", "export", bundlePath, "--version", "7")
	assert.Contains(t, out, "Exported 1 template(s)")

	bundle, err := registry.LoadBundle(bundlePath)
	require.NoError(t, err)
	assert.Equal(t, "7", bundle.Version)
	require.Len(t, bundle.Templates[0].InputFields, 2)

	out = c.mustRun("admin", "templates", "import", bundlePath, "-o", "json")
	var imported []models.ReportTemplate
	require.NoError(t, json.Unmarshal([]byte(out), &imported))
	require.Len(t, imported, 1)
	assert.NotEqual(t, "t-emi", imported[0].ID)
	assert.Equal(t, "EMI Report", imported[0].Title)
	assert.Len(t, imported[0].InputFields, 2)
}

// Package fakeapi is an in-memory reportdesk backend for tests. It speaks the
// same JSON wire format as the real service and issues HS256 JWTs.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"reportdesk/internal/models"
)

var signingKey = []byte("fakeapi-test-secret")

// Request is one request seen by the server.
type Request struct {
	Method string
	Path   string
	Auth   bool
}

type account struct {
	password string
	user     models.AuthUser
}

type failure struct {
	status  int
	message string
}

// Server holds the backend state. All fields are guarded by mu.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account
	tools         []models.Tool
	templates     map[string]*models.ReportTemplate
	reports       map[string]*models.Report
	reportOrder   []string
	files         map[string]models.FileUpload
	plans         []models.SubscriptionPlan
	packages      []models.CreditPackage
	subscription  *models.UserSubscription
	transactions  []models.CreditTransaction
	purchaseReply map[string]models.PaymentResponse
	failures      map[string]failure
	requests      []Request
	seq           int
}

// New starts a server seeded with one user, one admin, a few tools and the
// billing catalog.
func New() *Server {
	s := &Server{
		accounts:      map[string]*account{},
		templates:     map[string]*models.ReportTemplate{},
		reports:       map[string]*models.Report{},
		files:         map[string]models.FileUpload{},
		purchaseReply: map[string]models.PaymentResponse{},
		failures:      map[string]failure{},
	}
	s.seed()
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) seed() {
	s.AddAccount(models.AuthUser{ID: "u-1", Email: "user@example.com", FullName: "Uma User", Role: models.RoleUser, Credits: 10, Plan: models.PlanFree}, "secret")
	s.AddAccount(models.AuthUser{ID: "a-1", Email: "admin@example.com", FullName: "Ada Admin", Role: models.RoleAdmin, Plan: models.PlanEnterprise}, "secret")

	s.tools = []models.Tool{
		{ID: "emi", Title: "EMI Calculator", Category: "Loans", Industry: "Banking"},
		{ID: "roi", Title: "ROI Calculator", Category: "Investment", Industry: "Real Estate"},
		{ID: "runway", Title: "Runway Planner", Category: "Startups"},
	}

	minAmount := 1000.0
	s.templates["t-emi"] = &models.ReportTemplate{
		ID:                 "t-emi",
		ToolID:             "emi",
		Title:              "EMI Report",
		Industry:           "Banking",
		SystemPrompt:       "You are a lending analyst.",
		CalculationPrompt:  "Compute the monthly instalment.",
		OutputFormatPrompt: "Markdown with a summary table.",
		InputFields: []models.InputField{
			{ID: "f-amount", Label: "Loan amount", Type: models.FieldNumber, Required: true, MinValue: &minAmount, SortOrder: 1},
			{ID: "f-tenure", Label: "Tenure", Type: models.FieldSelect, Options: []string{"12", "24", "36"}, SortOrder: 2},
		},
	}

	s.plans = []models.SubscriptionPlan{
		{ID: "p-free", Name: "Free", CreditsPerMonth: 5, MaxReportsPerMonth: 5, FeaturesJSON: `["Basic reports"]`},
		{ID: "p-pro", Name: "Pro", MonthlyPrice: 29, CreditsPerMonth: 100, MaxReportsPerMonth: 100, FeaturesJSON: `["All tools","PDF export"]`},
	}
	s.packages = []models.CreditPackage{
		{ID: "pk-10", Name: "Starter", Credits: 10, Price: 5},
		{ID: "pk-100", Name: "Bulk", Credits: 100, Price: 40},
	}
	s.purchaseReply["pk-10"] = models.PaymentResponse{Status: models.PaymentStatusCompleted, Message: "10 credits added"}
	s.purchaseReply["pk-100"] = models.PaymentResponse{Status: "pending", PaymentURL: "https://pay.example.com/checkout/pk-100"}
}

// ==========================
// Test controls
// ==========================

// AddAccount registers a user that can log in with password.
func (s *Server) AddAccount(user models.AuthUser, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Email] = &account{password: password, user: user}
}

// Fail makes every request to "METHOD /path" answer status with message.
// The path is matched exactly, after routing.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Recover removes a failure set with Fail.
func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// Requests returns every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Token mints a token for email valid for ttl; a negative ttl gives an
// expired token.
func (s *Server) Token(email string, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		return ""
	}
	return mint(acc.user.ID, ttl)
}

// Template returns a copy of the stored template.
func (s *Server) Template(id string) (models.ReportTemplate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return models.ReportTemplate{}, false
	}
	out := *t
	out.InputFields = append([]models.InputField(nil), t.InputFields...)
	return out, true
}

// SetSubscription replaces the current subscription; nil means none.
func (s *Server) SetSubscription(sub *models.UserSubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscription = sub
}

func mint(userID string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// ==========================
// Routing
// ==========================

type handlerFunc func(w http.ResponseWriter, r *http.Request, user *models.AuthUser)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", s.open(s.login))
	mux.HandleFunc("POST /auth/register", s.open(s.register))
	mux.HandleFunc("GET /auth/me", s.authed(s.me))

	mux.HandleFunc("GET /tools", s.authed(s.listTools))
	mux.HandleFunc("GET /tools/categories", s.authed(s.categories))
	mux.HandleFunc("GET /tools/{id}", s.authed(s.getTool))
	mux.HandleFunc("GET /tools/{id}/fields", s.authed(s.toolFields))
	mux.HandleFunc("GET /report-templates/{toolId}", s.authed(s.userTemplate))

	mux.HandleFunc("GET /reports", s.authed(s.listReports))
	mux.HandleFunc("POST /reports", s.authed(s.createReport))
	mux.HandleFunc("GET /reports/{id}", s.authed(s.getReport))
	mux.HandleFunc("POST /reports/{id}/generate", s.authed(s.generateReport))
	mux.HandleFunc("GET /reports/{id}/export/{format}", s.authed(s.exportReport))
	mux.HandleFunc("POST /files/upload", s.authed(s.upload))

	mux.HandleFunc("GET /subscriptions/plans", s.authed(s.listPlans))
	mux.HandleFunc("GET /subscriptions/current", s.authed(s.currentSubscription))
	mux.HandleFunc("POST /subscriptions/subscribe", s.authed(s.subscribe))
	mux.HandleFunc("GET /payments/packages", s.authed(s.listPackages))
	mux.HandleFunc("POST /payments/purchase", s.authed(s.purchase))
	mux.HandleFunc("GET /credits/balance", s.authed(s.balance))
	mux.HandleFunc("GET /credits/transactions", s.authed(s.listTransactions))

	mux.HandleFunc("GET /admin/report-templates", s.admin(s.listTemplates))
	mux.HandleFunc("POST /admin/report-templates", s.admin(s.createTemplate))
	mux.HandleFunc("GET /admin/report-templates/{id}", s.admin(s.getTemplate))
	mux.HandleFunc("PUT /admin/report-templates/{id}", s.admin(s.updateTemplate))
	mux.HandleFunc("DELETE /admin/report-templates/{id}", s.admin(s.deleteTemplate))
	mux.HandleFunc("POST /admin/report-templates/{id}/input-fields", s.admin(s.addField))
	mux.HandleFunc("PUT /admin/report-templates/input-fields/{fieldId}", s.admin(s.updateField))
	mux.HandleFunc("DELETE /admin/report-templates/input-fields/{fieldId}", s.admin(s.deleteField))

	return mux
}

// intercept records the request and applies any configured failure.
func (s *Server) intercept(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization") != ""})
	f, failing := s.failures[r.Method+" "+r.URL.Path]
	s.mu.Unlock()
	if failing {
		writeError(w, f.status, f.message)
		return true
	}
	return false
}

func (s *Server) open(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.intercept(w, r) {
			return
		}
		h(w, r, nil)
	}
}

func (s *Server) authed(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.intercept(w, r) {
			return
		}
		user, ok := s.authenticate(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h(w, r, user)
	}
}

func (s *Server) admin(h handlerFunc) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request, user *models.AuthUser) {
		if !user.IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		h(w, r, user)
	})
}

func (s *Server) authenticate(r *http.Request) (*models.AuthUser, bool) {
	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || raw == "" {
		return nil, false
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == claims.Subject {
			u := acc.user
			return &u, true
		}
	}
	return nil, false
}

func (s *Server) nextID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// ==========================
// Encoding helpers
// ==========================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// ==========================
// Auth
// ==========================

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || acc.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{AuthUser: acc.user, Token: mint(acc.user.ID, time.Hour)})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Email and a password of at least 6 characters are required")
		return
	}
	s.mu.Lock()
	if _, taken := s.accounts[req.Email]; taken {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	s.seq++
	user := models.AuthUser{ID: fmt.Sprintf("u-%d", s.seq+100), Email: req.Email, FullName: req.FullName, Role: models.RoleUser, Credits: 5, Plan: models.PlanFree}
	s.accounts[req.Email] = &account{password: req.Password, user: user}
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, models.AuthResponse{AuthUser: user, Token: mint(user.ID, time.Hour)})
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, user *models.AuthUser) {
	writeJSON(w, http.StatusOK, user)
}

// ==========================
// Tools and user templates
// ==========================

func (s *Server) listTools(w http.ResponseWriter, _ *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tools)
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, t := range s.tools {
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) findTool(id string) (models.Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tools {
		if t.ID == id {
			return t, true
		}
	}
	return models.Tool{}, false
}

func (s *Server) templateForTool(toolID string) (*models.ReportTemplate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.ToolID == toolID {
			return t, true
		}
	}
	return nil, false
}

func (s *Server) getTool(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	tool, ok := s.findTool(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Tool not found")
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (s *Server) toolFields(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	tmpl, ok := s.templateForTool(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusOK, []models.InputField{})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, tmpl.InputFields)
}

func (s *Server) userTemplate(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	tmpl, ok := s.templateForTool(r.PathValue("toolId"))
	if !ok {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.UserReportTemplate{
		ToolID:      tmpl.ToolID,
		Title:       tmpl.Title,
		Description: tmpl.Description,
		Category:    tmpl.Category,
		Industry:    tmpl.Industry,
		InputFields: tmpl.InputFields,
	})
}

// ==========================
// Reports and files
// ==========================

func (s *Server) listReports(w http.ResponseWriter, _ *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Report, 0, len(s.reportOrder))
	for i := len(s.reportOrder) - 1; i >= 0; i-- {
		out = append(out, *s.reports[s.reportOrder[i]])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	var req models.CreateReportRequest
	if !decode(w, r, &req) {
		return
	}
	if _, ok := s.findTool(req.ToolID); !ok {
		writeError(w, http.StatusBadRequest, "Unknown tool")
		return
	}
	id := s.nextID("r")

	s.mu.Lock()
	defer s.mu.Unlock()
	var files []models.UploadedFileInfo
	for _, fid := range req.WizardData.UploadedFileIDs {
		if f, ok := s.files[fid]; ok {
			files = append(files, models.UploadedFileInfo{ID: f.ID, Filename: f.Filename, ContentType: f.ContentType, FileSize: f.FileSize, DataSummary: f.DataSummary})
		}
	}
	report := &models.Report{
		ID:         id,
		ToolID:     req.ToolID,
		Title:      req.Title,
		Status:     models.ReportDraft,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Industry:   req.Industry,
		ReportType: req.ReportType,
		Audience:   req.Audience,
		Purpose:    req.Purpose,
		Tone:       req.Tone,
		Depth:      req.Depth,
		Files:      files,
	}
	s.reports[id] = report
	s.reportOrder = append(s.reportOrder, id)
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) generateReport(w http.ResponseWriter, r *http.Request, user *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	report.Status = models.ReportGenerated
	report.Content = fmt.Sprintf("## %s\n\n%s analysis for a %s audience.", report.ReportType, report.Depth, report.Audience)
	if acc, found := s.accounts[user.Email]; found && acc.user.Credits > 0 {
		acc.user.Credits--
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) exportReport(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	report, ok := s.reports[r.PathValue("id")]
	var content string
	if ok {
		content = report.Content
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}

	switch format := r.PathValue("format"); format {
	case string(models.ExportPDF):
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, report.ID))
		_, _ = io.WriteString(w, "%PDF-1.7\n"+content)
	case string(models.ExportMarkdown):
		w.Header().Set("Content-Type", "text/markdown")
		_, _ = io.WriteString(w, content)
	default:
		writeError(w, http.StatusBadRequest, "Unsupported format")
	}
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unreadable file")
		return
	}

	preview := string(data)
	if len(preview) > 200 {
		preview = preview[:200]
	}
	rec := models.FileUpload{
		ID:          s.nextID("f"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		FileSize:    int64(len(data)),
		TextPreview: preview,
		DataSummary: fmt.Sprintf("%d lines", strings.Count(string(data), "\n")+1),
	}
	s.mu.Lock()
	s.files[rec.ID] = rec
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rec)
}

// ==========================
// Billing
// ==========================

func (s *Server) listPlans(w http.ResponseWriter, _ *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.plans)
}

func (s *Server) listPackages(w http.ResponseWriter, _ *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.packages)
}

func (s *Server) currentSubscription(w http.ResponseWriter, _ *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.subscription)
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	var req models.SubscribeRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		if p.ID == req.PlanID {
			s.subscription = &models.UserSubscription{
				ID:        "sub-" + p.ID,
				PlanName:  p.Name,
				Status:    "ACTIVE",
				StartDate: time.Now().UTC().Format("2006-01-02"),
				AutoRenew: true,
			}
			writeJSON(w, http.StatusOK, s.subscription)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Plan not found")
}

func (s *Server) purchase(w http.ResponseWriter, r *http.Request, user *models.AuthUser) {
	var req models.PurchaseRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reply, ok := s.purchaseReply[req.PackageID]
	if !ok {
		writeError(w, http.StatusNotFound, "Package not found")
		return
	}
	reply.PaymentID = fmt.Sprintf("pay-%d", len(s.transactions)+1)
	if reply.Status == models.PaymentStatusCompleted {
		for _, p := range s.packages {
			if p.ID != req.PackageID {
				continue
			}
			acc := s.accounts[user.Email]
			acc.user.Credits += p.Credits
			s.transactions = append(s.transactions, models.CreditTransaction{
				ID:           reply.PaymentID,
				Type:         "PURCHASE",
				Credits:      p.Credits,
				ReferenceID:  p.ID,
				BalanceAfter: acc.user.Credits,
				CreatedAt:    time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) balance(w http.ResponseWriter, _ *http.Request, user *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recent := s.transactions
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	writeJSON(w, http.StatusOK, models.CreditBalance{Balance: s.accounts[user.Email].user.Credits, RecentTransactions: recent})
}

func (s *Server) listTransactions(w http.ResponseWriter, _ *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.CreditTransaction{}, s.transactions...))
}

// ==========================
// Admin templates
// ==========================

func (s *Server) listTemplates(w http.ResponseWriter, _ *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ReportTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	var req models.ReportTemplateRequest
	if !decode(w, r, &req) {
		return
	}
	id := s.nextID("t")
	t := &models.ReportTemplate{ID: id}
	applyTemplate(t, req)
	for _, f := range req.InputFields {
		t.InputFields = append(t.InputFields, fieldFrom(s.nextID("f"), f))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[id] = t
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) updateTemplate(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	var req models.ReportTemplateRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	applyTemplate(t, req)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTemplate(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := s.templates[id]; !ok {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	delete(s.templates, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addField(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	var req models.InputFieldRequest
	if !decode(w, r, &req) {
		return
	}
	field := fieldFrom(s.nextID("f"), req)

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	t.InputFields = append(t.InputFields, field)
	writeJSON(w, http.StatusCreated, field)
}

func (s *Server) updateField(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	var req models.InputFieldRequest
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("fieldId")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		for i := range t.InputFields {
			if t.InputFields[i].ID == id {
				t.InputFields[i] = fieldFrom(id, req)
				writeJSON(w, http.StatusOK, t.InputFields[i])
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "Input field not found")
}

func (s *Server) deleteField(w http.ResponseWriter, r *http.Request, _ *models.AuthUser) {
	id := r.PathValue("fieldId")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		for i := range t.InputFields {
			if t.InputFields[i].ID == id {
				t.InputFields = append(t.InputFields[:i], t.InputFields[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "Input field not found")
}

func applyTemplate(t *models.ReportTemplate, req models.ReportTemplateRequest) {
	t.ToolID = req.ToolID
	t.Title = req.Title
	t.Description = req.Description
	t.Category = req.Category
	t.Industry = req.Industry
	t.SystemPrompt = req.SystemPrompt
	t.CalculationPrompt = req.CalculationPrompt
	t.OutputFormatPrompt = req.OutputFormatPrompt
	t.Temperature = req.Temperature
	t.MaxTokens = req.MaxTokens
	t.Active = req.Active
}

func fieldFrom(id string, req models.InputFieldRequest) models.InputField {
	return models.InputField{
		ID:          id,
		Label:       req.Label,
		Description: req.Description,
		Type:        req.Type,
		Required:    req.Required,
		MinValue:    req.MinValue,
		MaxValue:    req.MaxValue,
		Options:     req.Options,
		SortOrder:   req.SortOrder,
	}
}

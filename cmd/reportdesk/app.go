package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reportdesk/internal/common/config"
	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/metrics"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/common/observability"
	"reportdesk/internal/features/billing"
	"reportdesk/internal/features/guard"
	"reportdesk/internal/features/reports"
	"reportdesk/internal/features/session"
	"reportdesk/internal/features/templates"
	"reportdesk/internal/features/wizard"
)

// options are the global flags.
type options struct {
	configPath string
	apiBase    string
	tokenStore string
	tokenFile  string
	output     string
	logLevel   string
	yes        bool
}

// app is the wiring shared by every command. It is built lazily so that
// --help works without a reachable backend.
type app struct {
	opts options
	out  io.Writer
	in   io.Reader

	cfg      *config.Config
	zap      *zap.Logger
	log      logger.Logger
	obs      *observability.Observability
	client   *apihttp.Client
	notifier notify.Notifier
	shown    *notify.Recorder
	store    session.TokenStore
	session  *session.Manager
	guard    *guard.Guard
	metrics  *http.Server
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.opts.configPath != "" {
		cfg, err = config.LoadFromFile(a.opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	a.applyFlags(cfg)
	a.cfg = cfg

	a.zap = logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	a.log = logger.NewZapAdapter(a.zap).WithFields(map[string]interface{}{"app": cfg.App.Name})

	a.obs = observability.Noop()
	if cfg.Metrics.Enabled {
		a.obs = observability.New(cfg.App.Name)
		a.startMetrics(cfg.Metrics.Address)
	}

	a.shown = notify.NewRecorder()
	a.notifier = notify.Multi{notify.NewWriterNotifier(cmd.ErrOrStderr()), notify.NewLogNotifier(a.log), a.shown}
	a.client = apihttp.NewClient(apihttp.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   config.GetDuration(cfg.API.TimeoutMs),
		UserAgent: cfg.API.UserAgent,
		Logger:    a.log,
	})

	a.store, err = session.NewTokenStore(cfg)
	if err != nil {
		return err
	}
	sessionCfg := session.ConfigFrom(cfg)
	if err := sessionCfg.Validate(); err != nil {
		return fmt.Errorf("invalid session config: %w", err)
	}
	a.session = session.NewManager(session.ServiceDependencies{
		Logger:        a.log,
		API:           a.client,
		Store:         a.store,
		Notifier:      a.notifier,
		Observability: a.obs,
	}, sessionCfg)
	a.client.SetTokenSource(a.session)

	guardCfg := guard.ConfigFrom(cfg.Routes)
	if err := guardCfg.Validate(); err != nil {
		return fmt.Errorf("invalid routes config: %w", err)
	}
	a.guard = guard.New(guardCfg)

	a.session.Init(cmd.Context())
	return nil
}

func (a *app) applyFlags(cfg *config.Config) {
	if a.opts.apiBase != "" {
		cfg.API.BaseURL = strings.TrimRight(a.opts.apiBase, "/")
	}
	if a.opts.tokenStore != "" {
		cfg.Session.Store = a.opts.tokenStore
	}
	if a.opts.tokenFile != "" {
		cfg.Session.FilePath = a.opts.tokenFile
	}
	if a.opts.logLevel != "" {
		cfg.Logging.Level = a.opts.logLevel
	}
}

// startMetrics serves the Prometheus registry while the command runs.
func (a *app) startMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Warn("metrics server stopped", map[string]interface{}{"error": err.Error(), "address": addr})
		}
	}()
}

// close releases everything setup acquired. It is safe to call twice.
func (a *app) close() {
	if a.session != nil {
		_ = a.session.Close()
		a.session = nil
	}
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metrics.Shutdown(ctx)
		cancel()
		a.metrics = nil
	}
	if a.obs != nil {
		a.obs.Shutdown()
		a.obs = nil
	}
	if a.zap != nil {
		_ = a.zap.Sync()
		a.zap = nil
	}
}

// ==========================
// Route guarding
// ==========================

const returnToSuffix = ":return_to"

// enter applies the route guards to path, the screen a command stands for.
// An anonymous user is sent to login and the path is remembered so that
// "reportdesk login" can point back at it.
func (a *app) enter(ctx context.Context, path string) error {
	d := a.guard.Evaluate(a.session.Snapshot(), path)
	switch {
	case d.Action == guard.ActionRender:
		return nil
	case d.Target == a.cfg.Routes.Login:
		if d.ReturnTo != "" {
			a.rememberReturn(ctx, d.ReturnTo)
		}
		return fmt.Errorf("not signed in: run \"reportdesk login\" first")
	case d.Target == a.cfg.Routes.AccessDenied:
		return fmt.Errorf("access denied: %s requires an admin account", path)
	default:
		return fmt.Errorf("%s is not available for this account, continue at %s", path, d.Target)
	}
}

func (a *app) returnKey() string {
	return session.ConfigFrom(a.cfg).StorageKey + returnToSuffix
}

func (a *app) rememberReturn(ctx context.Context, path string) {
	if err := a.store.Save(ctx, a.returnKey(), path); err != nil {
		a.log.Debug("failed to remember return path", map[string]interface{}{"error": err.Error()})
	}
}

// takeReturn loads and clears the remembered path.
func (a *app) takeReturn(ctx context.Context) string {
	path, err := a.store.Load(ctx, a.returnKey())
	if err != nil || path == "" {
		return ""
	}
	_ = a.store.Clear(ctx, a.returnKey())
	return path
}

// ==========================
// Feature services
// ==========================

func (a *app) reports() *reports.Service {
	return reports.NewService(reports.ServiceDependencies{Logger: a.log, API: a.client, Notifier: a.notifier})
}

func (a *app) billing() *billing.Panel {
	return billing.NewPanel(billing.ServiceDependencies{Logger: a.log, API: a.client, Notifier: a.notifier, Observability: a.obs})
}

func (a *app) wizard() (*wizard.Wizard, error) {
	cfg := wizard.ConfigFrom(a.cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wizard config: %w", err)
	}
	return wizard.New(wizard.ServiceDependencies{Logger: a.log, API: a.client, Notifier: a.notifier, Observability: a.obs}, cfg), nil
}

func (a *app) editor() (*templates.Editor, error) {
	cfg := templates.ConfigFrom(a.cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid templates config: %w", err)
	}
	return templates.NewEditor(templates.ServiceDependencies{
		Logger:        a.log,
		API:           a.client,
		Notifier:      a.notifier,
		Confirmer:     a.confirmer(),
		Observability: a.obs,
	}, cfg), nil
}

// confirmer approves everything with --yes and otherwise asks on stdin.
func (a *app) confirmer() templates.Confirmer {
	if a.opts.yes {
		return templates.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	}
	return templates.ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
		var answer string
		if _, err := fmt.Fscanln(a.in, &answer); err != nil {
			return false, nil
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes", nil
	})
}

// Package billing aggregates plans, credit packages, balance and the current
// subscription, and issues subscribe and purchase actions.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"reportdesk/internal/common/errors"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/common/observability"
	"reportdesk/internal/models"
)

// Panel owns the last loaded billing snapshot.
type Panel struct {
	logger   logger.Logger
	api      API
	notifier notify.Notifier
	obs      *observability.Observability

	mu   sync.Mutex
	last *Snapshot
}

func NewPanel(deps ServiceDependencies) *Panel {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	obs := deps.Observability
	if obs == nil {
		obs = observability.Noop()
	}
	return &Panel{
		logger:   log.WithFields(map[string]interface{}{"component": "billing"}),
		api:      deps.API,
		notifier: notifier,
		obs:      obs,
	}
}

// Snapshot returns the most recent load, or nil before the first one.
func (p *Panel) Snapshot() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Load fetches the four resources concurrently. Each one fails on its own;
// the error is non-nil only when nothing could be loaded.
func (p *Panel) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snap := &Snapshot{Errors: map[Resource]error{}}
	errs := make([]error, len(Resources))

	var g errgroup.Group
	g.Go(func() error {
		var plans []models.SubscriptionPlan
		if _, err := p.api.Get(ctx, PathPlans, &plans); err != nil {
			errs[0] = err
			return nil
		}
		for i := range plans {
			plans[i].Features = p.decodeFeatures(plans[i])
		}
		snap.Plans = plans
		return nil
	})
	g.Go(func() error {
		var packages []models.CreditPackage
		if _, err := p.api.Get(ctx, PathPackages, &packages); err != nil {
			errs[1] = err
			return nil
		}
		snap.Packages = packages
		return nil
	})
	g.Go(func() error {
		var balance models.CreditBalance
		res, err := p.api.Get(ctx, PathBalance, &balance)
		if err != nil {
			errs[2] = err
			return nil
		}
		if !res.Empty {
			snap.Balance = &balance
		}
		return nil
	})
	g.Go(func() error {
		// The server answers null when there is no active subscription.
		var sub *models.UserSubscription
		if _, err := p.api.Get(ctx, PathSubscription, &sub); err != nil {
			errs[3] = err
			return nil
		}
		snap.Subscription = sub
		return nil
	})
	_ = g.Wait()

	var failed []string
	for i, err := range errs {
		if err != nil {
			snap.Errors[Resources[i]] = err
			failed = append(failed, string(Resources[i]))
		}
	}

	p.mu.Lock()
	p.last = snap
	p.mu.Unlock()

	if len(failed) == 0 {
		p.obs.Track(ctx, observability.FlowBillingLoad, start, nil)
		return snap, nil
	}

	p.logger.Warn("billing resources failed to load", map[string]interface{}{
		"failed": strings.Join(failed, ","),
	})
	p.notifier.Error(fmt.Sprintf("Failed to load %s", strings.Join(failed, ", ")))

	if len(failed) == len(Resources) {
		err := errs[0]
		p.obs.Track(ctx, observability.FlowBillingLoad, start, err)
		return snap, err
	}
	p.obs.RecordFlow(ctx, observability.FlowBillingLoad, "partial")
	return snap, nil
}

// Subscribe switches the user to planID and then reloads every resource,
// whether or not the subscription succeeded.
func (p *Panel) Subscribe(ctx context.Context, planID string) (*models.UserSubscription, *Snapshot, error) {
	if strings.TrimSpace(planID) == "" {
		return nil, nil, errors.NewValidationError("Plan ID is required", map[string]string{"planId": "required"})
	}
	start := time.Now()

	var sub models.UserSubscription
	_, err := p.api.Post(ctx, PathSubscribe, models.SubscribeRequest{PlanID: planID}, &sub)
	p.obs.Track(ctx, observability.FlowSubscribe, start, err)
	if err != nil {
		p.logger.Warn("subscribe failed", map[string]interface{}{"planId": planID, "error": err.Error()})
		p.notifier.Error(messageOr(err, "Failed to subscribe"))
	} else {
		p.logger.Info("subscribed", map[string]interface{}{"planId": planID, "plan": sub.PlanName})
		p.notifier.Success(fmt.Sprintf("Successfully subscribed to %s plan!", sub.PlanName))
	}

	snap, _ := p.Load(ctx)
	if err != nil {
		return nil, snap, err
	}
	return &sub, snap, nil
}

// Purchase buys a credit package. A completed purchase is confirmed with a
// notification; otherwise the outcome carries the payment page to open.
// Resources are reloaded afterwards in every case.
func (p *Panel) Purchase(ctx context.Context, packageID string) (*PurchaseOutcome, *Snapshot, error) {
	if strings.TrimSpace(packageID) == "" {
		return nil, nil, errors.NewValidationError("Package ID is required", map[string]string{"packageId": "required"})
	}
	start := time.Now()

	var resp models.PaymentResponse
	_, err := p.api.Post(ctx, PathPurchase, models.PurchaseRequest{PackageID: packageID}, &resp)
	p.obs.Track(ctx, observability.FlowPurchase, start, err)

	var outcome *PurchaseOutcome
	if err != nil {
		p.logger.Warn("purchase failed", map[string]interface{}{"packageId": packageID, "error": err.Error()})
		p.notifier.Error(messageOr(err, "Failed to purchase credits"))
	} else {
		outcome = &PurchaseOutcome{Status: resp.Status, Message: resp.Message}
		switch {
		case resp.Status == models.PaymentStatusCompleted:
			outcome.Completed = true
			msg := resp.Message
			if msg == "" {
				msg = "Credits purchased successfully!"
			}
			p.notifier.Success(msg)
		case resp.PaymentURL != "":
			outcome.RedirectURL = resp.PaymentURL
		}
		p.logger.Info("purchase submitted", map[string]interface{}{
			"packageId": packageID,
			"paymentId": resp.PaymentID,
			"status":    resp.Status,
			"redirect":  outcome.RedirectURL != "",
		})
	}

	snap, _ := p.Load(ctx)
	return outcome, snap, err
}

// Balance reads the credit balance alone.
func (p *Panel) Balance(ctx context.Context) (*models.CreditBalance, error) {
	var balance models.CreditBalance
	if _, err := p.api.Get(ctx, PathBalance, &balance); err != nil {
		p.notifier.Error(messageOr(err, "Failed to load credit balance"))
		return nil, err
	}
	return &balance, nil
}

// Transactions lists the full credit history.
func (p *Panel) Transactions(ctx context.Context) ([]models.CreditTransaction, error) {
	var txs []models.CreditTransaction
	if _, err := p.api.Get(ctx, PathTransactions, &txs); err != nil {
		p.notifier.Error(messageOr(err, "Failed to load transactions"))
		return nil, err
	}
	return txs, nil
}

// decodeFeatures parses the plan's JSON feature list. A malformed list is
// shown as no features.
func (p *Panel) decodeFeatures(plan models.SubscriptionPlan) []string {
	if strings.TrimSpace(plan.FeaturesJSON) == "" {
		return nil
	}
	var features []string
	if err := json.Unmarshal([]byte(plan.FeaturesJSON), &features); err != nil {
		p.logger.Warn("malformed plan features", map[string]interface{}{"planId": plan.ID, "error": err.Error()})
		return nil
	}
	return features
}

// messageOr prefers the server's message over the generic fallback.
func messageOr(err error, fallback string) string {
	if msg := errors.UserMessage(err); msg != "" && msg != errors.DefaultErrorMessage {
		return msg
	}
	return fallback
}

package billing

import (
	"context"

	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/common/observability"
	"reportdesk/internal/models"
)

// API is the subset of the REST client the billing panel needs.
type API interface {
	Get(ctx context.Context, path string, out interface{}) (apihttp.Result, error)
	Post(ctx context.Context, path string, body, out interface{}) (apihttp.Result, error)
}

const (
	PathPlans        = "/subscriptions/plans"
	PathSubscription = "/subscriptions/current"
	PathSubscribe    = "/subscriptions/subscribe"
	PathPackages     = "/payments/packages"
	PathPurchase     = "/payments/purchase"
	PathBalance      = "/credits/balance"
	PathTransactions = "/credits/transactions"
)

// Resource names one of the four independently loaded billing resources.
type Resource string

const (
	ResourcePlans        Resource = "plans"
	ResourcePackages     Resource = "packages"
	ResourceBalance      Resource = "balance"
	ResourceSubscription Resource = "subscription"
)

// Resources lists the billing resources in display order.
var Resources = []Resource{ResourcePlans, ResourcePackages, ResourceBalance, ResourceSubscription}

// Snapshot is the result of one load. A resource that failed keeps its zero
// value and has an entry in Errors; the others are usable.
type Snapshot struct {
	Plans        []models.SubscriptionPlan `json:"plans" yaml:"plans"`
	Packages     []models.CreditPackage    `json:"packages" yaml:"packages"`
	Balance      *models.CreditBalance     `json:"balance" yaml:"balance"`
	Subscription *models.UserSubscription  `json:"subscription" yaml:"subscription"`
	Errors       map[Resource]error        `json:"-" yaml:"-"`
}

// Err returns the load error of r, or nil.
func (s *Snapshot) Err(r Resource) error {
	if s == nil {
		return nil
	}
	return s.Errors[r]
}

// Failed lists the resources that did not load, in display order.
func (s *Snapshot) Failed() []Resource {
	var out []Resource
	for _, r := range Resources {
		if s.Err(r) != nil {
			out = append(out, r)
		}
	}
	return out
}

// CurrentPlan reports whether plan is the user's active plan, either through
// the current subscription or the plan on the profile.
func (s *Snapshot) CurrentPlan(plan models.SubscriptionPlan, user *models.AuthUser) bool {
	if s != nil && s.Subscription != nil && s.Subscription.PlanName == plan.Name {
		return true
	}
	return user != nil && string(user.Plan) == plan.Name
}

// PurchaseOutcome tells the caller how a credit purchase ended.
type PurchaseOutcome struct {
	Status      string
	Completed   bool
	Message     string
	RedirectURL string
}

type ServiceDependencies struct {
	Logger        logger.Logger
	API           API
	Notifier      notify.Notifier
	Observability *observability.Observability
}

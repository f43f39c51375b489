// internal/models/billing.go
package models

type CreditTransaction struct {
	ID           string `json:"id" yaml:"id"`
	Type         string `json:"type" yaml:"type"`
	Credits      int    `json:"credits" yaml:"credits"`
	ReferenceID  string `json:"referenceId,omitempty" yaml:"referenceId,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	BalanceAfter int    `json:"balanceAfter" yaml:"balanceAfter"`
	CreatedAt    string `json:"createdAt" yaml:"createdAt"`
}

type CreditBalance struct {
	Balance            int                 `json:"balance" yaml:"balance"`
	RecentTransactions []CreditTransaction `json:"recentTransactions" yaml:"recentTransactions"`
}

type CreditPackage struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Credits     int     `json:"credits" yaml:"credits"`
	Price       float64 `json:"price" yaml:"price"`
	Description string  `json:"description" yaml:"description"`
}

// PaymentStatusCompleted marks a purchase that needs no external payment step.
const PaymentStatusCompleted = "completed"

type PaymentResponse struct {
	PaymentID  string `json:"paymentId" yaml:"paymentId"`
	Status     string `json:"status" yaml:"status"`
	PaymentURL string `json:"paymentUrl,omitempty" yaml:"paymentUrl,omitempty"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
}

type SubscriptionPlan struct {
	ID                 string   `json:"id" yaml:"id"`
	Name               string   `json:"name" yaml:"name"`
	MonthlyPrice       float64  `json:"monthlyPrice" yaml:"monthlyPrice"`
	CreditsPerMonth    int      `json:"creditsPerMonth" yaml:"creditsPerMonth"`
	MaxReportsPerMonth int      `json:"maxReportsPerMonth" yaml:"maxReportsPerMonth"`
	FeaturesJSON       string   `json:"featuresJson" yaml:"-"`
	Features           []string `json:"-" yaml:"features,omitempty"`
}

type UserSubscription struct {
	ID        string `json:"id" yaml:"id"`
	PlanName  string `json:"planName" yaml:"planName"`
	Status    string `json:"status" yaml:"status"`
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
	AutoRenew bool   `json:"autoRenew" yaml:"autoRenew"`
}

type SubscribeRequest struct {
	PlanID string `json:"planId"`
}

type PurchaseRequest struct {
	PackageID string `json:"packageId"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ErrorResponse is the legacy error body used by a few handlers
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PaginatedResponse wraps list responses
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ============================================================================
// Purchase frequency
// ============================================================================

// NextOrderPrediction says when the next order is expected
type NextOrderPrediction struct {
	DaysUntilDue int  `json:"daysUntilDue"`
	IsDue        bool `json:"isDue"`
}

// SpendingSummary aggregates order totals
type SpendingSummary struct {
	TotalSpent        float64 `json:"totalSpent"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// PurchaseFrequencyDTO is the output of the purchase frequency analyzer
type PurchaseFrequencyDTO struct {
	CustomerID           uuid.UUID           `json:"customerId"`
	OrderCount           int                 `json:"orderCount"`
	AvgDaysBetweenOrders float64             `json:"avgDaysBetweenOrders"`
	LastOrderDate        time.Time           `json:"lastOrderDate"`
	DaysSinceLastOrder   int                 `json:"daysSinceLastOrder"`
	NextOrderPrediction  NextOrderPrediction `json:"nextOrderPrediction"`
	Spending             SpendingSummary     `json:"spending"`
}

// ============================================================================
// Product affinity
// ============================================================================

// ProductUsageDTO describes how often a customer buys one product
type ProductUsageDTO struct {
	ProductID         uuid.UUID `json:"productId"`
	ProductName       string    `json:"productName"`
	TimesOrdered      int       `json:"timesOrdered"`
	PurchaseFrequency float64   `json:"purchaseFrequency"`
	TotalQuantity     float64   `json:"totalQuantity"`
}

// AffinityPairDTO counts how often two products appear in the same order
type AffinityPairDTO struct {
	Pair      string    `json:"pair"`
	Products  [2]string `json:"products"`
	Frequency int       `json:"frequency"`
}

// ProductAffinityReportDTO is the output of the product affinity analyzer
type ProductAffinityReportDTO struct {
	CustomerID         uuid.UUID         `json:"customerId"`
	TotalOrders        int               `json:"totalOrders"`
	RegularThreshold   int               `json:"regularThreshold"`
	RegularProducts    []ProductUsageDTO `json:"regularProducts"`
	OccasionalProducts []ProductUsageDTO `json:"occasionalProducts"`
	AffinityPairs      []AffinityPairDTO `json:"affinityPairs"`
}

// ============================================================================
// Anomaly detection
// ============================================================================

// CustomerTier is a business-importance bucket
type CustomerTier string

const (
	CustomerTierVIP         CustomerTier = "vip"
	CustomerTierHighValue   CustomerTier = "high_value"
	CustomerTierEstablished CustomerTier = "established"
	CustomerTierNew         CustomerTier = "new"
)

// Priority returns the inverse numeric priority of the tier (1 is most important)
func (t CustomerTier) Priority() int {
	switch t {
	case CustomerTierVIP:
		return 1
	case CustomerTierHighValue:
		return 2
	case CustomerTierEstablished:
		return 3
	default:
		return 4
	}
}

// Severity grades an anomaly
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// TrendDTO describes whether the order cadence is slowing down
type TrendDTO struct {
	Declining bool    `json:"declining"`
	RecentAvg float64 `json:"recentAvg"`
	OlderAvg  float64 `json:"olderAvg"`
	Trend     string  `json:"trend"`
}

// OverdueCustomerDTO is one ranked entry of the overdue detection
type OverdueCustomerDTO struct {
	CustomerID            uuid.UUID       `json:"customerId"`
	CustomerName          string          `json:"customerName"`
	CustomerPhone         string          `json:"customerPhone"`
	DaysOverdue           int             `json:"daysOverdue"`
	Threshold             int             `json:"threshold"`
	AvgDaysBetweenOrders  float64         `json:"avgDaysBetweenOrders"`
	LastOrderDate         time.Time       `json:"lastOrderDate"`
	ExpectedNextOrderDate time.Time       `json:"expectedNextOrderDate"`
	ChurnRiskScore        float64         `json:"churnRiskScore"`
	ConfidenceScore       float64         `json:"confidenceScore"`
	PatternStrength       PatternStrength `json:"patternStrength"`
	Tier                  CustomerTier    `json:"tier"`
	TierPriority          int             `json:"tierPriority"`
	LifetimeValue         float64         `json:"lifetimeValue"`
	Trend                 TrendDTO        `json:"trend"`
	PriorityScore         float64         `json:"priorityScore"`
	Severity              Severity        `json:"severity"`
}

// OrderItemInput is a line of an order being placed
type OrderItemInput struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName" validate:"required,max=200"`
	Quantity    float64   `json:"quantity" validate:"gt=0"`
}

// CheckOrderAnomaliesRequest is the request body for the order anomaly check
type CheckOrderAnomaliesRequest struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// Anomaly type identifiers
const (
	AnomalyTypeMissingRegularProduct = "missing_regular_product"
	AnomalyTypeLowQuantity           = "low_quantity"
)

// MissingProductDTO is a regular product absent from the current order
type MissingProductDTO struct {
	Type                    string    `json:"type"`
	ProductID               uuid.UUID `json:"productId"`
	ProductName             string    `json:"productName"`
	RegularityScore         float64   `json:"regularityScore"`
	DaysSinceLastPurchase   int       `json:"daysSinceLastPurchase"`
	AvgDaysBetweenPurchases float64   `json:"avgDaysBetweenPurchases"`
	Severity                Severity  `json:"severity"`
	Message                 string    `json:"message"`
}

// QuantityAnomalyDTO is an order line well below the customer's usual quantity
type QuantityAnomalyDTO struct {
	Type             string    `json:"type"`
	ProductID        uuid.UUID `json:"productId"`
	ProductName      string    `json:"productName"`
	OrderedQuantity  float64   `json:"orderedQuantity"`
	AverageQuantity  float64   `json:"averageQuantity"`
	ReductionPercent int       `json:"reductionPercent"`
	Severity         Severity  `json:"severity"`
	Message          string    `json:"message"`
}

// OrderAnomalyReportDTO is the result of checking an order against history
type OrderAnomalyReportDTO struct {
	HasAnomalies      bool                 `json:"hasAnomalies"`
	MissingProducts   []MissingProductDTO  `json:"missingProducts"`
	QuantityAnomalies []QuantityAnomalyDTO `json:"quantityAnomalies"`
}

// ============================================================================
// Alerts and runs
// ============================================================================

// AlertData is the input to the manager alert notifier
type AlertData struct {
	Type              AlertType              `json:"type"`
	Priority          AlertPriority          `json:"priority"`
	CustomerID        *uuid.UUID             `json:"customerId,omitempty"`
	CustomerName      string                 `json:"customerName,omitempty"`
	CustomerPhone     string                 `json:"customerPhone,omitempty"`
	Title             string                 `json:"title"`
	Message           string                 `json:"message"`
	RecommendedAction string                 `json:"recommendedAction,omitempty"`
	Details           map[string]interface{} `json:"details,omitempty"`
}

// AlertResult reports what the notifier did with an alert
type AlertResult struct {
	Sent      bool       `json:"sent"`
	AlertID   *uuid.UUID `json:"alertId,omitempty"`
	MessageID string     `json:"messageId,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// ManagerAlertDTO is the API representation of a manager alert
type ManagerAlertDTO struct {
	ID            uuid.UUID              `json:"id"`
	TenantID      uuid.UUID              `json:"tenantId"`
	AlertType     AlertType              `json:"alertType"`
	Priority      AlertPriority          `json:"priority"`
	CustomerID    *uuid.UUID             `json:"customerId,omitempty"`
	CustomerName  string                 `json:"customerName,omitempty"`
	CustomerPhone string                 `json:"customerPhone,omitempty"`
	Title         string                 `json:"title"`
	Message       string                 `json:"message"`
	Details       map[string]interface{} `json:"details,omitempty"`
	ActionTaken   string                 `json:"actionTaken,omitempty"`
	Dispatched    bool                   `json:"dispatched"`
	DispatchError string                 `json:"dispatchError,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// IntelligenceRunDTO is the API representation of a run record
type IntelligenceRunDTO struct {
	ID                 uuid.UUID  `json:"id"`
	TenantID           uuid.UUID  `json:"tenantId"`
	Status             RunStatus  `json:"status"`
	StartedAt          time.Time  `json:"startedAt"`
	FinishedAt         *time.Time `json:"finishedAt,omitempty"`
	CustomersProcessed int        `json:"customersProcessed"`
	MessagesSent       int        `json:"messagesSent"`
	AlertsRaised       int        `json:"alertsRaised"`
	Errors             int        `json:"errors"`
	DurationMs         int64      `json:"durationMs"`
	ErrorMessage       string     `json:"errorMessage,omitempty"`
}

// RunTriggerResponse is returned when a nightly pass is triggered over HTTP
type RunTriggerResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

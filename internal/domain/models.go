package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Tenant is a shop running the sales assistant
type Tenant struct {
	BaseModel
	Name         string `gorm:"type:varchar(200);not null"`
	IsActive     bool   `gorm:"not null;default:true;index;column:is_active"`
	ManagerName  string `gorm:"type:varchar(200);column:manager_name"`
	ManagerPhone string `gorm:"type:varchar(50);column:manager_phone"`
	Timezone     string `gorm:"type:varchar(64);not null;default:'UTC'"`
}

// CustomerProfile is an end customer of a tenant. Phone is both the WhatsApp
// contact handle and the key orders are linked by.
type CustomerProfile struct {
	BaseModel
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index;column:tenant_id"`
	Name          string     `gorm:"type:varchar(200)"`
	Phone         string     `gorm:"type:varchar(50);not null;index"`
	LifetimeValue float64    `gorm:"not null;default:0;column:lifetime_value"`
	OrderCount    int        `gorm:"not null;default:0;column:order_count"`
	OnboardedAt   *time.Time `gorm:"column:onboarded_at"`
}

// TableName keeps the table name short
func (CustomerProfile) TableName() string {
	return "customers"
}

// DisplayName returns the name, falling back to the phone number
func (c *CustomerProfile) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Phone
}

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusDraft          OrderStatus = "draft"
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// QualifyingOrderStatuses are the statuses counted as real purchases for analysis
var QualifyingOrderStatuses = []OrderStatus{
	OrderStatusDelivered,
	OrderStatusPendingPayment,
	OrderStatusConfirmed,
	OrderStatusCompleted,
}

// Order is read-only input to the intelligence engine
type Order struct {
	BaseModel
	TenantID      uuid.UUID   `gorm:"type:uuid;not null;index;column:tenant_id"`
	CustomerPhone string      `gorm:"type:varchar(50);not null;index;column:customer_phone"`
	Status        OrderStatus `gorm:"type:varchar(50);not null;index"`
	TotalAmount   float64     `gorm:"not null;default:0;column:total_amount"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a line on an order
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index;column:order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index;column:product_id"`
	ProductName string    `gorm:"type:varchar(200);not null;column:product_name"`
	Quantity    float64   `gorm:"not null"`
	UnitPrice   float64   `gorm:"not null;default:0;column:unit_price"`
}

// Conversation tracks the latest WhatsApp activity for a customer
type Conversation struct {
	BaseModel
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index;column:tenant_id"`
	CustomerPhone string     `gorm:"type:varchar(50);not null;index;column:customer_phone"`
	LastInboundAt *time.Time `gorm:"column:last_inbound_at"`
}

// PatternStrength is a coarse label for how reliable an inferred reorder interval is
type PatternStrength string

const (
	PatternStrengthWeak     PatternStrength = "weak"
	PatternStrengthModerate PatternStrength = "moderate"
	PatternStrengthStrong   PatternStrength = "strong"
)

// PurchasePattern is derived from order history and replaced on every analysis pass
type PurchasePattern struct {
	BaseModel
	TenantID              uuid.UUID       `gorm:"type:uuid;not null;index;column:tenant_id"`
	CustomerID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex;column:customer_id"`
	OrderCount            int             `gorm:"not null;column:order_count"`
	AvgDaysBetweenOrders  float64         `gorm:"not null;column:avg_days_between_orders"`
	LastOrderDate         time.Time       `gorm:"not null;column:last_order_date"`
	ExpectedNextOrderDate time.Time       `gorm:"not null;column:expected_next_order_date"`
	ConfidenceScore       float64         `gorm:"not null;column:confidence_score"`
	PatternStrength       PatternStrength `gorm:"type:varchar(20);not null;column:pattern_strength"`
	DaysOverdue           int             `gorm:"not null;default:0;column:days_overdue"`
	ChurnRiskScore        float64         `gorm:"not null;default:0;column:churn_risk_score"`
	IsOverdue             bool            `gorm:"not null;default:false;index;column:is_overdue"`
	TotalSpent            float64         `gorm:"not null;default:0;column:total_spent"`
	AnalyzedAt            time.Time       `gorm:"not null;column:analyzed_at"`
}

// ProductAffinity is a derived customer-product record, replaced on every analysis pass
type ProductAffinity struct {
	BaseModel
	TenantID                uuid.UUID `gorm:"type:uuid;not null;index;column:tenant_id"`
	CustomerID              uuid.UUID `gorm:"type:uuid;not null;index;column:customer_id"`
	ProductID               uuid.UUID `gorm:"type:uuid;not null;column:product_id"`
	ProductName             string    `gorm:"type:varchar(200);not null;column:product_name"`
	PurchaseCount           int       `gorm:"not null;column:purchase_count"`
	TotalQuantity           float64   `gorm:"not null;column:total_quantity"`
	AvgQuantity             float64   `gorm:"not null;column:avg_quantity"`
	LastPurchaseDate        time.Time `gorm:"not null;column:last_purchase_date"`
	DaysSinceLastPurchase   int       `gorm:"not null;column:days_since_last_purchase"`
	AvgDaysBetweenPurchases float64   `gorm:"not null;default:0;column:avg_days_between_purchases"`
	RegularityScore         float64   `gorm:"not null;column:regularity_score"`
	IsRegularProduct        bool      `gorm:"not null;default:false;column:is_regular_product"`
}

// ProactiveMessageType identifies the kind of outbound proactive message
type ProactiveMessageType string

const (
	ProactiveMessageReorderReminder ProactiveMessageType = "reorder_reminder"
)

// ProactiveMessage is an append-only record of a sent proactive message.
// Cooldown checks read these rows.
type ProactiveMessage struct {
	BaseModel
	TenantID            uuid.UUID            `gorm:"type:uuid;not null;index;column:tenant_id"`
	CustomerID          uuid.UUID            `gorm:"type:uuid;not null;index;column:customer_id"`
	MessageType         ProactiveMessageType `gorm:"type:varchar(50);not null;index;column:message_type"`
	Body                string               `gorm:"type:text;not null"`
	ExternalMessageID   string               `gorm:"type:varchar(200);column:external_message_id"`
	SentAt              time.Time            `gorm:"not null;index;column:sent_at"`
	DaysSinceLastOrder  int                  `gorm:"column:days_since_last_order"`
	ExpectedReorderDate *time.Time           `gorm:"column:expected_reorder_date"`
}

// AlertType identifies the kind of manager alert
type AlertType string

const (
	AlertTypeOverdueHighValue AlertType = "overdue_high_value"
	AlertTypeUnusualOrder     AlertType = "unusual_order"
)

// AlertPriority is the urgency of a manager alert
type AlertPriority string

const (
	AlertPriorityLow    AlertPriority = "low"
	AlertPriorityMedium AlertPriority = "medium"
	AlertPriorityHigh   AlertPriority = "high"
)

// ManagerAlert is an append-only audit record of an escalation to a tenant manager
type ManagerAlert struct {
	BaseModel
	TenantID      uuid.UUID     `gorm:"type:uuid;not null;index;column:tenant_id"`
	AlertType     AlertType     `gorm:"type:varchar(50);not null;index;column:alert_type"`
	Priority      AlertPriority `gorm:"type:varchar(20);not null"`
	CustomerID    *uuid.UUID    `gorm:"type:uuid;index;column:customer_id"`
	CustomerName  string        `gorm:"type:varchar(200);column:customer_name"`
	CustomerPhone string        `gorm:"type:varchar(50);column:customer_phone"`
	Title         string        `gorm:"type:varchar(200);not null"`
	Message       string        `gorm:"type:text;not null"`
	Details       string        `gorm:"type:text"`
	ActionTaken   string        `gorm:"type:varchar(500);column:action_taken"`
	Dispatched    bool          `gorm:"not null;default:false"`
	DispatchError string        `gorm:"type:varchar(500);column:dispatch_error"`
}

// RunStatus is the state of a nightly intelligence run for a tenant
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// IntelligenceRun records one tenant's part of a nightly pass
type IntelligenceRun struct {
	BaseModel
	TenantID           uuid.UUID  `gorm:"type:uuid;not null;index;column:tenant_id"`
	Status             RunStatus  `gorm:"type:varchar(20);not null;index"`
	StartedAt          time.Time  `gorm:"not null;column:started_at"`
	FinishedAt         *time.Time `gorm:"column:finished_at"`
	CustomersProcessed int        `gorm:"not null;default:0;column:customers_processed"`
	MessagesSent       int        `gorm:"not null;default:0;column:messages_sent"`
	AlertsRaised       int        `gorm:"not null;default:0;column:alerts_raised"`
	Errors             int        `gorm:"not null;default:0"`
	DurationMs         int64      `gorm:"not null;default:0;column:duration_ms"`
	ErrorMessage       string     `gorm:"type:text;column:error_message"`
}

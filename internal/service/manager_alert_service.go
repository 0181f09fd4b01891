package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"github.com/straye-as/sales-assistant-api/internal/mapper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// highChurnRisk is the churn-risk score above which overdue alerts are high priority
const highChurnRisk = 0.7

// Reasons reported in AlertResult when nothing was dispatched
const (
	AlertReasonNoManagerContact    = "no_manager_contact"
	AlertReasonManagerLookupFailed = "manager_lookup_failed"
	AlertReasonDispatchFailed      = "dispatch_failed"
)

// ManagerAlertService formats, dispatches and audits escalation alerts to tenant managers
type ManagerAlertService struct {
	tenants TenantStore
	alerts  ManagerAlertStore
	sender  MessageSender
	clock   intelligence.Clock
	logger  *zap.Logger
}

func NewManagerAlertService(
	tenants TenantStore,
	alerts ManagerAlertStore,
	sender MessageSender,
	clock intelligence.Clock,
	logger *zap.Logger,
) *ManagerAlertService {
	if clock == nil {
		clock = time.Now
	}
	return &ManagerAlertService{
		tenants: tenants,
		alerts:  alerts,
		sender:  sender,
		clock:   clock,
		logger:  logger,
	}
}

// SendAlert dispatches an alert to the tenant's manager and records it.
// A tenant without a manager contact yields a no-op result, not an error.
// The audit record is written even when the contact lookup or dispatch fails.
func (s *ManagerAlertService) SendAlert(ctx context.Context, tenantID uuid.UUID, data domain.AlertData) (*domain.AlertResult, error) {
	log := s.logger.With(
		zap.String("tenant_id", tenantID.String()),
		zap.String("alert_type", string(data.Type)),
	)

	result := &domain.AlertResult{}
	var dispatchErr error

	managerName, managerPhone, err := s.tenants.GetManagerContact(ctx, tenantID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Debug("Tenant not found, alert skipped")
		return &domain.AlertResult{Reason: AlertReasonNoManagerContact}, nil
	case err != nil:
		log.Warn("Failed to resolve manager contact", zap.String("operation", "get_manager_contact"), zap.Error(err))
		result.Reason = AlertReasonManagerLookupFailed
		dispatchErr = fmt.Errorf("manager lookup failed: %w", err)
	case strings.TrimSpace(managerPhone) == "":
		log.Debug("Tenant has no manager contact, alert skipped")
		return &domain.AlertResult{Reason: AlertReasonNoManagerContact}, nil
	default:
		messageID, sendErr := s.sender.Send(ctx, managerPhone, FormatAlert(managerName, data))
		if sendErr != nil {
			log.Warn("Failed to dispatch manager alert", zap.String("operation", "send_alert"), zap.Error(sendErr))
			result.Reason = AlertReasonDispatchFailed
			dispatchErr = sendErr
		} else {
			result.Sent = true
			result.MessageID = messageID
		}
	}

	record := &domain.ManagerAlert{
		BaseModel:     domain.BaseModel{CreatedAt: s.clock().UTC()},
		TenantID:      tenantID,
		AlertType:     data.Type,
		Priority:      data.Priority,
		CustomerID:    data.CustomerID,
		CustomerName:  data.CustomerName,
		CustomerPhone: data.CustomerPhone,
		Title:         data.Title,
		Message:       data.Message,
		Details:       mapper.EncodeDetails(data.Details),
		ActionTaken:   data.RecommendedAction,
		Dispatched:    result.Sent,
	}
	if dispatchErr != nil {
		record.DispatchError = truncate(dispatchErr.Error(), 500)
	}

	if err := s.alerts.Create(ctx, record); err != nil {
		log.Error("Failed to record manager alert", zap.String("operation", "create_alert"), zap.Error(err))
		return result, fmt.Errorf("failed to record manager alert: %w", err)
	}

	result.AlertID = &record.ID
	log.Info("Manager alert recorded",
		zap.String("alert_id", record.ID.String()),
		zap.String("priority", string(data.Priority)),
		zap.Bool("dispatched", result.Sent),
	)
	return result, nil
}

// AlertOverdueHighValue escalates an overdue high-value customer
func (s *ManagerAlertService) AlertOverdueHighValue(ctx context.Context, tenantID uuid.UUID, c domain.OverdueCustomerDTO) (*domain.AlertResult, error) {
	priority := domain.AlertPriorityMedium
	if c.ChurnRiskScore > highChurnRisk {
		priority = domain.AlertPriorityHigh
	}

	customerID := c.CustomerID
	return s.SendAlert(ctx, tenantID, domain.AlertData{
		Type:          domain.AlertTypeOverdueHighValue,
		Priority:      priority,
		CustomerID:    &customerID,
		CustomerName:  c.CustomerName,
		CustomerPhone: c.CustomerPhone,
		Title:         fmt.Sprintf("%s customer overdue", tierLabel(c.Tier)),
		Message: fmt.Sprintf("%s usually orders every %.0f days and is now %d days overdue (last order %s). Churn risk %.0f%%.",
			c.CustomerName, c.AvgDaysBetweenOrders, c.DaysOverdue, c.LastOrderDate.Format("2 Jan"), c.ChurnRiskScore*100),
		RecommendedAction: fmt.Sprintf("Call %s personally to check in", c.CustomerName),
		Details: map[string]interface{}{
			"daysOverdue":          c.DaysOverdue,
			"avgDaysBetweenOrders": c.AvgDaysBetweenOrders,
			"churnRiskScore":       c.ChurnRiskScore,
			"tier":                 string(c.Tier),
			"priorityScore":        c.PriorityScore,
			"severity":             string(c.Severity),
			"trend":                c.Trend.Trend,
			"lifetimeValue":        c.LifetimeValue,
		},
	})
}

// AlertUnusualOrder tells the manager about an order that deviates from the customer's habits
func (s *ManagerAlertService) AlertUnusualOrder(ctx context.Context, tenantID uuid.UUID, customer *domain.CustomerProfile, report *domain.OrderAnomalyReportDTO) (*domain.AlertResult, error) {
	missing := make([]string, 0, len(report.MissingProducts))
	for _, m := range report.MissingProducts {
		missing = append(missing, m.ProductName)
	}
	low := make([]string, 0, len(report.QuantityAnomalies))
	for _, q := range report.QuantityAnomalies {
		low = append(low, fmt.Sprintf("%s (-%d%%)", q.ProductName, q.ReductionPercent))
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+intelligence.JoinProductNames(missing))
	}
	if len(low) > 0 {
		parts = append(parts, "lower quantities of "+intelligence.JoinProductNames(low))
	}

	customerID := customer.ID
	return s.SendAlert(ctx, tenantID, domain.AlertData{
		Type:              domain.AlertTypeUnusualOrder,
		Priority:          domain.AlertPriorityMedium,
		CustomerID:        &customerID,
		CustomerName:      customer.DisplayName(),
		CustomerPhone:     customer.Phone,
		Title:             "Unusual order",
		Message:           fmt.Sprintf("%s placed an order with %s.", customer.DisplayName(), strings.Join(parts, " and ")),
		RecommendedAction: "Confirm the order with the customer before dispatch",
		Details: map[string]interface{}{
			"missingProducts":   missing,
			"quantityAnomalies": low,
		},
	})
}

// WasAlertedSince reports whether an alert of the given type was recorded for the
// customer at or after since
func (s *ManagerAlertService) WasAlertedSince(ctx context.Context, tenantID, customerID uuid.UUID, alertType domain.AlertType, since time.Time) (bool, error) {
	return s.alerts.ExistsSince(ctx, tenantID, customerID, alertType, since)
}

// ListAlerts returns a page of the tenant's alert audit log
func (s *ManagerAlertService) ListAlerts(ctx context.Context, tenantID uuid.UUID, alertType domain.AlertType, page, pageSize int) ([]domain.ManagerAlertDTO, int64, error) {
	alerts, total, err := s.alerts.ListByTenant(ctx, tenantID, alertType, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}
	return mapper.ToManagerAlertDTOs(alerts), total, nil
}

// FormatAlert renders the manager-facing text of an alert
func FormatAlert(managerName string, data domain.AlertData) string {
	var b strings.Builder
	if managerName != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", managerName)
	}
	fmt.Fprintf(&b, "[%s] %s\n\n%s", strings.ToUpper(string(data.Priority)), data.Title, data.Message)
	if data.CustomerName != "" || data.CustomerPhone != "" {
		fmt.Fprintf(&b, "\n\nCustomer: %s", strings.TrimSpace(data.CustomerName+" "+data.CustomerPhone))
	}
	if data.RecommendedAction != "" {
		fmt.Fprintf(&b, "\nRecommended action: %s", data.RecommendedAction)
	}
	return b.String()
}

func tierLabel(t domain.CustomerTier) string {
	switch t {
	case domain.CustomerTierVIP:
		return "VIP"
	case domain.CustomerTierHighValue:
		return "High-value"
	case domain.CustomerTierEstablished:
		return "Established"
	default:
		return "New"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

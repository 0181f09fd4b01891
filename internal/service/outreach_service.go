package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"github.com/straye-as/sales-assistant-api/internal/logger"
	"github.com/straye-as/sales-assistant-api/internal/mapper"
	"github.com/straye-as/sales-assistant-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PatternRefresher rebuilds a customer's derived pattern
type PatternRefresher interface {
	RefreshCustomer(ctx context.Context, customer *domain.CustomerProfile) (*domain.PurchasePattern, error)
}

// RegularProductLister returns a customer's most bought regular products
type RegularProductLister interface {
	TopRegularProducts(ctx context.Context, tenantID, customerID uuid.UUID, limit int) []string
}

// OverdueDetector ranks a tenant's overdue customers
type OverdueDetector interface {
	DetectOverdueCustomers(ctx context.Context, tenantID uuid.UUID) ([]domain.OverdueCustomerDTO, error)
}

// OverdueAlerter escalates overdue customers to the tenant manager
type OverdueAlerter interface {
	AlertOverdueHighValue(ctx context.Context, tenantID uuid.UUID, c domain.OverdueCustomerDTO) (*domain.AlertResult, error)
	WasAlertedSince(ctx context.Context, tenantID, customerID uuid.UUID, alertType domain.AlertType, since time.Time) (bool, error)
}

// OutreachConfig holds the anti-spam rules of the nightly pass
type OutreachConfig struct {
	Cooldown                   time.Duration
	RecentActivity             time.Duration
	MinConfidence              float64
	DueWindowMinDays           int
	DueWindowMaxDays           int
	MessageDelay               time.Duration
	MaxMessagesPerTenantPerDay int
	AlertCooldown              time.Duration
}

// DefaultOutreachConfig returns the standard outreach rules
func DefaultOutreachConfig() OutreachConfig {
	return OutreachConfig{
		Cooldown:         7 * 24 * time.Hour,
		RecentActivity:   24 * time.Hour,
		MinConfidence:    0.5,
		DueWindowMinDays: -2,
		DueWindowMaxDays: 5,
		AlertCooldown:    7 * 24 * time.Hour,
	}
}

// OutreachDeps are the collaborators of the outreach scheduler
type OutreachDeps struct {
	Tenants       TenantStore
	Customers     CustomerStore
	Conversations ConversationStore
	Messages      ProactiveMessageStore
	Runs          RunStore
	Patterns      PatternRefresher
	Products      RegularProductLister
	Detector      OverdueDetector
	Alerter       OverdueAlerter
	Sender        MessageSender

	// Selector picks reminder templates; nil picks at random
	Selector intelligence.Selector
	// Clock defaults to time.Now
	Clock intelligence.Clock
}

// Decision outcomes for one customer
const (
	DecisionSent           = "sent"
	DecisionCooldown       = "cooldown"
	DecisionRecentActivity = "recent_activity"
	DecisionNoPattern      = "no_pattern"
	DecisionLowConfidence  = "low_confidence"
	DecisionNotDue         = "not_due"
	DecisionQuota          = "skipped_quota"
)

// PassSummary aggregates one nightly pass over all tenants
type PassSummary struct {
	Tenants            int
	FailedTenants      int
	CustomersProcessed int
	MessagesSent       int
	AlertsRaised       int
	Errors             int
	Duration           time.Duration
}

// TenantRunResult is the outcome of one tenant's part of a pass
type TenantRunResult struct {
	TenantID uuid.UUID
	RunID    uuid.UUID
	Status   domain.RunStatus
	Counts   repository.RunCounts
	Err      error
}

// OutreachService runs the nightly intelligence pass: it refreshes every customer's
// pattern, sends reorder reminders to customers who are due and escalates overdue
// high-value customers to the tenant manager. Tenants and customers are processed
// sequentially.
type OutreachService struct {
	deps    OutreachDeps
	cfg     OutreachConfig
	limiter *rate.Limiter
	quota   *intelligence.SendQuota
	clock   intelligence.Clock
	running atomic.Bool
	logger  *zap.Logger
}

func NewOutreachService(deps OutreachDeps, cfg OutreachConfig, log *zap.Logger) *OutreachService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	limit := rate.Inf
	if cfg.MessageDelay > 0 {
		limit = rate.Every(cfg.MessageDelay)
	}

	return &OutreachService{
		deps:    deps,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		quota:   intelligence.NewSendQuota(cfg.MaxMessagesPerTenantPerDay, clock),
		clock:   clock,
		logger:  log,
	}
}

// Quota exposes the per-tenant daily send quota
func (s *OutreachService) Quota() *intelligence.SendQuota {
	return s.quota
}

// IsRunning reports whether a pass is in progress
func (s *OutreachService) IsRunning() bool {
	return s.running.Load()
}

// ListRuns returns a tenant's run records, newest first
func (s *OutreachService) ListRuns(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]domain.IntelligenceRunDTO, int64, error) {
	page, pageSize = repository.NormalizePagination(page, pageSize)
	runs, total, err := s.deps.Runs.ListByTenant(ctx, tenantID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	return mapper.ToIntelligenceRunDTOs(runs), total, nil
}

// RunNightlyIntelligencePass processes every active tenant once. A failing tenant
// is recorded as failed and does not stop the others. ErrRunInProgress is returned
// when a pass is already running in this process.
func (s *OutreachService) RunNightlyIntelligencePass(ctx context.Context) (*PassSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	start := s.clock()
	tenants, err := s.deps.Tenants.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tenants: %w", err)
	}

	s.logger.Info("Starting nightly intelligence pass", zap.Int("tenants", len(tenants)))

	summary := &PassSummary{}
	for i := range tenants {
		if ctx.Err() != nil {
			break
		}

		result := s.RunTenant(ctx, &tenants[i])
		summary.Tenants++
		if result.Status == domain.RunStatusFailed {
			summary.FailedTenants++
		}
		summary.CustomersProcessed += result.Counts.CustomersProcessed
		summary.MessagesSent += result.Counts.MessagesSent
		summary.AlertsRaised += result.Counts.AlertsRaised
		summary.Errors += result.Counts.Errors
	}
	summary.Duration = s.clock().Sub(start)

	s.logger.Info("Nightly intelligence pass finished",
		zap.Int("tenants", summary.Tenants),
		zap.Int("failed_tenants", summary.FailedTenants),
		zap.Int("customers_processed", summary.CustomersProcessed),
		zap.Int("messages_sent", summary.MessagesSent),
		zap.Int("alerts_raised", summary.AlertsRaised),
		zap.Int("errors", summary.Errors),
		zap.Duration("duration", summary.Duration),
	)
	return summary, ctx.Err()
}

// RunTenant processes one tenant and records the run state
func (s *OutreachService) RunTenant(ctx context.Context, tenant *domain.Tenant) *TenantRunResult {
	log := logger.WithTenant(s.logger, tenant.ID)
	start := s.clock()
	result := &TenantRunResult{TenantID: tenant.ID, Status: domain.RunStatusRunning}

	run, err := s.deps.Runs.Start(ctx, tenant.ID, start.UTC())
	if err != nil {
		log.Warn("Failed to record run start", zap.String("operation", "start_run"), zap.Error(err))
	} else {
		result.RunID = run.ID
	}

	fail := func(cause error) *TenantRunResult {
		result.Status = domain.RunStatusFailed
		result.Err = cause
		log.Error("Tenant intelligence run failed", zap.Error(cause))
		s.finishRun(ctx, log, result, start)
		return result
	}

	customers, err := s.deps.Customers.ListByTenant(ctx, tenant.ID)
	if err != nil {
		return fail(fmt.Errorf("failed to list customers: %w", err))
	}

	for i := range customers {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		customer := &customers[i]
		decision, err := s.processCustomer(ctx, customer)
		result.Counts.CustomersProcessed++
		if err != nil {
			result.Counts.Errors++
			logger.WithCustomer(log, customer.ID, customer.Phone).Warn("Customer outreach failed", zap.Error(err))
			continue
		}
		if decision == DecisionSent {
			result.Counts.MessagesSent++
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	alerts, alertErrors := s.escalate(ctx, log, tenant.ID)
	result.Counts.AlertsRaised += alerts
	result.Counts.Errors += alertErrors

	result.Status = domain.RunStatusCompleted
	s.finishRun(ctx, log, result, start)
	return result
}

func (s *OutreachService) finishRun(ctx context.Context, log *zap.Logger, result *TenantRunResult, start time.Time) {
	finished := s.clock()
	duration := finished.Sub(start)

	log.Info("Tenant intelligence run finished",
		zap.String("status", string(result.Status)),
		zap.Int("customers_processed", result.Counts.CustomersProcessed),
		zap.Int("messages_sent", result.Counts.MessagesSent),
		zap.Int("alerts_raised", result.Counts.AlertsRaised),
		zap.Int("errors", result.Counts.Errors),
		zap.Duration("duration", duration),
	)

	if result.RunID == uuid.Nil {
		return
	}

	// the run record is written even when the pass itself was cancelled
	writeCtx := context.WithoutCancel(ctx)
	var err error
	if result.Status == domain.RunStatusFailed {
		err = s.deps.Runs.Fail(writeCtx, result.RunID, result.Counts, finished.UTC(), duration, errorMessage(result.Err))
	} else {
		err = s.deps.Runs.Complete(writeCtx, result.RunID, result.Counts, finished.UTC(), duration)
	}
	if err != nil {
		log.Warn("Failed to record run result", zap.String("operation", "finish_run"), zap.Error(err))
	}
}

// processCustomer refreshes the customer's pattern and sends a reminder when every
// outreach rule allows it. The cooldown check, the send and the record write happen
// in that order for a customer. A panic in a collaborator is returned as an error
// so the rest of the batch still runs.
func (s *OutreachService) processCustomer(ctx context.Context, customer *domain.CustomerProfile) (decision string, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision, err = "", fmt.Errorf("panic: %v", r)
		}
	}()

	pattern, err := s.deps.Patterns.RefreshCustomer(ctx, customer)
	if err != nil {
		return "", err
	}

	now := s.clock().UTC()
	decision, err = s.decide(ctx, customer, pattern, now)
	if err != nil || decision != "" {
		return decision, err
	}

	if !s.quota.Allow(customer.TenantID) {
		return DecisionQuota, nil
	}

	products := s.deps.Products.TopRegularProducts(ctx, customer.TenantID, customer.ID, intelligence.MaxReminderProducts)
	body := intelligence.ComposeReminder(customer.Name, products, s.deps.Selector)

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	messageID, err := s.deps.Sender.Send(ctx, customer.Phone, body)
	if err != nil {
		return "", fmt.Errorf("failed to send reminder: %w", err)
	}
	s.quota.Record(customer.TenantID)

	expected := pattern.ExpectedNextOrderDate
	record := &domain.ProactiveMessage{
		TenantID:            customer.TenantID,
		CustomerID:          customer.ID,
		MessageType:         domain.ProactiveMessageReorderReminder,
		Body:                body,
		ExternalMessageID:   messageID,
		SentAt:              now,
		DaysSinceLastOrder:  intelligence.WholeDaysBetween(pattern.LastOrderDate, now),
		ExpectedReorderDate: &expected,
	}
	if err := s.deps.Messages.Create(ctx, record); err != nil {
		return "", fmt.Errorf("reminder sent but not recorded: %w", err)
	}

	logger.WithCustomer(s.logger, customer.ID, customer.Phone).Info("Reorder reminder sent",
		zap.String("tenant_id", customer.TenantID.String()),
		zap.String("message_id", messageID),
		zap.Int("products", len(products)),
	)
	return DecisionSent, nil
}

// decide applies the outreach rules in order and returns the first reason not to
// send, or "" when a reminder is allowed
func (s *OutreachService) decide(ctx context.Context, customer *domain.CustomerProfile, pattern *domain.PurchasePattern, now time.Time) (string, error) {
	recent, err := s.deps.Messages.ExistsSince(ctx, customer.ID, domain.ProactiveMessageReorderReminder, now.Add(-s.cfg.Cooldown))
	if err != nil {
		return "", fmt.Errorf("failed to check reminder cooldown: %w", err)
	}
	if recent {
		return DecisionCooldown, nil
	}

	active, err := s.deps.Conversations.HasInboundSince(ctx, customer.TenantID, customer.Phone, now.Add(-s.cfg.RecentActivity))
	if err != nil {
		return "", fmt.Errorf("failed to check recent activity: %w", err)
	}
	if active {
		return DecisionRecentActivity, nil
	}

	if pattern == nil {
		return DecisionNoPattern, nil
	}
	if pattern.ConfidenceScore < s.cfg.MinConfidence {
		return DecisionLowConfidence, nil
	}

	days := intelligence.DaysUntilExpected(pattern, now)
	if days < s.cfg.DueWindowMinDays || days > s.cfg.DueWindowMaxDays {
		return DecisionNotDue, nil
	}
	return "", nil
}

// escalate alerts the manager about critical or high severity overdue customers in
// the top tiers. It returns the number of alerts recorded and the number of failures.
func (s *OutreachService) escalate(ctx context.Context, log *zap.Logger, tenantID uuid.UUID) (int, int) {
	if s.deps.Detector == nil || s.deps.Alerter == nil {
		return 0, 0
	}

	overdue, err := s.deps.Detector.DetectOverdueCustomers(ctx, tenantID)
	if err != nil {
		log.Warn("Overdue detection failed", zap.String("operation", "detect_overdue"), zap.Error(err))
		return 0, 1
	}

	since := s.clock().UTC().Add(-s.cfg.AlertCooldown)
	raised, failures := 0, 0
	for _, c := range overdue {
		if !shouldEscalate(c) {
			continue
		}

		alerted, err := s.deps.Alerter.WasAlertedSince(ctx, tenantID, c.CustomerID, domain.AlertTypeOverdueHighValue, since)
		if err != nil {
			failures++
			log.Warn("Failed to check alert cooldown", zap.String("customer_id", c.CustomerID.String()), zap.Error(err))
			continue
		}
		if alerted {
			continue
		}

		res, err := s.deps.Alerter.AlertOverdueHighValue(ctx, tenantID, c)
		if err != nil {
			failures++
			log.Warn("Failed to raise overdue alert", zap.String("customer_id", c.CustomerID.String()), zap.Error(err))
			continue
		}
		if res != nil && res.AlertID != nil {
			raised++
		}
	}
	return raised, failures
}

func shouldEscalate(c domain.OverdueCustomerDTO) bool {
	severe := c.Severity == domain.SeverityCritical || c.Severity == domain.SeverityHigh
	valuable := c.Tier == domain.CustomerTierVIP || c.Tier == domain.CustomerTierHighValue
	return severe && valuable
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

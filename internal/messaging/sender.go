// Package messaging delivers outbound text messages to customers and managers.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/logger"
	"go.uber.org/zap"
)

// Provider names
const (
	ProviderWhatsApp = "whatsapp"
	ProviderLog      = "log"
)

var (
	// ErrEmptyRecipient is returned when no destination is given
	ErrEmptyRecipient = errors.New("recipient is required")
	// ErrEmptyMessage is returned when the body is blank
	ErrEmptyMessage = errors.New("message text is required")
	// ErrUnknownProvider is returned by the registry for unregistered names
	ErrUnknownProvider = errors.New("unknown messaging provider")
)

// Sender delivers a text message and returns the provider message id
type Sender interface {
	Send(ctx context.Context, to, text string) (string, error)
}

func validate(to, text string) error {
	if to == "" {
		return ErrEmptyRecipient
	}
	if text == "" {
		return ErrEmptyMessage
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
// Used in development and when no provider is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{logger: log}
}

func (s *LogSender) Send(_ context.Context, to, text string) (string, error) {
	if err := validate(to, text); err != nil {
		return "", err
	}
	id := "log-" + uuid.NewString()
	s.logger.Info("outbound message",
		zap.String("to", logger.MaskPhone(to)),
		zap.String("message_id", id),
		zap.String("text", text),
	)
	return id, nil
}

// Registry maps provider names to senders. Providers are registered at startup
// and resolved once from configuration.
type Registry struct {
	mu      sync.RWMutex
	senders map[string]Sender
}

func NewRegistry() *Registry {
	return &Registry{senders: make(map[string]Sender)}
}

// Register binds name to sender, replacing any earlier binding
func (r *Registry) Register(name string, sender Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[name] = sender
}

// Get returns the sender registered under name
func (r *Registry) Get(name string) (Sender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sender, ok := r.senders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return sender, nil
}

// Names returns the registered provider names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.senders))
	for name := range r.senders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Notification [Notifier] implementation
//
// Fire-and-forget email sends through an EmailJS-style relay. Failures are
// reported to the caller for a transient alert only; nothing is retried and
// nothing feeds back into submission state.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/teimsafety/ppectl/internal/shared"
	"golang.org/x/time/rate"
)

// NotifyKind selects which notification template to send.
type NotifyKind string

const (
	NotifyPPE     NotifyKind = "ppe"
	NotifyMachine NotifyKind = "machine"
)

// notifyMessages are the fixed template payloads per kind.
var notifyMessages = map[NotifyKind]string{
	NotifyPPE:     "PPE has been checked for the selected image.",
	NotifyMachine: "Warning: Some machines have not passed the quality check. Immediate action required!",
}

const sendPath = "/api/v1.0/email/send"

type notifyRoute struct {
	serviceID  string
	templateID string
}

// NotifyService implements [Notifier] against the email relay.
type NotifyService struct {
	baseURL    string
	publicKey  string
	routes     map[NotifyKind]notifyRoute
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *log.Logger
}

// NewNotifyService creates a new notification client. The rate limit keeps
// repeated button presses from flooding the relay.
func NewNotifyService(cfg shared.NotificationConfig, client *http.Client, logger *log.Logger) *NotifyService {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 0.2
	}

	return &NotifyService{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		publicKey: cfg.PublicKey,
		routes: map[NotifyKind]notifyRoute{
			NotifyPPE:     {serviceID: cfg.PPEServiceID, templateID: cfg.PPETemplateID},
			NotifyMachine: {serviceID: cfg.MachineServiceID, templateID: cfg.MachineTemplateID},
		},
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
		httpClient: client,
		logger:     logger,
	}
}

// Send dispatches the fixed message for kind. It never blocks on the rate
// limiter; a throttled send fails immediately.
func (n *NotifyService) Send(ctx context.Context, kind NotifyKind) error {
	route, ok := n.routes[kind]
	message, known := notifyMessages[kind]
	if !ok || !known {
		return fmt.Errorf("%w: unknown notification kind %q", shared.ErrInvalidArgument, kind)
	}

	if !n.limiter.Allow() {
		return fmt.Errorf("notification throttled, try again shortly")
	}

	payload := map[string]any{
		"service_id":  route.serviceID,
		"template_id": route.templateID,
		"user_id":     n.publicKey,
		"template_params": map[string]string{
			"title": message,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	n.logger.Info("notification sent", "kind", string(kind))
	return nil
}

package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds one webhook delivery.
const DefaultTimeout = 15 * time.Second

// Default per-organization delivery rate.
const (
	DefaultRate  = rate.Limit(5)
	DefaultBurst = 10
)

// Source supplies the automations matching a trigger. The engine's
// coordinator collections implement it over their in-memory state.
type Source interface {
	ActiveRules(trigger string) []*Rule
	ActiveWebhooks(trigger string) []*Webhook
}

// Monitor receives delivery lifecycle notifications. The engine adapts
// the extension registry onto it.
type Monitor interface {
	RuleMatched(ctx context.Context, trigger, ruleID string)
	WebhookDelivered(ctx context.Context, trigger, url string, status int, elapsed time.Duration)
	WebhookFailed(ctx context.Context, trigger, url string, err error)
}

// nopMonitor is used when no Monitor is configured.
type nopMonitor struct{}

func (nopMonitor) RuleMatched(context.Context, string, string)                          {}
func (nopMonitor) WebhookDelivered(context.Context, string, string, int, time.Duration) {}
func (nopMonitor) WebhookFailed(context.Context, string, string, error)                 {}

// payloadEnvelope is the JSON body delivered to webhooks.
type payloadEnvelope struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Dispatcher fans trigger events out to matching automations.
type Dispatcher struct {
	source  Source
	client  *http.Client
	timeout time.Duration
	monitor Monitor
	logger  *slog.Logger

	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	wg sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient sets the HTTP client used for webhook deliveries.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithTimeout bounds each webhook delivery.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

// WithMonitor sets the delivery lifecycle monitor.
func WithMonitor(m Monitor) Option {
	return func(d *Dispatcher) { d.monitor = m }
}

// WithRateLimit sets the per-organization delivery rate. A zero limit
// disables limiting.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(d *Dispatcher) {
		d.limit = limit
		d.burst = burst
	}
}

// NewDispatcher creates a Dispatcher reading automations from source.
func NewDispatcher(source Source, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		source:   source,
		client:   http.DefaultClient,
		timeout:  DefaultTimeout,
		monitor:  nopMonitor{},
		logger:   logger,
		limit:    DefaultRate,
		burst:    DefaultBurst,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch fans a trigger event out to matching automations and returns
// the number of rules that matched. Webhook deliveries run in the
// background, detached from the caller's context cancellation; errors
// are logged and reported to the monitor, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, trigger string, payload any) int {
	matched := 0
	for _, r := range d.source.ActiveRules(trigger) {
		matched++
		d.logger.Info("workflow rule matched",
			slog.String("trigger", trigger),
			slog.String("rule_id", r.RecordID()),
			slog.String("rule", r.Name),
		)
		d.monitor.RuleMatched(ctx, trigger, r.RecordID())
	}

	hooks := d.source.ActiveWebhooks(trigger)
	if len(hooks) == 0 {
		return matched
	}

	body, err := json.Marshal(payloadEnvelope{
		Event:     trigger,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	})
	if err != nil {
		d.logger.Warn("webhook payload encode failed",
			slog.String("trigger", trigger),
			slog.String("error", err.Error()),
		)
		return matched
	}

	bg := context.WithoutCancel(ctx)
	for _, wh := range hooks {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(bg, trigger, wh, body)
		}()
	}
	return matched
}

// Flush blocks until all in-flight webhook deliveries finish.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}

// deliver sends one webhook call, isolated from its siblings.
func (d *Dispatcher) deliver(ctx context.Context, trigger string, wh *Webhook, body []byte) {
	if lim := d.limiterFor(wh.Organization()); lim != nil && !lim.Allow() {
		err := fmt.Errorf("delivery rate exceeded for organization %q", wh.Organization())
		d.logger.Warn("webhook delivery skipped",
			slog.String("trigger", trigger),
			slog.String("url", wh.URL),
			slog.String("error", err.Error()),
		)
		d.monitor.WebhookFailed(ctx, trigger, wh.URL, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	method := wh.Method
	if method == "" {
		method = http.MethodPost
	}

	// The JSON payload rides only on POST; other methods signal by URL.
	var reqBody *bytes.Reader
	if method == http.MethodPost {
		reqBody = bytes.NewReader(body)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, wh.URL, reqBody)
	if err != nil {
		d.failed(ctx, trigger, wh.URL, err)
		return
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range wh.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		d.failed(ctx, trigger, wh.URL, err)
		return
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	if resp.StatusCode >= 400 {
		d.failed(ctx, trigger, wh.URL, fmt.Errorf("endpoint returned %s", resp.Status))
		return
	}

	d.logger.Debug("webhook delivered",
		slog.String("trigger", trigger),
		slog.String("url", wh.URL),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", elapsed),
	)
	d.monitor.WebhookDelivered(ctx, trigger, wh.URL, resp.StatusCode, elapsed)
}

func (d *Dispatcher) failed(ctx context.Context, trigger, url string, err error) {
	d.logger.Warn("webhook delivery failed",
		slog.String("trigger", trigger),
		slog.String("url", url),
		slog.String("error", err.Error()),
	)
	d.monitor.WebhookFailed(ctx, trigger, url, err)
}

// limiterFor returns the delivery limiter for an organization, nil when
// limiting is disabled.
func (d *Dispatcher) limiterFor(orgID string) *rate.Limiter {
	if d.limit == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	lim, ok := d.limiters[orgID]
	if !ok {
		lim = rate.NewLimiter(d.limit, d.burst)
		d.limiters[orgID] = lim
	}
	return lim
}

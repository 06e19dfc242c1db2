package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ModelLimit describes one model in an ordered fallback chain together with
// its request budget. A zero RPM or RPD means the dimension is unlimited.
type ModelLimit struct {
	Name string
	RPM  int // requests per minute
	RPD  int // requests per day
}

// ParseModelLimits parses an ordered fallback chain from its config form
// "model:rpm:rpd,model2:rpm:rpd". Omitted or malformed budgets are treated
// as unlimited; entries without a model name are dropped.
func ParseModelLimits(spec string) []ModelLimit {
	limits := make([]ModelLimit, 0)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		limit := ModelLimit{Name: strings.TrimSpace(parts[0])}
		if limit.Name == "" {
			continue
		}
		if len(parts) > 1 {
			limit.RPM, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
		}
		if len(parts) > 2 {
			limit.RPD, _ = strconv.Atoi(strings.TrimSpace(parts[2]))
		}
		limits = append(limits, limit)
	}
	return limits
}

// RateTracker keeps sliding windows of request timestamps per model and
// answers whether a model still has budget in both its minute and day window.
type RateTracker struct {
	mu     sync.Mutex
	minute map[string][]time.Time
	day    map[string][]time.Time
	now    func() time.Time
}

// NewRateTracker creates an empty tracker.
func NewRateTracker() *RateTracker {
	return &RateTracker{
		minute: make(map[string][]time.Time),
		day:    make(map[string][]time.Time),
		now:    time.Now,
	}
}

func pruneWindow(stamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(stamps) && !stamps[idx].After(cutoff) {
		idx++
	}
	return stamps[idx:]
}

// Allow reports whether model has remaining budget in both windows.
// It does not record a request; call Record once the request is actually sent.
func (t *RateTracker) Allow(limit ModelLimit) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.minute[limit.Name] = pruneWindow(t.minute[limit.Name], now.Add(-time.Minute))
	t.day[limit.Name] = pruneWindow(t.day[limit.Name], now.Add(-24*time.Hour))

	if limit.RPM > 0 && len(t.minute[limit.Name]) >= limit.RPM {
		return false
	}
	if limit.RPD > 0 && len(t.day[limit.Name]) >= limit.RPD {
		return false
	}
	return true
}

// Record notes that a request was sent to model now.
func (t *RateTracker) Record(model string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.minute[model] = append(t.minute[model], now)
	t.day[model] = append(t.day[model], now)
}

// NextAvailable returns how long until model regains budget. Zero means the
// model is available now.
func (t *RateTracker) NextAvailable(limit ModelLimit) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.minute[limit.Name] = pruneWindow(t.minute[limit.Name], now.Add(-time.Minute))
	t.day[limit.Name] = pruneWindow(t.day[limit.Name], now.Add(-24*time.Hour))

	var wait time.Duration
	if limit.RPM > 0 && len(t.minute[limit.Name]) >= limit.RPM {
		oldest := t.minute[limit.Name][len(t.minute[limit.Name])-limit.RPM]
		if d := oldest.Add(time.Minute).Sub(now); d > wait {
			wait = d
		}
	}
	if limit.RPD > 0 && len(t.day[limit.Name]) >= limit.RPD {
		oldest := t.day[limit.Name][len(t.day[limit.Name])-limit.RPD]
		if d := oldest.Add(24 * time.Hour).Sub(now); d > wait {
			wait = d
		}
	}
	return wait
}

// ErrRateLimited signals that every model in a fallback chain is out of
// budget and the shortest wait exceeded the caller's patience.
type ErrRateLimited struct {
	Wait time.Duration
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("all models rate limited, next available in %s", e.Wait)
}

// FallbackClient wraps a WikiAIClient with an ordered model chain and a
// shared rate tracker. Each generation call goes to the first model with
// remaining budget; when every model is exhausted the call waits for the
// shortest window to free up, or fails if MaxWait is exceeded.
type FallbackClient struct {
	client  WikiAIClient
	models  []ModelLimit
	tracker *RateTracker
	reqLock *semaphore.Weighted
	maxWait time.Duration
}

// NewFallbackClientParams contains configuration for creating a FallbackClient.
type NewFallbackClientParams struct {
	Client                WikiAIClient
	Models                []ModelLimit
	MaxConcurrentRequests int64
	MaxWait               time.Duration
}

// NewFallbackClient creates a rate-limited fallback wrapper around client.
func NewFallbackClient(params NewFallbackClientParams) *FallbackClient {
	concurrency := params.MaxConcurrentRequests
	if concurrency <= 0 {
		concurrency = 1
	}
	return &FallbackClient{
		client:  params.Client,
		models:  params.Models,
		tracker: NewRateTracker(),
		reqLock: semaphore.NewWeighted(concurrency),
		maxWait: params.MaxWait,
	}
}

// pick returns the first model with budget, or waits for the shortest window
// when every model is exhausted.
func (c *FallbackClient) pick(ctx context.Context) (string, error) {
	for {
		var shortest time.Duration
		for i, m := range c.models {
			if c.tracker.Allow(m) {
				c.tracker.Record(m.Name)
				return m.Name, nil
			}
			wait := c.tracker.NextAvailable(m)
			if i == 0 || wait < shortest {
				shortest = wait
			}
		}

		if c.maxWait > 0 && shortest > c.maxWait {
			return "", &ErrRateLimited{Wait: shortest}
		}

		timer := time.NewTimer(shortest)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *FallbackClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...GenerateOption,
) (string, error) {
	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	model, err := c.pick(ctx)
	if err != nil {
		return "", err
	}
	return c.client.GenerateCompletion(ctx, prompt, append(opts, WithModel(model))...)
}

func (c *FallbackClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...GenerateOption,
) error {
	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.reqLock.Release(1)

	model, err := c.pick(ctx)
	if err != nil {
		return err
	}
	return c.client.GenerateCompletionWithFormat(
		ctx, name, description, prompt, out, append(opts, WithModel(model))...,
	)
}

func (c *FallbackClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return c.client.GenerateEmbedding(ctx, input)
}

func (c *FallbackClient) ResetMetrics() {
	c.client.ResetMetrics()
}

func (c *FallbackClient) GetMetrics() ModelMetrics {
	return c.client.GetMetrics()
}

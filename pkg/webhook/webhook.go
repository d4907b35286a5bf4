package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const userAgent = "funnel-webhook/1.0"

// Sender delivers JSON payloads with retries and optional circuit breaking.
type Sender struct {
	client *http.Client
}

// NewSender creates a sender with a pooled HTTP client.
func NewSender() *Sender {
	return &Sender{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewSenderWithClient creates a sender on client. Nil means NewSender.
func NewSenderWithClient(client *http.Client) *Sender {
	if client == nil {
		return NewSender()
	}
	return &Sender{client: client}
}

// StatusError is a non-2xx answer from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
	// RetryAfter is the server-requested delay, zero when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// Permanent reports 4xx codes that will not change on retry.
func (e *StatusError) Permanent() bool {
	if e.StatusCode < 400 || e.StatusCode >= 500 {
		return false
	}
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return true
}

// Send marshals data to JSON and POSTs it to webhookURL.
//
// Network errors, 5xx, 408, 425 and 429 are retried. The wait before a retry
// is the backoff interval or the endpoint's Retry-After, whichever is longer,
// capped by WithMaxRetryAfter. Other 4xx answers fail at once with
// ErrPermanentFailure. An open circuit fails with ErrCircuitOpen without a request.
func (s *Sender) Send(ctx context.Context, webhookURL string, data any, opts ...SendOption) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := validateInputs(webhookURL, payload); err != nil {
		return err
	}

	o := defaultSendOptions()
	for _, opt := range opts {
		opt(o)
	}

	var (
		lastErr error
		wait    time.Duration
	)
	for attempt := 1; attempt <= o.maxRetries+1; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		deliver := func() (DeliveryResult, error) {
			return s.deliver(ctx, webhookURL, payload, o)
		}
		var res DeliveryResult
		if o.circuitBreaker != nil {
			res, err = o.circuitBreaker.execute(deliver)
		} else {
			res, err = deliver()
		}

		if o.onDelivery != nil {
			res.Attempt = attempt
			if res.Error == nil {
				res.Error = err
			}
			o.onDelivery(res)
		}

		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanentFailure) || errors.Is(err, ErrCircuitOpen) {
			return err
		}
		lastErr = err
		wait = o.retryDelay(attempt, err)
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrWebhookDeliveryFailed, o.maxRetries+1, lastErr)
}

func (o *sendOptions) retryDelay(attempt int, err error) time.Duration {
	wait := o.backoffStrategy.NextInterval(attempt)
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > wait {
		wait = se.RetryAfter
	}
	return min(wait, o.maxRetryAfter)
}

func validateInputs(webhookURL string, payload []byte) error {
	if webhookURL == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(webhookURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	if len(payload) == 0 || string(payload) == "null" {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}
	return nil
}

// deliver makes one request. Errors come back classified as
// ErrPermanentFailure, ErrTimeout or ErrTemporaryFailure.
func (s *Sender) deliver(ctx context.Context, webhookURL string, payload []byte, o *sendOptions) (DeliveryResult, error) {
	start := time.Now()
	var res DeliveryResult

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		res.Error = err
		return res, fmt.Errorf("%w: %w", ErrPermanentFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return res, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return res, fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		res.Success = true
		return res, nil
	}

	se := &StatusError{
		StatusCode: resp.StatusCode,
		Body:       readSnippet(resp.Body),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
	res.Error = se
	if se.Permanent() {
		return res, fmt.Errorf("%w: %w", ErrPermanentFailure, se)
	}
	return res, fmt.Errorf("%w: %w", ErrTemporaryFailure, se)
}

// readSnippet returns the first 200 bytes of an error body on one line.
func readSnippet(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(t.Sub(now), 0)
	}
	return 0
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/talentwire/docpipe/internal/config"
	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/logger"
)

// WebhookDeliverer posts completion and failure payloads to the caller's
// endpoint with bounded retry. Delivery failures are never escalated back
// into the job's own status; the job is already terminal by then.
type WebhookDeliverer struct {
	client      *resty.Client
	maxAttempts int
	backoffBase time.Duration
}

// NewWebhookDeliverer creates a deliverer from the webhook section of the
// configuration. Each attempt gets its own timeout; retries are handled
// here, not by the HTTP client.
func NewWebhookDeliverer(cfg *config.WebhookConfig) *WebhookDeliverer {
	client := resty.New().
		SetTimeout(cfg.AttemptTimeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "docpipe-webhook/1.0")

	return &WebhookDeliverer{
		client:      client,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
	}
}

// Deliver posts the payload to url. Response handling:
//   - 2xx stops with success.
//   - 4xx stops immediately; a client error is not assumed transient.
//   - 5xx, network errors and timeouts are retried with exponential
//     backoff, sleeping backoffBase * 2^attempt between attempts.
//
// The returned result always carries the total attempt count.
func (d *WebhookDeliverer) Deliver(ctx context.Context, url string, payload *domain.WebhookPayload) domain.DeliveryResult {
	result := domain.DeliveryResult{}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		result.Attempts = attempt

		resp, err := d.client.R().
			SetContext(ctx).
			SetBody(payload).
			Post(url)

		switch {
		case err != nil:
			result.Error = fmt.Sprintf("webhook request failed: %v", err)
		case resp.StatusCode() >= 200 && resp.StatusCode() < 300:
			result.Success = true
			result.StatusCode = resp.StatusCode()
			return result
		case resp.StatusCode() >= 400 && resp.StatusCode() < 500:
			result.StatusCode = resp.StatusCode()
			result.Error = fmt.Sprintf("webhook rejected with status %d", resp.StatusCode())
			logger.With(logger.Fields{
				logger.FieldWebhookURL: url,
				logger.FieldStatus:     resp.StatusCode(),
			}).WithAttempts(attempt).Warn(ctx, "Webhook delivery failed permanently")
			return result
		default:
			result.StatusCode = resp.StatusCode()
			result.Error = fmt.Sprintf("webhook returned status %d", resp.StatusCode())
		}

		if attempt == d.maxAttempts {
			break
		}

		delay := d.backoffBase << attempt
		logger.With(logger.Fields{
			logger.FieldWebhookURL: url,
		}).WithAttempts(attempt).Warn(ctx, "Webhook delivery failed, retrying in %s: %s", delay, result.Error)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			result.Error = fmt.Sprintf("webhook delivery aborted: %v", ctx.Err())
			return result
		}
	}

	logger.With(logger.Fields{
		logger.FieldWebhookURL: url,
	}).WithAttempts(result.Attempts).Error(ctx, "Webhook delivery exhausted all attempts: %s", result.Error)
	return result
}

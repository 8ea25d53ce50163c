package transport

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// minRefreshDelay keeps a nearly-expired session from hammering the service
// in a tight loop.
const minRefreshDelay = time.Second

// scheduleRefreshLocked arms the background refresh timer for the given
// session. Caller holds c.mu.
func (c *Client) scheduleRefreshLocked(session *RawSession) {
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	if !c.cfg.AutoRefresh || c.closed {
		return
	}
	if session.ExpiresAt == 0 || session.RefreshToken == "" {
		return
	}

	delay := time.Until(time.Unix(session.ExpiresAt, 0)) - c.cfg.RefreshMargin
	if delay < minRefreshDelay {
		delay = minRefreshDelay
	}
	c.refreshTimer = time.AfterFunc(delay, c.backgroundRefresh)
}

// backgroundRefresh runs off the refresh timer. A successful refresh re-arms
// the timer through RefreshSession; a rejected refresh token clears custody
// and emits EventSignedOut there as well. Transient network failures retry
// on a short fixed delay.
func (c *Client) backgroundRefresh() {
	c.mu.Lock()
	if c.closed || c.session == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HTTPTimeout)
	defer cancel()

	if _, err := c.RefreshSession(ctx); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.logger.Warn("background session refresh rejected",
				slog.String("error_code", apiErr.Code),
				slog.Int("status", apiErr.Status),
				slog.String("component", "transport"),
			)
			return
		}

		c.logger.Warn("background session refresh failed, retrying",
			slog.Any("error", err),
			slog.String("component", "transport"),
		)
		c.mu.Lock()
		if !c.closed && c.session != nil {
			if c.refreshTimer != nil {
				c.refreshTimer.Stop()
			}
			c.refreshTimer = time.AfterFunc(10*time.Second, c.backgroundRefresh)
		}
		c.mu.Unlock()
	}
}

package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"spikeradar/internal/model"
)

// FetchAlerts lists alerts, newest first, optionally filtered.
func (c *Client) FetchAlerts(ctx context.Context, userID int64, q model.AlertQuery) (model.AlertFeed, error) {
	query := url.Values{}
	if q.Urgency != "" {
		query.Set("urgency", string(q.Urgency))
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var feed model.AlertFeed
	if err := c.do(ctx, "fetch_alerts", http.MethodGet, userPath(userID, "/alerts"), query, nil, &feed); err != nil {
		return model.AlertFeed{}, err
	}
	return feed, nil
}

// FetchAlert loads one alert. The backend marks a pending alert as opened on read.
func (c *Client) FetchAlert(ctx context.Context, userID int64, id model.AlertID) (model.Alert, error) {
	var alert model.Alert
	path := userPath(userID, "/alerts/"+url.PathEscape(string(id)))
	if err := c.do(ctx, "fetch_alert", http.MethodGet, path, nil, nil, &alert); err != nil {
		return model.Alert{}, err
	}
	return alert, nil
}

// ActOnAlert marks an alert acted on.
func (c *Client) ActOnAlert(ctx context.Context, userID int64, id model.AlertID) error {
	path := userPath(userID, "/alerts/"+url.PathEscape(string(id))+"/act")
	return c.do(ctx, "act_alert", http.MethodPost, path, nil, nil, nil)
}

// DismissAlert marks an alert dismissed.
func (c *Client) DismissAlert(ctx context.Context, userID int64, id model.AlertID) error {
	path := userPath(userID, "/alerts/"+url.PathEscape(string(id))+"/dismiss")
	return c.do(ctx, "dismiss_alert", http.MethodPost, path, nil, nil, nil)
}

// FetchVelocityFeed loads the tracked creators' posts ranked by multiplier.
func (c *Client) FetchVelocityFeed(ctx context.Context, userID int64) (model.VelocityFeed, error) {
	var feed model.VelocityFeed
	if err := c.do(ctx, "fetch_feed", http.MethodGet, userPath(userID, "/velocity-feed"), nil, nil, &feed); err != nil {
		return model.VelocityFeed{}, err
	}
	return feed, nil
}

// TriggerScan runs a velocity scan for the user.
func (c *Client) TriggerScan(ctx context.Context, userID int64) (model.ScanResult, error) {
	var result model.ScanResult
	if err := c.do(ctx, "trigger_scan", http.MethodPost, userPath(userID, "/scan"), nil, nil, &result); err != nil {
		return model.ScanResult{}, err
	}
	return result, nil
}

func userPath(userID int64, suffix string) string {
	return fmt.Sprintf("/users/%d%s", userID, suffix)
}

var _ Backend = (*Client)(nil)

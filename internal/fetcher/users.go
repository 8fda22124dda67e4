package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"spikeradar/internal/model"
)

// CreateUser registers a viewer.
func (c *Client) CreateUser(ctx context.Context, user model.UserCreate) (model.User, error) {
	var out model.User
	if err := c.do(ctx, "create_user", http.MethodPost, "/users/", nil, user, &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}

// GetUser loads a viewer.
func (c *Client) GetUser(ctx context.Context, userID int64) (model.User, error) {
	var out model.User
	if err := c.do(ctx, "get_user", http.MethodGet, userPath(userID, ""), nil, nil, &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}

// UpdatePillars replaces the viewer's content pillars.
func (c *Client) UpdatePillars(ctx context.Context, userID int64, pillars model.ContentPillars) (model.User, error) {
	var out model.User
	if err := c.do(ctx, "update_pillars", http.MethodPatch, userPath(userID, "/pillars"), nil, pillars, &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}

// UpdatePushToken sets the device token used for push notifications.
func (c *Client) UpdatePushToken(ctx context.Context, userID int64, token string) error {
	body := map[string]string{"push_token": token}
	return c.do(ctx, "update_push_token", http.MethodPatch, userPath(userID, "/push-token"), nil, body, nil)
}

// TrackCreator starts watching a competitor handle.
func (c *Client) TrackCreator(ctx context.Context, userID int64, handle string) (model.TrackedCreator, error) {
	var out model.TrackedCreator
	body := map[string]string{"instagram_handle": handle}
	if err := c.do(ctx, "track_creator", http.MethodPost, userPath(userID, "/creators/"), nil, body, &out); err != nil {
		return model.TrackedCreator{}, err
	}
	return out, nil
}

// ListCreators lists watched competitors.
func (c *Client) ListCreators(ctx context.Context, userID int64) ([]model.TrackedCreator, error) {
	var out []model.TrackedCreator
	if err := c.do(ctx, "list_creators", http.MethodGet, userPath(userID, "/creators/"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UntrackCreator stops watching a competitor.
func (c *Client) UntrackCreator(ctx context.Context, userID int64, creatorID int64) error {
	path := userPath(userID, fmt.Sprintf("/creators/%d", creatorID))
	return c.do(ctx, "untrack_creator", http.MethodDelete, path, nil, nil, nil)
}

var _ Accounts = (*Client)(nil)

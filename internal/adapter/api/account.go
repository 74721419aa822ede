package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rl1809/storefront/internal/adapter/wire"
	"github.com/rl1809/storefront/internal/core/domain"
)

func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.Profile, error) {
	var resp wire.User
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/users/register",
		body: wire.RegisterRequest{
			Name:        reg.Name,
			Email:       reg.Email,
			Password:    reg.Password,
			Address:     reg.Address,
			PhoneNumber: reg.PhoneNumber,
		},
		anonymous: true,
	}, &resp)
	if err != nil {
		return domain.Profile{}, err
	}
	return resp.ToProfile(), nil
}

func (c *Client) Me(ctx context.Context) (domain.Profile, error) {
	var resp wire.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/me"}, &resp); err != nil {
		return domain.Profile{}, err
	}
	return resp.ToProfile(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.Profile, error) {
	var resp wire.User
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/users/" + url.PathEscape(userID),
		body: wire.ProfileUpdate{
			Name:        update.Name,
			Email:       update.Email,
			Address:     update.Address,
			PhoneNumber: update.PhoneNumber,
		},
	}, &resp)
	if err != nil {
		return domain.Profile{}, err
	}
	return resp.ToProfile(), nil
}

func (c *Client) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/users/" + url.PathEscape(userID) + "/change-password",
		body:   wire.PasswordChange{CurrentPassword: oldPassword, NewPassword: newPassword},
	}, nil)
}

package backend

import (
	"context"
	"net/http"

	"github.com/mrirakib04/sks-web/internal/domain"
)

// IssueToken asks the backend to set the session cookie for email.
func (c *Client) IssueToken(ctx context.Context, email string) error {
	return c.send(ctx, http.MethodPost, "/jwt", map[string]string{"email": email}, nil)
}

// RevokeToken asks the backend to clear the session cookie.
func (c *Client) RevokeToken(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *Client) User(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/user/"+escape(email), &u); err != nil {
		return domain.User{}, err
	}
	if u.Email == "" {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (c *Client) CreateUser(ctx context.Context, u domain.User) error {
	return c.send(ctx, http.MethodPost, "/users", u, nil)
}

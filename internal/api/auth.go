package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/ayurchat/internal/errors"
	"github.com/diogo/ayurchat/internal/models"
)

// Login posts the user's email and name to the login endpoint.
// The backend answers with a session cookie; the body is informational.
func (c *Client) Login(ctx context.Context, email, name string) (*models.LoginResponse, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.paths.Login, models.LoginRequest{Email: email, Name: name}, "login")
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		return nil, apierrors.NewAuthError(status, c.paths.Login, errorMessage(body, "login rejected"))
	}

	resp := &models.LoginResponse{Success: true, Email: email, Name: name}
	if gjson.ValidBytes(body) {
		if v := gjson.GetBytes(body, PathSuccess); v.Exists() {
			resp.Success = v.Bool()
		}
		resp.Message = gjson.GetBytes(body, PathMessage).String()
		if v := gjson.GetBytes(body, PathEmail); v.String() != "" {
			resp.Email = v.String()
		}
		if v := gjson.GetBytes(body, PathName); v.String() != "" {
			resp.Name = v.String()
		}
	}

	return resp, nil
}

// Logout posts to the logout endpoint. Callers may ignore the result.
func (c *Client) Logout(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodPost, c.paths.Logout, nil, "logout")
	if err != nil {
		return err
	}

	if !isSuccess(status) {
		return apierrors.NewAPIError(status, c.paths.Logout, errorMessage(body, "logout failed")).
			WithBody(string(body))
	}

	return nil
}

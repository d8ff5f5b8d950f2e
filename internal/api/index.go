package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/ayurchat/internal/errors"
)

// Index fetches the backend's banner message. It is a cheap reachability check
// and also collects any cookies the backend hands out.
func (c *Client) Index(ctx context.Context) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.paths.Index, nil, "index")
	if err != nil {
		return "", err
	}

	if !isSuccess(status) {
		return "", apierrors.NewAPIError(status, c.paths.Index, errorMessage(body, "index request failed")).
			WithBody(string(body))
	}

	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", "")
	}

	return gjson.GetBytes(body, PathMessage).String(), nil
}

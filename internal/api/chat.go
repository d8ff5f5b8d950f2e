package api

import (
	"context"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/ayurchat/internal/errors"
	"github.com/diogo/ayurchat/internal/models"
)

// Ask posts a question to the chat endpoint and returns the backend's answer.
// Any non-2xx status is an APIError; a 2xx body without an answer is a ParseError.
func (c *Client) Ask(ctx context.Context, question string) (*models.ChatResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apierrors.ErrEmptyQuestion
	}

	status, body, err := c.do(ctx, http.MethodPost, c.paths.Chat, models.ChatRequest{Question: question}, "ask")
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		return nil, apierrors.NewAPIError(status, c.paths.Chat, errorMessage(body, "chat request failed")).
			WithBody(string(body))
	}

	return parseChatResponse(body)
}

// parseChatResponse extracts the answer from a chat success body
func parseChatResponse(body []byte) (*models.ChatResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	answer := gjson.GetBytes(body, PathAnswer)
	if !answer.Exists() || answer.Type == gjson.Null {
		return nil, apierrors.NewParseError("missing answer field", PathAnswer)
	}

	return &models.ChatResponse{
		Question: gjson.GetBytes(body, PathQuestion).String(),
		Answer:   answer.String(),
	}, nil
}

// errorMessage pulls a human-readable message out of an error body
func errorMessage(body []byte, fallback string) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}
	for _, path := range []string{PathError, PathDetail, PathMessage} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return fallback
}

package places

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

const maxErrorBody = 64 << 10

// failureBody covers the two shapes the service uses for rejected requests:
// its REST style {"error": {...}} and a GraphQL {"errors": [...]} list.
type failureBody struct {
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// statusTransport turns non-2xx responses that carry a readable failure payload
// into a *ServiceError. Other responses pass through untouched.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	res, err := base.RoundTrip(req)
	if err != nil || (res.StatusCode >= 200 && res.StatusCode < 300) {
		return res, err
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	res.Body.Close()
	if err != nil {
		return nil, err
	}

	if msg := failureMessage(data); msg != "" {
		return nil, &ServiceError{Message: msg, Status: res.StatusCode}
	}

	res.Body = io.NopCloser(bytes.NewReader(data))
	return res, nil
}

func failureMessage(data []byte) string {
	var body failureBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != nil {
		if body.Error.Description != "" {
			return body.Error.Description
		}
		return body.Error.Code
	}
	if len(body.Errors) > 0 {
		return body.Errors[0].Message
	}
	return ""
}

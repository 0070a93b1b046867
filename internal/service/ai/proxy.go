package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ProxyRequest forwards one call to an arbitrary path under the base URL. There is no fallback.
func (c *Client) ProxyRequest(ctx context.Context, method, path string, data json.RawMessage, params map[string]any) (json.RawMessage, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: path must start with \"/\"", ErrInvalidRequest)
	}

	target := c.url(path)
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, fmt.Sprint(v))
		}
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	var body []byte
	if len(data) > 0 && string(data) != "null" {
		body = data
	}

	status, resp, err := c.do(ctx, method, target, body)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: err}
	}
	if !isSuccess(status) {
		return nil, &UpstreamError{Path: path, Status: status, Body: normalizeBody(resp)}
	}
	return normalizeBody(resp), nil
}

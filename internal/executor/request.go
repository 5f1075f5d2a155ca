package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"api-test-engine/internal/types"
)

// buildRequest materializes the HTTP request for a test case: path
// placeholder substitution, query string, merged headers, bearer token,
// JSON body.
func (e *Executor) buildRequest(ctx context.Context, tc types.TestCase) (*http.Request, types.RequestInfo, error) {
	path := tc.Endpoint.Path
	for name, value := range tc.Input.PathParams {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(fmt.Sprint(value)))
	}

	fullURL := strings.TrimSuffix(e.cfg.BaseURL, "/") + path

	if len(tc.Input.QueryParams) > 0 {
		query := url.Values{}
		for key, value := range tc.Input.QueryParams {
			query.Set(key, fmt.Sprint(value))
		}
		fullURL = fullURL + "?" + query.Encode()
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for key, value := range e.cfg.Headers {
		headers[key] = value
	}
	for key, value := range tc.Input.Headers {
		headers[key] = value
	}
	if e.cfg.Token != "" {
		headers["Authorization"] = "Bearer " + e.cfg.Token
	}

	var body io.Reader
	bodyText := ""
	if tc.Input.Body != nil {
		data, err := json.Marshal(tc.Input.Body)
		if err != nil {
			return nil, types.RequestInfo{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyText = string(data)
		body = bytes.NewReader(data)
	}

	info := types.RequestInfo{
		Method:  string(tc.Endpoint.Method),
		URL:     fullURL,
		Headers: headers,
		Body:    bodyText,
	}

	req, err := http.NewRequestWithContext(ctx, string(tc.Endpoint.Method), fullURL, body)
	if err != nil {
		return nil, info, fmt.Errorf("failed to create request: %w", err)
	}
	for _, key := range sortedKeys(headers) {
		req.Header.Set(key, headers[key])
	}
	return req, info, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

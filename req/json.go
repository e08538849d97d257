package req

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
)

// NewJSONRequest creates a request whose body is v encoded as JSON
func NewJSONRequest(ctx context.Context, method, url string, v interface{}) (*http.Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body as JSON: %s", err.Error())
	}

	r, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s", err.Error())
	}
	r.Header.Set("Content-Type", "application/json")

	return r, nil
}

// CheckOK returns an error describing resp if its status is not 2xx. The body is
// read for the error message but never closed.
func CheckOK(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("got non-OK response but failed to read response body, "+
			"status: %s, body read error: %s", resp.Status, err.Error())
	}

	return fmt.Errorf("got non-OK response, status: %s, body: %s",
		resp.Status, string(respBody))
}

package core

import (
	"context"
	"net/http"
)

const DefaultUserAgent = "leocov-dev/mrbulk"

// UserAgent is sent with every registry and download request
var UserAgent = DefaultUserAgent

func GetWithUA(ctx context.Context, client *http.Client, url string, contentType string) (resp *http.Response, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	if contentType != "" {
		req.Header.Set("Accept", contentType)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

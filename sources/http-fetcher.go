package sources

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/leocov-dev/mrbulk/core"
)

// HTTPFetcher downloads artifacts with a plain GET of their URL
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, artifact core.FileArtifact) (io.ReadCloser, int64, error) {
	resp, err := core.GetWithUA(ctx, f.client, artifact.URL, "")
	if err != nil {
		return nil, 0, &core.TransportError{Op: "download", URL: artifact.URL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, 0, &core.TransportError{Op: "download", URL: artifact.URL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp.Body, resp.ContentLength, nil
}

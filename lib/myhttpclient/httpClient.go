package myhttpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/mylog"
)

const (
	timeout          = 5 * time.Second
	breakerOpenDelay = 30 * time.Second
)

type jsonHTTPClient struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logger     mylog.Logger
}

func newJSONHTTPClient(logger mylog.Logger) HTTPSender {
	return &jsonHTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// Only transport failures trip the breaker; every request is sent at most once.
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:    "outbound-http",
			Timeout: breakerOpenDelay,
		}),
		logger: logger,
	}
}

func (c jsonHTTPClient) Send(ctx context.Context, method string, url string, body []byte) (int, []byte, error) {
	sessionUID := mycontext.SessionUIDFromContext(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error creating http request for %s %s: %s", method, url, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Log(ctx, sessionUID, mylog.SeverityDebug, "HTTP request: %s %s", method, url)

	httpResp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(httpReq)
	})
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error sending %s %s: %w", method, url, err)
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error reading response %s %s: %w", method, url, err)
	}

	c.logger.Log(ctx, sessionUID, mylog.SeverityDebug, "HTTP response: %s %s -> %d", method, url, httpResp.StatusCode)

	return httpResp.StatusCode, respPayload, nil
}

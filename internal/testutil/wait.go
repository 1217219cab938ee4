package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"
)

// ContextWithTimeout возвращает context, который отменяется по таймауту или
// по завершении теста.
func ContextWithTimeout(tb testing.TB, d time.Duration) context.Context {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	tb.Cleanup(cancel)
	return ctx
}

// WaitForHTTP polls url until it answers 200 OK or timeout elapses.
func WaitForHTTP(tb testing.TB, url string, timeout time.Duration) {
	tb.Helper()
	ctx := ContextWithTimeout(tb, timeout)
	client := &http.Client{Timeout: 100 * time.Millisecond}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			tb.Fatalf("building request for %s: %v", url, err)
		}
		if resp, err := client.Do(req); err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		select {
		case <-ctx.Done():
			tb.Fatalf("%s not ready within %v", url, timeout)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

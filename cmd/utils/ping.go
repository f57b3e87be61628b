package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PingURL probes the server root to decide whether the backend is reachable.
// Localhost answers fast or not at all; remote servers get a longer window.
func PingURL(base string) error {
	connectTimeout := 1 * time.Second
	clientTimeout := 2 * time.Second
	if !IsLocalhost(base) {
		connectTimeout = 3 * time.Second
		clientTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return err
	}
	resp, err := (&http.Client{Timeout: clientTimeout}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 500 {
		return nil
	}
	return fmt.Errorf("status %d", resp.StatusCode)
}

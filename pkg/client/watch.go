package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	reconnectMin = 1 * time.Second
	reconnectMax = 30 * time.Second
)

// Watch subscribes to the live record feed. Each delivery is the full record
// set visible to the session, sent on connect and after every directory
// mutation. The connection is re-established with exponential backoff until
// ctx is cancelled; a rejected session is re-established before reconnecting.
// Errors on the second channel are informational, the loop keeps going.
func (c *Client) Watch(ctx context.Context) (<-chan []Document, <-chan error) {
	snapshots := make(chan []Document, 8)
	errs := make(chan error, 1)

	go c.watchLoop(ctx, snapshots, errs)

	return snapshots, errs
}

func (c *Client) watchLoop(ctx context.Context, snapshots chan<- []Document, errs chan<- error) {
	defer close(snapshots)
	defer close(errs)

	delay := reconnectMin

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.ensureSession(ctx); err != nil {
			reportErr(errs, err)
		} else if err := c.streamOnce(ctx, snapshots); err != nil {
			if ctx.Err() != nil {
				return
			}
			reportErr(errs, err)
		} else {
			// Clean stream end, reconnect immediately.
			delay = reconnectMin
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > reconnectMax {
			delay = reconnectMax
		}
	}
}

// streamOnce holds one SSE connection open and forwards snapshot events.
func (c *Client) streamOnce(ctx context.Context, snapshots chan<- []Document) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents/watch", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.applyAuth(req)

	// No client timeout: the stream stays open indefinitely.
	hc := &http.Client{Transport: c.httpClient.Transport}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("watch connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The session is gone; mint a fresh one so the next attempt sticks.
		if _, err := c.SignInAnonymously(ctx); err != nil {
			return fmt.Errorf("session recovery: %w", err)
		}
		return fmt.Errorf("watch rejected: session re-established")
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var eventType, data string
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if eventType == "snapshot" && data != "" {
				var docs []Document
				if err := json.Unmarshal([]byte(data), &docs); err == nil {
					select {
					case snapshots <- docs:
					case <-ctx.Done():
						return nil
					}
				}
			}
			eventType, data = "", ""
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "event:") {
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		} else if strings.HasPrefix(line, "data:") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("watch read: %w", err)
	}
	return nil
}

func reportErr(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
	}
}

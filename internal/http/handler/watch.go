package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"docshare/internal/feed"
	"docshare/internal/http/middleware"
	"docshare/internal/service"
)

const (
	snapshotTimeout   = 5 * time.Second
	heartbeatInterval = 25 * time.Second
)

// WatchDocuments streams the caller's visible record set over SSE. A full
// snapshot is sent on connect and again after every directory mutation, so a
// client never needs to reconcile individual deltas.
//
// @Summary Watch visible documents
// @Tags documents
// @Produce text/event-stream
// @Security BearerAuth
// @Router /documents/watch [get]
func WatchDocuments(svc service.DocumentService, b *feed.Broadcaster) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := middleware.IdentityFromCtx(c)
		if identity == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "identity required")
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			events := b.Subscribe()
			defer b.Unsubscribe(events)

			if err := writeSnapshot(w, svc, identity); err != nil {
				return
			}

			heartbeat := time.NewTicker(heartbeatInterval)
			defer heartbeat.Stop()

			for {
				select {
				case _, ok := <-events:
					if !ok {
						return
					}
					// Snapshots are rebuilt per delivery, so the event
					// payload itself is never forwarded.
					if err := writeSnapshot(w, svc, identity); err != nil {
						return
					}
				case <-heartbeat.C:
					// A failed heartbeat write is how we learn the client
					// went away.
					if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		}))

		return nil
	}
}

func writeSnapshot(w *bufio.Writer, svc service.DocumentService, identity string) error {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	docs, err := svc.List(ctx, identity)
	if err != nil {
		return err
	}

	data, err := json.Marshal(docs)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

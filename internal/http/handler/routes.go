package handler

import (
	"github.com/gofiber/fiber/v2"

	"docshare/internal/auth"
	"docshare/internal/feed"
	"docshare/internal/http/middleware"
	"docshare/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers are
// transport-only; authorization guards live in the service layer.
func RegisterRoutes(app *fiber.App, dep Pinger, authSvc *auth.Service, docSvc service.DocumentService, b *feed.Broadcaster) {
	app.Get("/health", HealthCheck(dep))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/anonymous", AnonymousSignIn(authSvc))
	app.Post("/auth/token", TokenSignIn(authSvc))

	authed := middleware.Authenticate(authSvc)

	app.Get("/auth/session", authed, GetSession())

	app.Post("/documents", authed, UploadDocument(docSvc))
	app.Get("/documents", authed, ListDocuments(docSvc))
	// Registered before /documents/:id so "watch" is not taken for an id.
	app.Get("/documents/watch", authed, WatchDocuments(docSvc, b))
	app.Get("/documents/:id", authed, GetDocument(docSvc))
	app.Delete("/documents/:id", authed, DeleteDocument(docSvc))
	app.Post("/documents/:id/share", authed, ShareDocument(docSvc))
	app.Delete("/documents/:id/share/:granteeId", authed, RevokeAccess(docSvc))
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/exportdesk/exportdesk/internal/api/handler"
	mw "github.com/exportdesk/exportdesk/internal/api/middleware"
	"github.com/exportdesk/exportdesk/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Log       zerolog.Logger
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	Health    http.HandlerFunc
	Login     http.HandlerFunc
	Tenants   *handler.TenantHandler
	Users     *handler.UserHandler
	Companies *handler.CompanyHandler
	Contacts  *handler.ContactHandler
	Deals     *handler.DealHandler
	Orders    *handler.OrderHandler
	Shipments *handler.ShipmentHandler
	Documents *handler.DocumentHandler
	Audit     *handler.AuditHandler
}

// NewRouter builds the chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.Logger(deps.Log))
	r.Use(mw.Recovery(deps.Log))
	r.Use(mw.Metrics)

	r.Get("/healthz", deps.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public: onboarding and login happen before any token exists.
	r.Post("/api/v1/tenants", deps.Tenants.Onboard)
	r.Post("/api/v1/auth/login", deps.Login)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/tenant", deps.Tenants.GetCurrent)

		r.Get("/companies", deps.Companies.List)
		r.Post("/companies", deps.Companies.Create)
		r.Get("/companies/{companyID}", deps.Companies.Get)
		r.Put("/companies/{companyID}", deps.Companies.Update)
		r.Delete("/companies/{companyID}", deps.Companies.Deactivate)
		r.Get("/companies/{companyID}/addresses", deps.Companies.ListAddresses)
		r.Post("/companies/{companyID}/addresses", deps.Companies.AddAddress)
		r.Put("/addresses/{addressID}", deps.Companies.UpdateAddress)
		r.Delete("/addresses/{addressID}", deps.Companies.DeactivateAddress)

		r.Get("/contacts", deps.Contacts.List)
		r.Post("/contacts", deps.Contacts.Create)
		r.Get("/contacts/{contactID}", deps.Contacts.Get)
		r.Put("/contacts/{contactID}", deps.Contacts.Update)
		r.Delete("/contacts/{contactID}", deps.Contacts.Deactivate)

		r.Get("/deals", deps.Deals.List)
		r.Post("/deals", deps.Deals.Create)
		r.Get("/deals/{dealID}", deps.Deals.Get)
		r.Put("/deals/{dealID}", deps.Deals.Update)
		r.Delete("/deals/{dealID}", deps.Deals.Deactivate)
		r.Get("/deals/{dealID}/activities", deps.Deals.ListActivities)
		r.Post("/deals/{dealID}/activities", deps.Deals.AddActivity)

		r.Get("/orders", deps.Orders.List)
		r.Post("/orders", deps.Orders.Create)
		r.Get("/orders/{orderID}", deps.Orders.Get)
		r.Put("/orders/{orderID}", deps.Orders.Update)
		r.Delete("/orders/{orderID}", deps.Orders.Deactivate)

		r.Get("/shipments", deps.Shipments.List)
		r.Post("/shipments", deps.Shipments.Create)
		r.Get("/shipments/{shipmentID}", deps.Shipments.Get)
		r.Put("/shipments/{shipmentID}/track", deps.Shipments.UpdateTracking)
		r.Delete("/shipments/{shipmentID}", deps.Shipments.Deactivate)

		r.Get("/documents", deps.Documents.List)
		r.Post("/documents", deps.Documents.Create)
		r.Get("/documents/{documentID}", deps.Documents.Get)
		r.Put("/documents/{documentID}", deps.Documents.Update)
		r.Delete("/documents/{documentID}", deps.Documents.Deactivate)

		r.Get("/audit", deps.Audit.List)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireRole(models.RoleAdmin))

			r.Put("/tenant", deps.Tenants.Update)
			r.Delete("/tenant", deps.Tenants.Deactivate)

			r.Get("/users", deps.Users.List)
			r.Post("/users", deps.Users.Create)
			r.Get("/users/{userID}", deps.Users.Get)
			r.Put("/users/{userID}", deps.Users.Update)
			r.Delete("/users/{userID}", deps.Users.Deactivate)
		})
	})

	return r
}

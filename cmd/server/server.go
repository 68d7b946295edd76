package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/shiftprint/internal/config"
	"github.com/Simplici0/shiftprint/internal/notify"
	"github.com/Simplici0/shiftprint/internal/storage"
	"github.com/Simplici0/shiftprint/internal/store"
)

const (
	shopName          = "Shiftprint"
	maxAdminOrders    = 100
	maxCustomerOrders = 50
	// maxChoiceMaterials is how many materials are loaded to offer the operator.
	maxChoiceMaterials = 10
	uploadsURLPrefix   = "/uploads"
)

type server struct {
	cfg   config.Config
	auth  *authService
	store *store.Store
	files storage.Store
	// notifier and operator are nil when Telegram is not configured.
	notifier *notify.Notifier
	operator *notify.Operator
	now      func() time.Time
}

func newServer(cfg config.Config, st *store.Store, files storage.Store) *server {
	return &server{
		cfg:   cfg,
		auth:  newAuthService(cfg.AdminEmails, cfg.AdminPassword, cfg.SessionSecret),
		store: st,
		files: files,
		now:   time.Now,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if s.cfg.StorageBackend == config.StorageLocal {
		r.Handle(uploadsURLPrefix+"/*", http.StripPrefix(uploadsURLPrefix+"/", http.FileServer(http.Dir(s.cfg.UploadDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/materials", s.handleMaterialsList)
		r.Get("/gallery", s.handleGalleryList)
		r.Get("/shop", s.handleShopList)

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/contact-info", s.handleContactInfo)

		r.Post("/orders/upload", s.handleOrderUpload)
		r.Get("/orders/{id}/status", s.handleOrderStatus)
		r.Post("/orders/{id}/confirm", s.handleOrderConfirm)

		r.Get("/print-settings", s.handlePrintSettingsGet)
		r.Post("/calculate-cost", s.handleCalculateCost)
		r.Post("/estimate", s.handleEstimate)

		r.Get("/user/discount/{email}", s.handleUserDiscount)
		r.Get("/user/orders/{email}", s.handleUserOrders)

		r.Post("/telegram/webhook", s.handleTelegramWebhook)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Post("/materials", s.handleMaterialCreate)
			r.Put("/materials/{id}", s.handleMaterialUpdate)
			r.Delete("/materials/{id}", s.handleMaterialDelete)
			r.Post("/gallery", s.handleGalleryCreate)
			r.Put("/gallery/{id}", s.handleGalleryUpdate)
			r.Delete("/gallery/{id}", s.handleGalleryDelete)
			r.Post("/shop", s.handleShopCreate)
			r.Put("/shop/{id}", s.handleShopUpdate)
			r.Delete("/shop/{id}", s.handleShopDelete)

			r.Get("/orders", s.handleOrdersList)
			r.Put("/orders/{id}/approve", s.handleOrderApprove)
			r.Get("/orders/{id}/quote.pdf", s.handleOrderQuotePDF)

			r.Put("/print-settings", s.handlePrintSettingsUpdate)
		})
	})

	return r
}

package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	advertisementshandler "github.com/corray333/shopline/notify/internal/transport/http/advertisements"
	authhandler "github.com/corray333/shopline/notify/internal/transport/http/auth"
	cancelorder "github.com/corray333/shopline/notify/internal/transport/http/cancel_order"
	createorder "github.com/corray333/shopline/notify/internal/transport/http/create_order"
	listorders "github.com/corray333/shopline/notify/internal/transport/http/list_orders"
	notificationshandler "github.com/corray333/shopline/notify/internal/transport/http/notifications"
	updatestatus "github.com/corray333/shopline/notify/internal/transport/http/update_status"
	"github.com/corray333/shopline/notify/pkg/http/middleware/trace"
	"github.com/corray333/shopline/notify/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type orderService interface {
	createorder.Service
	listorders.Service
	updatestatus.Service
	cancelorder.Service
}

type broadcastService interface {
	advertisementshandler.Service
	notificationshandler.Service
}

type authService interface {
	authhandler.Service
}

type HTTPTransport struct {
	server    *http.Server
	router    *chi.Mux
	orders    orderService
	broadcast broadcastService
	auth      authService
}

func NewHTTPTransport(
	orders orderService,
	broadcast broadcastService,
	auth authService,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:    server,
		router:    router,
		orders:    orders,
		broadcast: broadcast,
		auth:      auth,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/orders", func(w http.ResponseWriter, r *http.Request) {
			createorder.CreateOrder(w, r, h.orders)
		})
		r.Get("/orders", func(w http.ResponseWriter, r *http.Request) {
			listorders.ListOrders(w, r, h.orders)
		})
		r.Post("/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
			updatestatus.UpdateStatus(w, r, h.orders)
		})
		r.Post("/orders/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
			cancelorder.CancelOrder(w, r, h.orders)
		})

		r.Post("/advertisements", func(w http.ResponseWriter, r *http.Request) {
			advertisementshandler.CreateAdvertisement(w, r, h.broadcast)
		})
		r.Get("/advertisements/{id}", func(w http.ResponseWriter, r *http.Request) {
			advertisementshandler.GetAdvertisement(w, r, h.broadcast)
		})
		r.Put("/advertisements/{id}", func(w http.ResponseWriter, r *http.Request) {
			advertisementshandler.UpdateAdvertisement(w, r, h.broadcast)
		})
		r.Delete("/advertisements/{id}", func(w http.ResponseWriter, r *http.Request) {
			advertisementshandler.DeleteAdvertisement(w, r, h.broadcast)
		})
		r.Post("/advertisements/{id}/broadcast", func(w http.ResponseWriter, r *http.Request) {
			advertisementshandler.Broadcast(w, r, h.broadcast)
		})

		r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
			notificationshandler.ListNotifications(w, r, h.broadcast)
		})
		r.Post("/notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
			notificationshandler.MarkRead(w, r, h.broadcast)
		})

		r.Post("/auth/verification-code", func(w http.ResponseWriter, r *http.Request) {
			authhandler.RequestVerificationCode(w, r, h.auth)
		})
		r.Post("/auth/password-reset", func(w http.ResponseWriter, r *http.Request) {
			authhandler.RequestPasswordReset(w, r, h.auth)
		})
		r.Post("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
			authhandler.ConfirmVerified(w, r, h.auth)
		})
	})
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}

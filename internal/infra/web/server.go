package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"webharbour/internal/domain"
	"webharbour/internal/domain/ports/adapter"
	"webharbour/internal/infra/redis"
	"webharbour/internal/usecase"
)

type Server struct {
	authUC       usecase.AuthUseCase
	productUC    usecase.ProductUseCase
	orderUC      usecase.OrderUseCase
	reconcileUC  usecase.ReconcileUseCase
	reviewUC     usecase.ReviewUseCase
	moderationUC usecase.ModerationUseCase
	statsUC      usecase.StatsUseCase
	gateway      adapter.PaymentGateway
	auth         *AuthManager
	limiter      *redis.RateLimiter
	log          *zerolog.Logger
}

func NewServer(
	authUC usecase.AuthUseCase,
	productUC usecase.ProductUseCase,
	orderUC usecase.OrderUseCase,
	reconcileUC usecase.ReconcileUseCase,
	reviewUC usecase.ReviewUseCase,
	moderationUC usecase.ModerationUseCase,
	statsUC usecase.StatsUseCase,
	gateway adapter.PaymentGateway,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		authUC:       authUC,
		productUC:    productUC,
		orderUC:      orderUC,
		reconcileUC:  reconcileUC,
		reviewUC:     reviewUC,
		moderationUC: moderationUC,
		statsUC:      statsUC,
		gateway:      gateway,
		auth:         auth,
		limiter:      limiter,
		log:          logger,
	}
}

// Router builds the full API routing table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceID, RequestLog(s.log), Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(s.auth.RequireAuth)
				r.Get("/me", s.handleMe)
				r.Put("/profile", s.handleUpdateProfile)
				r.Get("/purchases", s.handlePurchases)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.With(s.auth.OptionalAuth).Get("/", s.handleProductList)
			r.Get("/featured", s.handleProductFeatured)
			r.Get("/suggest", s.handleProductSuggest)
			r.Get("/developer/{id}", s.handleProductsByDeveloper)
			r.Get("/{id}", s.handleProductGet)
			r.Get("/{id}/reviews", s.handleReviewList)
			r.Group(func(r chi.Router) {
				r.Use(s.auth.RequireAuth)
				r.Post("/", s.handleProductSubmit)
				r.Post("/{id}/reviews", s.handleReviewCreate)
			})
		})

		r.Get("/categories", s.handleCategories)

		// Kept at its historical path; same handler as POST /products.
		r.With(s.auth.RequireAuth).Post("/upload", s.handleProductSubmit)

		r.Route("/payments", func(r chi.Router) {
			r.Post("/webhook", s.handleWebhook)
			r.Group(func(r chi.Router) {
				r.Use(s.auth.RequireAuth)
				r.Post("/create-intent", s.handleCreateIntent)
				r.Get("/my-orders", s.handleMyOrders)
				r.Get("/orders/{id}", s.handleOrderGet)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.auth.RequireAuth, RequireAdmin)
			r.Get("/stats", s.handleAdminStats)
			r.Get("/products/pending", s.handleAdminPendingProducts)
			r.Put("/products/{id}/approve", s.handleAdminApprove)
			r.Put("/products/{id}/reject", s.handleAdminReject)
			r.Get("/users", s.handleAdminUsers)
			r.Put("/users/{id}/role", s.handleAdminUserRole)
			r.Post("/orders/{id}/refund", s.handleAdminRefund)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels onto HTTP statuses. Anything unrecognized
// is a 500 with a generic body; details stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnparseableEvent),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrProductNotApproved):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrAlreadyPurchased),
		errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

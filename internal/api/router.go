package api

import (
	"net/http"
	"time"

	"codeprep_backend/internal/api/handler"
	"codeprep_backend/internal/app/service"
	"codeprep_backend/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	tokens *security.TokenIssuer,
	authService *service.AuthService,
	topicService *service.TopicService,
	assignmentService *service.AssignmentService,
	submissionService *service.SubmissionService,
	progressService *service.ProgressService,
	paymentService *service.PaymentService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Decodes a bearer token when present; enforcement happens in the
	// Authenticator middleware on protected groups.
	r.Use(jwtauth.Verifier(tokens.Auth()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		topicHandler := handler.NewTopicHandler(topicService)
		v1.Route("/topics", topicHandler.RegisterRoutes)

		assignmentHandler := handler.NewAssignmentHandler(assignmentService)
		v1.Route("/assignments", assignmentHandler.RegisterRoutes)

		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		progressHandler := handler.NewProgressHandler(progressService)
		v1.Route("/progress", progressHandler.RegisterRoutes)

		paymentHandler := handler.NewPaymentHandler(paymentService)
		v1.Route("/payments", paymentHandler.RegisterRoutes)
	})

	return r
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-admin/internal/application/approval"
	"github.com/jhoicas/inventario-admin/internal/application/auth"
	"github.com/jhoicas/inventario-admin/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	Reviews      *approval.Service
	CookieName   string
	SecureCookie bool
	Log          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC, deps.CookieName, deps.SecureCookie)
	requireSession := AuthMiddleware(deps.AuthUC, deps.CookieName)

	// Auth (público salvo logout)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/reset-password", authHandler.ResetPassword)
	authGroup.Post("/verify-otp", authHandler.VerifyOTP)
	authGroup.Post("/change-password", authHandler.ChangePassword)
	authGroup.Post("/logout", requireSession, authHandler.Logout)

	// Navegación (sesión opcional)
	api.Get("/navigation", OptionalAuth(deps.AuthUC, deps.CookieName), Navigation)

	// Rutas protegidas (requieren sesión)
	protected := api.Group("/", requireSession, CloseRejectedSession(deps.AuthUC, deps.CookieName, deps.SecureCookie, deps.Log))

	me := protected.Group("/me")
	me.Get("/", authHandler.Me)
	me.Put("/", authHandler.UpdateMe)
	me.Post("/password", authHandler.ChangeMyPassword)

	// Usuarios (solo revisores)
	users := protected.Group("/users", RequireReviewer())
	userHandler := NewUserHandler(deps.AuthUC)
	users.Get("/", userHandler.List)
	users.Get("/managers", userHandler.Managers)
	users.Get("/staff", userHandler.Staff)

	reviewHandler := NewReviewHandler(deps.Reviews)
	protected.Get("/categories/active", reviewHandler.ActiveCategories)

	reviews := protected.Group("/reviews")
	// history antes de /:kind para que no se interprete como un tablero
	reviews.Get("/history", RequireReviewer(), reviewHandler.History)

	board := reviews.Group("/:kind", RequireKind())
	board.Get("/", reviewHandler.List)
	board.Post("/", reviewHandler.Create)
	board.Get("/report", RequireReviewer(), reviewHandler.Report)
	board.Get("/:id", reviewHandler.Detail)
	board.Put("/:id", reviewHandler.Update)
	board.Post("/:id/toggle", reviewHandler.Toggle)
	board.Post("/:id/approve", RequireReviewer(), reviewHandler.Approve)
	board.Post("/:id/reject", RequireReviewer(), reviewHandler.Reject)
}

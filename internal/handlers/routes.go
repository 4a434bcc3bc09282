package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/contract"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/messaging"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/notification"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/profile"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/project"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/proposal"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/review"
)

type Deps struct {
	DB              *gorm.DB
	Log             *zap.Logger
	Hub             *realtime.Hub
	Pusher          notification.Pusher
	JWTSecret       string
	JWTExpiresMin   int
	FrontendBaseURL string
}

// NewApp builds the Fiber app with every route mounted.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(d.Log),
	})

	origins := d.FrontendBaseURL
	if origins == "" {
		origins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(d.Log))

	notes := notification.NewNotificationService(d.DB)
	fanout := notification.NewFanout(notes, d.Pusher, d.Log)

	authH := &AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret, Expires: d.JWTExpiresMin}
	profileH := NewProfileHandler(profile.NewProfileService(d.DB, d.Log))
	projectH := NewProjectHandler(project.NewProjectService(d.DB))
	proposalH := NewProposalHandler(proposal.NewProposalService(d.DB, fanout, d.Log))
	contractH := NewContractHandler(
		contract.NewContractService(d.DB, fanout, d.Log),
		review.NewReviewService(d.DB, fanout, d.Log),
	)
	messageH := NewMessageHandler(messaging.NewMessageService(d.DB, fanout, d.Log))
	notifH := NewNotificationHandler(notes)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)

	auth := []fiber.Handler{middleware.JWTFromCookie(d.JWTSecret), middleware.AttachJWTLocals()}
	protected := api.Group("/", auth...)
	clientOnly := middleware.RequireRoles(string(models.RoleClient))
	freelancerOnly := middleware.RequireRoles(string(models.RoleFreelancer))

	protected.Get("/me", authH.Me)
	protected.Get("/profile/me", profileH.Me)
	protected.Put("/profile/me", profileH.UpdateMe)
	protected.Get("/users/:id/profile", profileH.ForUser)

	protected.Get("/projects", projectH.List)
	protected.Post("/projects", clientOnly, projectH.Create)
	protected.Get("/projects/:id", projectH.Get)
	protected.Patch("/projects/:id", clientOnly, projectH.Update)
	protected.Delete("/projects/:id", clientOnly, projectH.Delete)
	protected.Get("/projects/:id/proposals", clientOnly, proposalH.ListForProject)

	protected.Post("/proposals", freelancerOnly, proposalH.Submit)
	protected.Get("/proposals/mine", freelancerOnly, proposalH.Mine)
	protected.Get("/proposals/:id", proposalH.Get)
	protected.Patch("/proposals/:id/accept", clientOnly, proposalH.Accept)
	protected.Patch("/proposals/:id/reject", clientOnly, proposalH.Reject)

	protected.Get("/contracts", contractH.List)
	protected.Get("/contracts/:id", contractH.Get)
	protected.Patch("/contracts/:id/complete", contractH.Complete)
	protected.Patch("/contracts/:id/cancel", contractH.Cancel)
	protected.Post("/contracts/:id/reviews", contractH.Review)
	protected.Get("/users/:id/reviews", contractH.UserReviews)

	protected.Post("/messages", messageH.Send)
	protected.Get("/messages", messageH.Conversation)
	protected.Get("/messages/inbox", messageH.Inbox)
	protected.Patch("/messages/conversations/:userId/read", messageH.MarkConversationRead)
	protected.Patch("/messages/:id/read", messageH.MarkRead)

	protected.Get("/notifications", notifH.List)
	protected.Get("/notifications/unread-count", notifH.UnreadCount)
	protected.Post("/notifications/read-all", notifH.MarkAllRead)
	protected.Patch("/notifications/:id/read", notifH.MarkRead)
	protected.Patch("/notifications/:id/unread", notifH.MarkUnread)

	if d.Hub != nil {
		wsH := NewWSHandler(d.Hub, d.Log)
		ws := append(append([]fiber.Handler{}, auth...), wsH.Upgrade, wsH.Notifications())
		app.Get("/ws/notifications", ws...)
	}

	return app
}

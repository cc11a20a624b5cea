package routes

import (
	"github.com/gin-gonic/gin"

	"prospera/internal/authz"
	"prospera/internal/handlers"
	"prospera/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	contactHandler *handlers.ContactHandler,
	funnelHandler *handlers.FunnelHandler,
	opportunityHandler *handlers.OpportunityHandler,
	lostReasonHandler *handlers.LostReasonHandler,
	documentHandler *handlers.DocumentHandler,
	ticketHandler *handlers.TicketHandler,
	reportsHandler *handlers.ReportsHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/register", authHandler.Register)

	// ---- protected
	r.Use(middleware.AuthMiddleware())
	r.Use(middleware.ReadOnlyGuard())

	r.POST("/logout", authHandler.Logout)

	// USERS
	users := r.Group("/users")
	{
		users.POST("/", userHandler.CreateUser)
		users.GET("/count", userHandler.GetUserCount)
		users.GET("/", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUserByID)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	// CONTACTS
	contacts := r.Group("/contacts")
	{
		contacts.POST("/", contactHandler.Create)
		contacts.GET("/", contactHandler.List)
		contacts.GET("/:id", contactHandler.Get)
		contacts.PUT("/:id", contactHandler.Update)
		contacts.DELETE("/:id", contactHandler.Delete)
	}

	// FUNNELS (pipeline admin is ops/mgmt/admin, read is open to all roles)
	funnels := r.Group("/funnels")
	{
		funnels.GET("/", funnelHandler.List)
		funnels.GET("/:id", funnelHandler.Get)
		funnels.GET("/:id/stages", funnelHandler.Stages)
		funnels.GET("/:id/board", funnelHandler.Board)

		admin := funnels.Group("",
			middleware.RequireRoles(authz.RoleOperations, authz.RoleManagement, authz.RoleAdmin),
		)
		{
			admin.POST("/", funnelHandler.Create)
			admin.POST("/:id/stages", funnelHandler.AddStage)
			admin.PUT("/:id/stages/order", funnelHandler.ReorderStages)
		}
	}

	// OPPORTUNITIES
	opps := r.Group("/opportunities")
	{
		opps.POST("/", opportunityHandler.Create)
		opps.GET("/", opportunityHandler.List)
		opps.GET("/:id", opportunityHandler.Get)
		opps.GET("/:id/history", opportunityHandler.History)
		opps.GET("/:id/check-move", opportunityHandler.CheckMove)
		opps.GET("/:id/documents", documentHandler.ListByOpportunity)
		opps.POST("/:id/move", opportunityHandler.Move)
		opps.PUT("/:id/value", opportunityHandler.SetProposalValue)
		opps.PUT("/:id/notes", opportunityHandler.SetNotes)
		opps.POST("/:id/lost", opportunityHandler.MarkLost)
		opps.POST("/:id/won", opportunityHandler.MarkWon)
		opps.POST("/:id/reactivate", opportunityHandler.Reactivate)
	}

	// LOST REASONS (catalog admin)
	reasons := r.Group("/lost-reasons")
	{
		reasons.GET("/", lostReasonHandler.List)

		admin := reasons.Group("",
			middleware.RequireRoles(authz.RoleManagement, authz.RoleAdmin),
		)
		{
			admin.POST("/", lostReasonHandler.Create)
			admin.PUT("/:id/active", lostReasonHandler.SetActive)
		}
	}

	// DOCUMENTS
	docs := r.Group("/documents")
	{
		docs.POST("/", documentHandler.Generate)
		docs.GET("/", documentHandler.List)
		docs.GET("/:id", documentHandler.Get)
		docs.GET("/:id/download", documentHandler.Download)
		docs.DELETE("/:id", documentHandler.Delete)
	}

	// TICKETS
	tickets := r.Group("/tickets",
		middleware.RequireRoles(authz.RolePlanner, authz.RoleOperations, authz.RoleManagement, authz.RoleAdmin),
	)
	{
		tickets.POST("/", ticketHandler.Create)
		tickets.GET("/", ticketHandler.List)
		tickets.GET("/:id", ticketHandler.Get)
		tickets.PUT("/:id", ticketHandler.Update)
		tickets.PUT("/:id/status", ticketHandler.UpdateStatus)
		tickets.PUT("/:id/assignee", ticketHandler.UpdateAssignee)
		tickets.DELETE("/:id", ticketHandler.Delete)
	}

	// REPORTS (viewer/ops/mgmt/admin)
	reports := r.Group("/reports",
		middleware.RequireRoles(authz.RoleViewer, authz.RoleOperations, authz.RoleManagement, authz.RoleAdmin),
	)
	{
		reports.GET("/pipeline/:id", reportsHandler.PipelineSummary)
		reports.GET("/win-loss", reportsHandler.WinLoss)
	}

	return r
}

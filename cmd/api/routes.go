package main

import (
	"billing-console/internal/auth"
	"billing-console/internal/httpapi"
	"billing-console/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules;
// authorization happens here and in middleware, never inside the billing core.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// AUTH routes (token issuance).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	v1.Use(rbac.RequireTenant())
	{
		// Identity echo, useful for debugging token claims.
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			tid, _ := auth.TenantID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "tenant_id": tid, "account_id": auth.AccountID(c.Request.Context()), "role": role})
		})

		// LEDGER routes. Ingestion is a system-to-system surface; the hidden
		// billing_operator role is explicitly allowed here.
		events := v1.Group("/events")
		events.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleBillingOperator, rbac.RoleSuperAdmin))
		{
			events.POST("", h.IngestEvent)
		}

		// BILLING routes: rating runs and statements.
		billing := v1.Group("/billing")
		billing.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleFinance, rbac.RoleSuperAdmin))
		{
			billing.POST("/rating/run", h.RunRating)
			billing.POST("/statements/generate", h.GenerateStatement)
			billing.POST("/statements/:statement_id/status", h.TransitionStatement)
		}

		// Read-only statement access additionally allows analysts.
		statements := v1.Group("/statements")
		statements.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleFinance, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			statements.GET("/:statement_id", h.GetStatement)
		}

		// REPORTING routes
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleFinance, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			reports.GET("/rated-spend", h.RatedSpendSummary)
			reports.GET("/statements", h.StatementSummary)
		}

		// ADMIN routes
		// Audit records are internal-only: super_admin exclusively, the
		// hidden billing_operator is intentionally NOT included.
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleSuperAdmin))
		{
			admin.GET("/audit", h.ListAuditTrail)
		}
	}
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-service/internal/api/http/handlers"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Accounts       *handlers.AccountsHandler
	Courses        *handlers.CoursesHandler
	Lessons        *handlers.LessonsHandler
	Enrollments    *handlers.EnrollmentsHandler
	Categories     *handlers.CategoriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/verify-email", cfg.Users.VerifyEmail)

	// public catalog
	app.Get("/categories", cfg.Categories.List)
	app.Get("/courses", cfg.Courses.ListCatalog)

	authed := cfg.AuthMiddleware.Handle

	// instructor routes sit before the /courses/:id wildcards
	courses := app.Group("/courses")
	courses.Get("/mine", authed, auth.RequireRole(domain.RoleInstructor, domain.RoleAdmin), cfg.Courses.ListOwn)
	courses.Post("", authed, auth.RequireRole(domain.RoleInstructor, domain.RoleAdmin), cfg.Courses.CreateCourse)
	courses.Get("/:id", cfg.Courses.GetCourse)
	courses.Get("/:id/detail", authed, auth.RequireAuthenticated(), cfg.Courses.GetCourseDetail)
	courses.Patch("/:id", authed, auth.RequireAuthenticated(), cfg.Courses.UpdateCourse)
	courses.Delete("/:id", authed, auth.RequireAuthenticated(), cfg.Courses.DeleteCourse)
	courses.Patch("/:id/status", authed, auth.RequireRole(domain.RoleAdmin), cfg.Courses.ChangeStatus)
	courses.Get("/:id/lessons", authed, auth.RequireAuthenticated(), cfg.Lessons.ListLessons)
	courses.Post("/:id/lessons", authed, auth.RequireAuthenticated(), cfg.Lessons.AddLesson)
	courses.Post("/:id/enroll", authed, auth.RequireAuthenticated(), cfg.Enrollments.SelfEnroll)

	lessons := app.Group("/lessons", authed, auth.RequireAuthenticated())
	lessons.Patch("/:id", cfg.Lessons.UpdateLesson)
	lessons.Delete("/:id", cfg.Lessons.DeleteLesson)

	me := app.Group("/me", authed, auth.RequireAuthenticated())
	me.Get("/enrollments", cfg.Enrollments.ListMine)

	admin := app.Group("/admin", authed, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/users", cfg.Accounts.CreateUser)
	admin.Patch("/users/:id/role", cfg.Accounts.ChangeRole)
	admin.Post("/users/:id/suspend", cfg.Accounts.Suspend)
	admin.Post("/users/:id/reactivate", cfg.Accounts.Reactivate)
	admin.Get("/courses", cfg.Courses.ListAll)
	admin.Get("/courses/:id/enrollments", cfg.Enrollments.ListForCourse)
	admin.Post("/enrollments", cfg.Enrollments.AdminEnroll)
	admin.Patch("/enrollments/:id/payment", cfg.Enrollments.ChangePayment)
	admin.Patch("/enrollments/:id/progress", cfg.Enrollments.UpdateProgress)
	admin.Delete("/enrollments/:id", cfg.Enrollments.DeleteEnrollment)
	admin.Post("/categories", cfg.Categories.Create)
	admin.Patch("/categories/:id", cfg.Categories.Rename)
	admin.Delete("/categories/:id", cfg.Categories.Delete)
}

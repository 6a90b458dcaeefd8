package routes

import (
	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Course routes
	courseController := controllers.NewCourseController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", courseController.GetMyCourses)
	courses.Post("/", courseController.CreateCourse)
	courses.Get("/:courseId", courseController.GetCourse)
	courses.Put("/:courseId", courseController.UpdateCourse)
	courses.Delete("/:courseId", courseController.DeleteCourse)

	// Milestone routes
	milestoneController := controllers.NewMilestoneController(db, cfg)
	courses.Get("/:courseId/milestones", milestoneController.GetMilestones)
	courses.Post("/:courseId/milestones", milestoneController.CreateMilestone)
	courses.Get("/:courseId/milestones/:milestoneId", milestoneController.GetMilestone)
	courses.Put("/:courseId/milestones/:milestoneId", milestoneController.UpdateMilestone)
	courses.Delete("/:courseId/milestones/:milestoneId", milestoneController.DeleteMilestone)

	// Membership routes
	membershipController := controllers.NewMembershipController(db, cfg)
	courses.Get("/:courseId/memberships", membershipController.GetMemberships)
	courses.Post("/:courseId/memberships", membershipController.CreateMembership)
	courses.Post("/:courseId/memberships/batch", membershipController.BatchCreateMemberships)
	courses.Patch("/:courseId/memberships/:membershipId", membershipController.UpdateMembership)
	courses.Delete("/:courseId/memberships/:membershipId", membershipController.DeleteMembership)

	// Group routes
	groupController := controllers.NewGroupController(db, cfg)
	courses.Get("/:courseId/groups", groupController.GetGroups)
	courses.Post("/:courseId/groups", groupController.CreateGroup)
	courses.Get("/:courseId/groups/:groupId", groupController.GetGroup)
	courses.Patch("/:courseId/groups/:groupId", groupController.PatchGroup)
	courses.Delete("/:courseId/groups/:groupId", groupController.DeleteGroup)

	// Milestone template routes
	templateController := controllers.NewTemplateController(db, cfg)
	courses.Get("/:courseId/templates", templateController.GetTemplates)
	courses.Post("/:courseId/templates", templateController.CreateTemplate)
	courses.Get("/:courseId/templates/:templateId", templateController.GetTemplate)
	courses.Put("/:courseId/templates/:templateId", templateController.UpdateTemplate)
	courses.Delete("/:courseId/templates/:templateId", templateController.DeleteTemplate)

	// Submission routes
	submissionController := controllers.NewSubmissionController(db, cfg)
	courses.Get("/:courseId/submissions", submissionController.GetSubmissions)
	courses.Post("/:courseId/submissions", submissionController.CreateSubmission)
	courses.Get("/:courseId/submissions/:submissionId", submissionController.GetSubmission)
	courses.Put("/:courseId/submissions/:submissionId", submissionController.UpdateSubmission)
	courses.Delete("/:courseId/submissions/:submissionId", submissionController.DeleteSubmission)
	courses.Get("/:courseId/submissions/:submissionId/viewable-groups", submissionController.GetViewableGroups)
	courses.Put("/:courseId/submissions/:submissionId/viewable-groups", submissionController.UpdateViewableGroups)

	// Submission comment routes
	commentController := controllers.NewCommentController(db, cfg)
	courses.Get("/:courseId/submissions/:submissionId/comments", commentController.GetFieldCommentCounts)
	courses.Get("/:courseId/submissions/:submissionId/comments/:fieldIndex", commentController.GetFieldComments)
	courses.Post("/:courseId/submissions/:submissionId/comments/:fieldIndex", commentController.CreateComment)
	courses.Patch("/:courseId/submissions/:submissionId/comments/:fieldIndex/:commentId", commentController.UpdateComment)
	courses.Delete("/:courseId/submissions/:submissionId/comments/:fieldIndex/:commentId", commentController.DeleteComment)
}

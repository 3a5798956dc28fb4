package routes

import (
	"github.com/gin-gonic/gin"

	"taskmanager/internal/handlers"
	"taskmanager/internal/middleware"
)

// Handlers bundles everything SetupRoutes mounts. Asset and Report may be nil,
// their routes are then skipped.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Notification *handlers.NotificationHandler
	Task         *handlers.TaskHandler
	Asset        *handlers.AssetHandler
	Report       *handlers.ReportHandler
}

// SetupRoutes mounts the API under /api. protect authenticates the caller.
func SetupRoutes(r *gin.Engine, h Handlers, protect gin.HandlerFunc) *gin.Engine {
	admin := middleware.RequireAdmin()
	api := r.Group("/api")

	// USERS
	user := api.Group("/user")
	{
		user.POST("/register", h.Auth.Register)
		user.POST("/login", h.Auth.Login)
		user.POST("/logout", h.Auth.Logout)

		user.GET("/get-team", protect, admin, h.User.GetTeam)
		user.GET("/notifications", protect, h.Notification.List)
		user.GET("/notifications/ws", protect, h.Notification.Stream)
		user.PUT("/profile", protect, h.User.UpdateProfile)
		user.PUT("/read-noti", protect, h.Notification.MarkRead)
		user.PUT("/change-password", protect, h.User.ChangePassword)

		// только для администратора
		user.PUT("/:id", protect, admin, h.User.Activate)
		user.DELETE("/:id", protect, admin, h.User.Delete)
	}

	// TASKS
	task := api.Group("/task", protect)
	{
		task.POST("/create", admin, h.Task.Create)
		task.POST("/duplicate/:id", admin, h.Task.Duplicate)
		task.POST("/activity/:id", h.Task.PostActivity)

		task.GET("/dashboard", h.Task.Dashboard)
		task.GET("", h.Task.List)
		task.GET("/", h.Task.List)
		task.GET("/:id", h.Task.Get)

		task.PUT("/create-subtask/:id", admin, h.Task.AddSubTask)
		task.PUT("/update/:id", admin, h.Task.Update)
		task.PUT("/trash/:id", admin, h.Task.Trash)
		task.PUT("/:id", admin, h.Task.Trash)
		task.PUT("/dependencies/:id", admin, h.Task.SetDependencies)

		task.DELETE("/delete-restore", admin, h.Task.DeleteRestore)
		task.DELETE("/delete-restore/:id", admin, h.Task.DeleteRestore)

		if h.Asset != nil {
			task.POST("/assets", admin, h.Asset.Upload)
		}
		if h.Report != nil {
			task.GET("/dashboard/report", h.Report.Dashboard)
		}
	}

	return r
}

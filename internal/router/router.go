package router

import (
	"embed"
	"html/template"

	"miniblog/internal/handler"
	"miniblog/internal/middleware"
	"miniblog/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Config struct {
	SMTP     pkg.SMTPConfig
	Kafka    pkg.KafkaConfig
	MediaDir string
}

func InitRouter(cfg Config) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	producer, err := pkg.NewKafkaProducer(cfg.Kafka)
	if err != nil {
		logrus.WithError(err).Warn("kafka disabled")
		producer = nil
	}

	post := handler.NewPostHandler(producer, cfg.MediaDir)
	user := handler.NewUserHandler(cfg.SMTP)

	// Public read paths. CurrentUser only decorates the page with the
	// session identity, it never blocks.
	public := r.Group("/")
	public.Use(middleware.CurrentUser())
	{
		public.GET("/", post.Index)
		public.GET("/group/:slug/", post.GroupPosts)
		public.GET("/profile/:username/", post.Profile)
		public.GET("/posts/:id/", post.Detail)
	}

	// Write paths: anonymous requests bounce to the login page.
	authed := r.Group("/")
	authed.Use(middleware.AuthRequired())
	{
		authed.GET("/create/", post.CreateForm)
		authed.POST("/create/", post.Create)
		authed.GET("/posts/:id/edit/", post.EditForm)
		authed.POST("/posts/:id/edit/", post.Edit)
		authed.POST("/posts/:id/comment/", post.AddComment)
	}

	auth := r.Group("/auth")
	{
		auth.GET("/signup/", user.SignupForm)
		auth.POST("/signup/", user.Signup)
		auth.GET("/login/", user.LoginForm)
		auth.POST("/login/", user.Login)
		auth.POST("/logout/", middleware.AuthRequired(), user.Logout)
		auth.GET("/password_change/", middleware.AuthRequired(), user.PasswordChangeForm)
		auth.POST("/password_change/", middleware.AuthRequired(), user.PasswordChange)
		auth.GET("/password_change/done/", user.PasswordChangeDoneForm)
		auth.GET("/password_reset/", user.PasswordResetForm)
		auth.POST("/password_reset/", user.PasswordReset)
		auth.GET("/password_reset/done/", user.PasswordResetDoneForm)
		auth.POST("/password_reset/done/", user.PasswordResetDone)
	}

	if cfg.MediaDir != "" {
		r.Static("/media", cfg.MediaDir)
	}

	r.NoRoute(handler.NotFoundPage)

	return r
}

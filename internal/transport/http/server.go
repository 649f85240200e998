package http

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/bootstrap"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/transport/http/handler"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(app.Logger),
		middleware.Metrics(app.Metrics),
		cors.New(cors.Config{
			AllowOrigins:     app.Config.HTTP.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, healthChecks(app))
	documentHandler := handler.NewDocumentHandler(app.Documents)
	sessionHandler := handler.NewSessionHandler(app.QA)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	router.POST("/upload_pdf/", documentHandler.Upload)
	router.GET("/list_files/", documentHandler.List)
	router.GET("/documents/:filename", documentHandler.Get)

	router.POST("/start_session/", sessionHandler.Start)
	router.POST("/ask_question/", sessionHandler.Ask)
	router.GET("/get_history/", sessionHandler.History)
	router.DELETE("/clear_session/", sessionHandler.Clear)

	return router
}

func healthChecks(app *bootstrap.App) map[string]handler.Check {
	checks := map[string]handler.Check{}
	if app.MySQL != nil {
		checks["mysql"] = func(ctx context.Context) error {
			sqlDB, err := app.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if app.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}
	}
	if app.MQConn != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if app.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	return checks
}

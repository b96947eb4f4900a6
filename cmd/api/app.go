package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	adapterHTTP "github.com/comitanigiacomo/goalmate-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/mail"
	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/goalmate-engine/internal/config"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/services"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/workers"
)

type stores struct {
	users domain.UserRepository
	tasks domain.TaskRepository
}

// postgresStores builds the Postgres repositories, putting the Redis cache
// in front of task listing when a client is available.
func postgresStores(db *sqlx.DB, rdb *redis.Client, cacheTTL time.Duration) stores {
	var tasks domain.TaskRepository = repository.NewPostgresTaskRepository(db)
	if rdb != nil {
		tasks = repository.NewCachedTaskRepository(tasks, rdb, cacheTTL)
	}
	return stores{
		users: repository.NewPostgresUserRepository(db),
		tasks: tasks,
	}
}

func newMailer(cfg config.MailConfig) domain.Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Println("[MAIL] no SendGrid API key configured, emails will only be logged")
		return mail.NewLogMailer(log.Default())
	}
	return mail.NewSendGridMailer(cfg.SendGridAPIKey, cfg.FromName, cfg.FromAddress)
}

type application struct {
	router *gin.Engine
	mail   *workers.MailWorker
}

type infra struct {
	db        *sqlx.DB
	redis     *redis.Client
	startTime time.Time
}

func buildApplication(cfg *config.Config, st stores, mailer domain.Mailer, in infra) (*application, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	mailWorker := workers.NewMailWorker(mailer, workers.MailWorkerConfig{
		QueueSize:   cfg.Mail.QueueSize,
		MaxAttempts: cfg.Mail.MaxAttempts,
	})

	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, st.users)
	authService := services.NewAuthService(st.users, tokenService, mailWorker, cfg.Mail.FrontendURL)
	taskService := services.NewTaskService(st.tasks)
	analyticsService := services.NewAnalyticsService(st.tasks, st.users, loc, cfg.Analytics.DailyGoal)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService),
		ProfileHandler:   adapterHTTP.NewProfileHandler(authService),
		TaskHandler:      adapterHTTP.NewTaskHandler(taskService),
		AnalyticsHandler: adapterHTTP.NewAnalyticsHandler(analyticsService),
		Tokens:           tokenService,
		DB:               in.db,
		Redis:            in.redis,
		RateLimit:        cfg.RateLimit,
		StartTime:        in.startTime,
	})

	return &application{router: router, mail: mailWorker}, nil
}

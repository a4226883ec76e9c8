package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/qtc-soft/schedule-api/internal/config"
	"github.com/qtc-soft/schedule-api/internal/database"
	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/handler"
	"github.com/qtc-soft/schedule-api/internal/middleware"
	"github.com/qtc-soft/schedule-api/internal/model"
	"github.com/qtc-soft/schedule-api/internal/queue"
	"github.com/qtc-soft/schedule-api/internal/router"
	"github.com/qtc-soft/schedule-api/internal/session"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if os.Getenv("APP_ENV") == "dev" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	defer db.Close()

	users := entity.NewSQLStore(db, entity.Users, log)
	customers := entity.NewSQLStore(db, entity.Customers, log)
	schedules := entity.NewSQLStore(db, entity.Schedules, log)
	details := entity.NewSQLStore(db, entity.ScheduleDetails, log)
	orders := entity.NewSQLStore(db, entity.Orders, log)
	countries := entity.NewSQLStore(db, entity.Countries, log)
	cities := entity.NewSQLStore(db, entity.Cities, log)

	userSessions := session.NewStore(model.NewScheduleACL(schedules), log)
	customerSessions := session.NewStore(session.NoACL{}, log)

	userAccounts, err := model.NewUserModel(users, nil, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("user model init failed")
	}
	customerAccounts, err := model.NewCustomerAccountModel(customers, nil, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("customer model init failed")
	}

	userAuth := model.NewAuthModel(userAccounts, userSessions, cfg.RequireConfirm, log)
	customerAuth := model.NewAuthModel(customerAccounts, customerSessions, cfg.RequireConfirm, log)

	events := queue.NewPublisher(cfg.AMQPURL, log)
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartOrderConsumer(cfg.AMQPURL, log); err != nil {
				log.Error().Err(err).Msg("order consumer stopped")
			}
		}()
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting and response cache disabled")
	}

	h := router.Handlers{
		UserAuth:     handler.NewAuthHandler(userAuth, cfg.AuthHeader),
		CustomerAuth: handler.NewAuthHandler(customerAuth, cfg.AuthHeader),
		Users:        handler.NewUserHandler(users, cfg.BcryptCost),
		Schedules:    handler.NewScheduleHandler(schedules, userSessions),
		Details:      handler.NewScheduleDetailHandler(details),
		Orders:       handler.NewOrderHandler(orders, schedules, events),
		Customers:    handler.NewCustomerHandler(customers, orders),
		Countries:    handler.NewReferenceHandler(countries),
		Cities:       handler.NewReferenceHandler(cities),
		Online:       handler.NewScheduleOnlineHandler(schedules),
	}

	e := echo.New()
	e.HideBanner = true

	router.Register(e, h, router.Options{
		LoadSession: middleware.LoadSession(userSessions, cfg.AuthHeader),
		RateLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:       middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

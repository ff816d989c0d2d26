package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/mrjaketay/timeApp-sub001/internal/config"
	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/handler"
	"github.com/mrjaketay/timeApp-sub001/internal/middleware"
	"github.com/mrjaketay/timeApp-sub001/internal/obs"
	"github.com/mrjaketay/timeApp-sub001/internal/queue"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
	"github.com/mrjaketay/timeApp-sub001/internal/router"
	"github.com/mrjaketay/timeApp-sub001/internal/service"
)

func main() {
	config.LoadDotEnv()     // optional .env
	cfg := config.Load()    // Load environment config
	obs.Init()              // register Prometheus collectors

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb == nil {
		log.Printf("redis unavailable: local rate limiting, no response cache")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		pub := queue.NewAMQPPublisher(cfg.AMQPURL)
		defer pub.Close()
		events = pub
		go func() {
			err := queue.StartConsumer(ctx, cfg.AMQPURL, queue.AuditHandler)
			if err != nil && !errors.Is(err, context.Canceled) {
				obs.Error("event consumer stopped", err, nil)
			}
		}()
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	companies := repository.NewCompanyRepo(db)
	employees := repository.NewEmployeeRepo(db)
	invitations := repository.NewInvitationRepo(db)
	cards := repository.NewNFCRepo(db)
	attendance := repository.NewAttendanceRepo(db)
	search := repository.NewSearchRepo(db)

	// Services
	actors := service.NewActorResolver(users, companies)
	identity := service.NewIdentityService(db, users, companies, employees, cfg.BcryptCost)
	invSvc := service.NewInvitationService(db, invitations, employees, companies, events, cfg.InvitationTTL)
	nfcSvc := service.NewNFCService(db, cards, employees, attendance, events)
	attSvc := service.NewAttendanceService(attendance, employees, companies, events)
	tsSvc := service.NewTimesheetService(attendance, companies)
	reportSvc := service.NewReportService(attendance, companies)
	searchSvc := service.NewSearchService(search, cfg.SearchLimit)
	empSvc := service.NewEmployeeService(employees)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(obs.RequestLogger())
	e.Use(obs.Instrument())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	}
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	attHandler := handler.NewAttendanceHandler(attSvc, tsSvc, actors)
	router.RegisterRoutes(e, db, rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, identity, actors), cfg.JWTSecret)
	router.RegisterInvitations(e, handler.NewInvitationHandler(invSvc, actors), cfg.JWTSecret)
	router.RegisterAttendance(e, attHandler, cfg.JWTSecret)
	router.RegisterEmployer(e, router.EmployerHandlers{
		Employees:  handler.NewEmployeeHandler(empSvc, actors),
		NFC:        handler.NewNFCHandler(nfcSvc, actors),
		Attendance: attHandler,
		Reports:    handler.NewReportHandler(reportSvc, actors),
	}, cfg.JWTSecret)
	router.RegisterSearch(e, handler.NewSearchHandler(searchSvc, actors), cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

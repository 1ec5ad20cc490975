package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/concert-ticket-reservation/internal/config"
	"github.com/iliyamo/concert-ticket-reservation/internal/database"
	"github.com/iliyamo/concert-ticket-reservation/internal/handler"
	"github.com/iliyamo/concert-ticket-reservation/internal/queue"
	"github.com/iliyamo/concert-ticket-reservation/internal/repository"
	"github.com/iliyamo/concert-ticket-reservation/internal/router"
	"github.com/iliyamo/concert-ticket-reservation/internal/service"
	"github.com/iliyamo/concert-ticket-reservation/internal/worker"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	statusRepo := repository.NewStatusRepo(db)
	concertRepo := repository.NewConcertRepo(db)
	ticketTypeRepo := repository.NewTicketTypeRepo(db)
	concertSeatRepo := repository.NewConcertSeatRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	publisher := queue.NewPublisher(cfg.RabbitURL, cfg.ReservationQueue)
	conflicts := queue.NewConflictChecker(cfg.RabbitURL, cfg.CartQueue, cfg.ConflictScan)

	svc := service.NewTicketService(db, statusRepo, concertRepo, ticketTypeRepo,
		concertSeatRepo, reservationRepo, conflicts, publisher)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reaper := worker.NewReaper(svc, cfg.ReaperInterval)
	go reaper.Run(ctx)

	e := echo.New()
	e.HideBanner = true

	res := handler.NewReservationHandler(svc)
	tt := handler.NewTicketTypeHandler(ticketTypeRepo)
	router.Register(e, res, tt, router.Options{
		JWTSecret:       cfg.JWTSecret,
		Redis:           rdb,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CatalogCacheTTL: cfg.CatalogCacheTTL,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		if err := e.Shutdown(context.Background()); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}

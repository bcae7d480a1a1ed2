package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/jovid1242/cinema-ticketing/internal/config"
	"github.com/jovid1242/cinema-ticketing/internal/database"
	"github.com/jovid1242/cinema-ticketing/internal/handler"
	"github.com/jovid1242/cinema-ticketing/internal/queue"
	"github.com/jovid1242/cinema-ticketing/internal/repository"
	"github.com/jovid1242/cinema-ticketing/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	halls := repository.NewHallRepo(db)
	sessions := repository.NewSessionRepo(db)
	tickets := repository.NewTicketRepo(db)
	stats := repository.NewStatsRepo(db)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Movies:   handler.NewMovieHandler(movies, sessions),
		Halls:    handler.NewHallHandler(halls),
		Sessions: handler.NewSessionHandler(sessions, tickets),
		Tickets:  handler.NewTicketHandler(cfg, tickets),
		Stats:    handler.NewStatsHandler(stats),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	router.Register(e, h, cfg, rdb)

	// Payment events land in logs/tickets.log; the consumer reconnects on
	// broker failure.
	go func() {
		if err := queue.StartTicketPaidConsumer(cfg.AMQPURL); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

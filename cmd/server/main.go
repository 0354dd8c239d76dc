package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	handler "github.com/cheikhmama/soundage/internal/adapters/handler/http"
	repo "github.com/cheikhmama/soundage/internal/adapters/repository/postgres"
	"github.com/cheikhmama/soundage/internal/config"
	"github.com/cheikhmama/soundage/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.DBConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	pollRepo := repo.NewPollRepository(db)
	responseRepo := repo.NewResponseRepository(db)
	optionRepo := repo.NewOptionRepository(db)
	userRepo := repo.NewUserRepository(db)

	pollService := services.NewPollService(pollRepo, responseRepo)
	voteService := services.NewVoteService(pollRepo, responseRepo, optionRepo)
	resultsService := services.NewResultsService(pollRepo, responseRepo)

	pollHandler := handler.NewPollHandler(pollService)
	voteHandler := handler.NewVoteHandler(voteService, resultsService)
	userHandler := handler.NewUserHandler(userRepo)
	router := handler.NewHandler(pollHandler, voteHandler, userHandler, []byte(cfg.JWTSecret))

	server := &stdhttp.Server{Addr: "0.0.0.0:" + cfg.ServerPort, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

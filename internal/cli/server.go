package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finlit-quiz-service/internal/app"
	"finlit-quiz-service/internal/config"
	"finlit-quiz-service/internal/domain"
	filestore "finlit-quiz-service/internal/infra/file"
	"finlit-quiz-service/internal/infra/memory"
	pgstore "finlit-quiz-service/internal/infra/postgres"
	redisstore "finlit-quiz-service/internal/infra/redis"
	"finlit-quiz-service/internal/locate"
	"finlit-quiz-service/internal/rates"
	transport "finlit-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(sampleBank())
	switch {
	case pool != nil:
		loader = pgstore.NewBankLoader(pool, cfg.Bank.ID)
	case cfg.Bank.Path != "":
		loader = filestore.NewBankLoader(cfg.Bank.Path)
	default:
		log.Printf("no question bank configured, serving the built-in sample bank")
	}

	bankTTL := config.Duration(cfg.Bank.TTL, 10*time.Minute)
	var source app.QuestionSource
	if redisClient != nil {
		source = redisstore.NewQuestionCache(redisClient, loader, bankTTL)
	} else {
		source = memory.NewQuestionCache(loader, bankTTL)
	}

	var scores app.ScoreLog
	switch {
	case pool != nil:
		scores = pgstore.NewScoreStore(pool)
	case redisClient != nil:
		scores = redisstore.NewScoreLog(redisClient)
	case cfg.Scores.Path != "":
		scores = filestore.NewScoreLog(cfg.Scores.Path)
	default:
		scores = memory.NewScoreLog()
		log.Printf("no score store configured, leaderboard resets on restart")
	}

	engine := app.NewEngine(source, scores,
		config.Duration(cfg.Quiz.AnswerWindow, app.DefaultAnswerWindow),
		config.Duration(cfg.Quiz.RevealWindow, app.DefaultRevealWindow),
	)
	engine.SetStoreTimeout(config.Duration(cfg.Quiz.StoreTimeout, app.DefaultStoreTimeout))

	wsHandler := transport.NewWSHandler(engine, memory.NewSessionRegistry())

	detector := locate.NewDetector(locate.NewIPWhoIs(), locate.NewIPAPICo(), locate.NewIPInfo())
	var rateSource rates.Source
	if cfg.Rates.URL != "" {
		rateSource = rates.NewCache(rates.NewClient(cfg.Rates.URL, 15*time.Second), config.Duration(cfg.Rates.TTL, time.Hour))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	apiHandler := transport.NewAPIHandler(rateSource, detector)
	mux.HandleFunc("/api/convert", apiHandler.Convert)
	mux.HandleFunc("/api/rates/changes", apiHandler.Changes)
	mux.HandleFunc("/api/locate", apiHandler.Locate)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting finlit quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBank keeps the service usable with zero configuration; swap in a file
// or Postgres bank for real content.
func sampleBank() []domain.Question {
	return []domain.Question{
		{
			Prompt:  "What currency do the ECCU member states share?",
			Options: []string{"Eastern Caribbean Dollar", "US Dollar", "Barbadian Dollar"},
			Answer:  "Eastern Caribbean Dollar",
		},
		{
			Prompt:  "Which should a budget cover first?",
			Options: []string{"Needs", "Wants", "Subscriptions"},
			Answer:  "Needs",
		},
		{
			Prompt:  "An emergency fund is money set aside for…",
			Options: []string{"Unexpected expenses", "Concert tickets"},
			Answer:  "Unexpected expenses",
		},
	}
}

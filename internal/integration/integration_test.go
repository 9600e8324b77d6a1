package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"finlit-quiz-service/internal/app"
	"finlit-quiz-service/internal/domain"
	pgstore "finlit-quiz-service/internal/infra/postgres"
	pgmigrations "finlit-quiz-service/internal/infra/postgres/migrations"
	infraredis "finlit-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestQuizRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	bank := sampleQuestions()
	seedBank(t, ctx, pgURL, "default", bank)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	loader := pgstore.NewBankLoader(pool, "default")
	source := infraredis.NewQuestionCache(redisClient, loader, 5*time.Minute)
	scores := pgstore.NewScoreStore(pool)

	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	engine := app.NewEngineWithClock(source, scores, 10*time.Second, 5*time.Second, clock.Now)

	answers := make(map[string]string, len(bank))
	for _, q := range bank {
		answers[q.Prompt] = q.Answer
	}

	session, err := engine.Start(ctx, domain.Setup{
		Name: "Imani", Country: "Grenada", Avatar: "🦜", Difficulty: "Easy Peasy (5)",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	view := engine.View(session)
	if view.QuestionCount != len(bank) {
		t.Fatalf("expected clamp to %d questions, got %d", len(bank), view.QuestionCount)
	}

	for view.Phase != "complete" {
		switch view.Phase {
		case "answering":
			if err := engine.Select(session, answers[view.Prompt]); err != nil {
				t.Fatalf("select on %q: %v", view.Prompt, err)
			}
		case "revealing":
			clock.Advance(5 * time.Second)
			engine.Tick(ctx, session)
		default:
			engine.Tick(ctx, session)
		}
		view = engine.View(session)
	}

	results, err := engine.Results(ctx, session)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Record.Score != len(bank) || results.Record.Total != len(bank) {
		t.Fatalf("expected perfect score %d/%d, got %d/%d",
			len(bank), len(bank), results.Record.Score, results.Record.Total)
	}
	if results.Rank != 1 {
		t.Fatalf("expected rank 1, got %d", results.Rank)
	}
	if results.RankUnavailable || results.PersistenceWarning {
		t.Fatalf("expected healthy persistence, got %+v", results)
	}

	// The record must be in postgres, not only in memory.
	stored, err := scores.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load scores: %v", err)
	}
	if len(stored) != 1 || stored[0].Username != "Imani" {
		t.Fatalf("expected one stored record for Imani, got %+v", stored)
	}

	// The bank must have been cached in redis on first load.
	keys, err := redisClient.Keys(ctx, "finlit:quiz:*").Result()
	if err != nil {
		t.Fatalf("redis keys: %v", err)
	}
	if len(keys) == 0 {
		t.Fatalf("expected the question bank to be cached in redis")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedBank(t *testing.T, ctx context.Context, dsn, bankID string, questions []domain.Question) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO question_banks (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
		bankID, string(data)); err != nil {
		t.Fatalf("insert bank: %v", err)
	}
}

func sampleQuestions() []domain.Question {
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

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"tripwiseBack/internal/cache"
	"tripwiseBack/internal/config"
	"tripwiseBack/internal/graph"
	"tripwiseBack/internal/handlers"
	"tripwiseBack/internal/repositories"
	"tripwiseBack/internal/services"
	"tripwiseBack/internal/stats"
	"tripwiseBack/utils"
)

type application struct {
	errorLog      *log.Logger
	infoLog       *log.Logger
	db            *sql.DB
	rdb           *redis.Client
	tokens        *utils.TokenManager
	reviewHandler *handlers.ReviewHandler
}

// appLogger adapts the stdlib logger pair to the Logger interfaces the
// internal packages accept.
type appLogger struct {
	infoLog  *log.Logger
	errorLog *log.Logger
}

func (l appLogger) Infof(format string, args ...interface{}) {
	l.infoLog.Printf(format, args...)
}

func (l appLogger) Errorf(format string, args ...interface{}) {
	l.errorLog.Printf(format, args...)
}

// initializeApp wires repositories, collaborators, the service and handlers.
// Everything is constructed here and injected; nothing reaches for globals,
// so tests can assemble the same pieces around fakes.
func initializeApp(cfg config.Config, db *sql.DB, rdb *redis.Client, errorLog, infoLog *log.Logger) (*application, error) {
	tokens, err := utils.NewTokenManager(cfg.JWT.SigningKey)
	if err != nil {
		return nil, err
	}
	logger := appLogger{infoLog: infoLog, errorLog: errorLog}

	reviewRepo := &repositories.ReviewRepository{DB: db}
	reviewCache := cache.NewReviewCache(rdb, logger)
	places := graph.NewClient(&http.Client{Timeout: 5 * time.Second},
		cfg.Graph.URI, cfg.Graph.Database, cfg.Graph.Username, cfg.Graph.Password)
	histogram := stats.NewHistogramUpdater(rdb)
	preference := stats.NewPreferenceRefresher(rdb)

	reviewService := &services.ReviewService{
		Store:      reviewRepo,
		Cache:      reviewCache,
		Places:     places,
		Histogram:  histogram,
		Preference: preference,
		Log:        logger,
		CacheTTL:   time.Duration(cfg.Cache.ReviewTTLSeconds) * time.Second,
	}
	reviewHandler := &handlers.ReviewHandler{Service: reviewService}

	return &application{
		errorLog:      errorLog,
		infoLog:       infoLog,
		db:            db,
		rdb:           rdb,
		tokens:        tokens,
		reviewHandler: reviewHandler,
	}, nil
}

func openDB(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}

func openRedis(cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Failed to ping Redis: %v", err)
		return nil, err
	}
	log.Println("Successfully connected to Redis")
	return rdb, nil
}

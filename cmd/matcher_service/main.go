package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"ResuMatch/internal/config"
	"ResuMatch/internal/database/kafka"
	"ResuMatch/internal/database/milvus"
	"ResuMatch/internal/database/minio"
	mongodb "ResuMatch/internal/database/mongo"
	"ResuMatch/internal/database/mysql"
	"ResuMatch/internal/database/neo4j"
	redisdb "ResuMatch/internal/database/redis"
	"ResuMatch/internal/discovery/etcd"
	"ResuMatch/internal/embedding"
	"ResuMatch/internal/extractor"
	"ResuMatch/internal/llm"
	"ResuMatch/internal/matcher"
	"ResuMatch/internal/matcher_service/api"
	"ResuMatch/internal/matcher_service/service"
	"ResuMatch/internal/matcher_service/store"
	"ResuMatch/internal/profile"
	"ResuMatch/pkg/circuitbreaker"
	pkghttp "ResuMatch/pkg/http"
	"ResuMatch/pkg/logger"
)

const serviceName = "matcher_service"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New(serviceName, "")
	appLogger.Info("Starting matcher service")

	ctx := context.Background()

	// Milvus backs both collections and is the only required store.
	milvusClient, err := milvus.NewClient(ctx, cfg.Databases.Milvus)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Milvus")
	}
	appLogger.Info("Connected to Milvus at " + cfg.Databases.Milvus.Address)

	health := map[string]service.HealthCheck{
		"milvus": milvusClient.HealthCheck,
	}

	// Embedding model, optionally cached through Redis.
	embedModel, err := embedding.NewEmdModel(cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.APIKey, cfg.Embedding.BaseURL)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create embedding model")
	}

	var cacheTTL time.Duration
	if cfg.Embedding.CacheTTL != "" {
		cacheTTL, err = time.ParseDuration(cfg.Embedding.CacheTTL)
		if err != nil {
			appLogger.WithError(err).Fatal("Invalid embedding cacheTTL")
		}
	}

	var redisClient *redisdb.Client
	var rdb *redis.Client
	if cfg.Databases.Redis.Enabled {
		redisClient, err = redisdb.NewClient(ctx, cfg.Databases.Redis)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		rdb = redisClient.RDB
		health["redis"] = redisClient.HealthCheck
		appLogger.Info("Embedding cache backed by Redis")
	}

	encoder, err := embedding.NewCachedModel(embedModel, cfg.Embedding.Model, rdb, cacheTTL, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create embedding cache")
	}

	// LLM client behind a circuit breaker so summary generation degrades
	// instead of hanging match requests.
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create LLM client")
	}
	breaker := circuitbreaker.New(3, 1, 30*time.Second)
	if cfg.Middleware.CircuitBreaker.Enabled {
		timeout, err := time.ParseDuration(cfg.Middleware.CircuitBreaker.Timeout)
		if err != nil {
			appLogger.WithError(err).Fatal("Invalid circuit breaker timeout")
		}
		breaker = circuitbreaker.New(cfg.Middleware.CircuitBreaker.FailureThreshold, cfg.Middleware.CircuitBreaker.SuccessThreshold, timeout)
	}
	summarizer := service.NewSummarizer(llmClient, cfg.LLM.Model, breaker, appLogger)

	// Persistent store over the configured collections.
	mainStore, err := matcher.NewMilvusStore(milvusClient, cfg.Matcher.Collections, cfg.Embedding.Dim, cfg.Matcher.Index, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create vector store")
	}
	if err := mainStore.EnsureCollections(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to prepare collections")
	}
	appLogger.Info("Collections ready: " + cfg.Matcher.Collections.Documents + ", " + cfg.Matcher.Collections.Sections)

	if cfg.Databases.Milvus.AutoFlushInterval != "" {
		interval, err := time.ParseDuration(cfg.Databases.Milvus.AutoFlushInterval)
		if err != nil {
			appLogger.WithError(err).Fatal("Invalid autoFlushInterval")
		}
		milvusClient.StartAutoFlush(interval, cfg.Matcher.Collections.Documents, cfg.Matcher.Collections.Sections)
	}

	tempStores := func(documents, sections string) (matcher.EphemeralStore, error) {
		collections := config.CollectionsConfig{Documents: documents, Sections: sections}
		return matcher.NewMilvusStore(milvusClient, collections, cfg.Embedding.Dim, cfg.Matcher.Index, appLogger)
	}

	deps := service.Dependencies{
		Config:     cfg,
		Log:        appLogger,
		Extractor:  extractor.NewRouter(),
		Encoder:    encoder,
		Store:      mainStore,
		Summarizer: summarizer,
		TempStores: tempStores,
		Health:     health,
	}

	// Optional stores switch their capability on when configured.
	var mysqlClient *mysql.Client
	if cfg.Databases.MySQL.Enabled {
		mysqlClient, err = mysql.NewClient(cfg.Databases.MySQL)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to MySQL")
		}
		catalog, err := profile.NewCatalog(mysqlClient)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to create candidate catalog")
		}
		deps.Catalog = catalog
		health["mysql"] = mysqlClient.HealthCheck
		appLogger.Info("Candidate catalog enabled")
	}

	var neo4jClient *neo4j.Client
	if cfg.Databases.Neo4j.Enabled {
		neo4jClient, err = neo4j.NewClient(ctx, cfg.Databases.Neo4j)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Neo4j")
		}
		graph, err := profile.NewGraph(neo4jClient)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to create skill graph")
		}
		deps.Graph = graph
		health["neo4j"] = neo4jClient.HealthCheck
		appLogger.Info("Skill graph enabled")
	}

	var mongoClient *mongodb.Client
	if cfg.Databases.MongoDB.Enabled {
		mongoClient, err = mongodb.NewClient(ctx, cfg.Databases.MongoDB)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		history, err := store.NewMongoHistoryStore(mongoClient)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to create history store")
		}
		deps.History = history
		health["mongodb"] = mongoClient.HealthCheck
		appLogger.Info("Match history enabled")
	}

	if cfg.Databases.MinIO.Enabled {
		minioClient, err := minio.NewClient(ctx, cfg.Databases.MinIO)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to MinIO")
		}
		deps.Uploader = minioClient
		health["minio"] = minioClient.HealthCheck
		appLogger.Info("Upload archive enabled")
	}

	var kafkaClient *kafka.Client
	var kafkaEvents *kafka.IndexEventPublisher
	if cfg.Databases.Kafka.Enabled {
		kafkaClient, err = kafka.NewClient(cfg.Databases.Kafka)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Kafka")
		}
		kafkaEvents, err = kafka.NewIndexEventPublisher(kafkaClient)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to create index event publisher")
		}
		deps.Events = kafkaEvents
		health["kafka"] = kafkaClient.HealthCheck
		appLogger.Info("Index events enabled on topic " + cfg.Databases.Kafka.Topic)
	}

	svc, err := service.New(deps)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to assemble service")
	}
	appLogger.Info("Dependencies injected")

	// Register in etcd so other services can discover the API.
	var etcdStop chan<- struct{}
	if cfg.Databases.Etcd.Enabled {
		sd, err := etcd.NewServiceDiscovery(cfg.Databases.Etcd)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to create service discovery client")
		}
		etcdStop, err = sd.Register(serviceName, cfg.Server.HTTPAddress, 10)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to register service")
		}
		appLogger.Info(fmt.Sprintf("Service '%s' registered at '%s'", serviceName, cfg.Server.HTTPAddress))
	}

	// Main API server.
	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(svc, cfg.Auth, appLogger)
	router, err := api.SetupRouter(handler, cfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to set up router")
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddress,
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting HTTP server on " + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("HTTP server failed to start")
		}
	}()

	// Ops server with health and readiness probes.
	opsServer, err := pkghttp.NewServer(cfg, pkghttp.WithAddress(cfg.Server.OpsAddress))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create ops server")
	}
	opsServer.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	opsServer.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		probeCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := milvusClient.HealthCheck(probeCtx); err != nil {
			http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ready")
	})

	go func() {
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Ops server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("HTTP server forced to shutdown")
	}
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Ops server forced to shutdown")
	}
	if etcdStop != nil {
		close(etcdStop)
	}
	milvusClient.StopAutoFlush(shutdownCtx)
	if kafkaEvents != nil {
		if err := kafkaEvents.Close(); err != nil {
			appLogger.WithError(err).Error("Error closing index event publisher")
		}
	}
	if kafkaClient != nil {
		if err := kafkaClient.Close(); err != nil {
			appLogger.WithError(err).Error("Error closing Kafka client")
		}
	}
	if mongoClient != nil {
		if err := mongoClient.Close(shutdownCtx); err != nil {
			appLogger.WithError(err).Error("Error disconnecting from MongoDB")
		}
	}
	if neo4jClient != nil {
		neo4jClient.Close(shutdownCtx)
	}
	if mysqlClient != nil {
		if err := mysqlClient.Close(); err != nil {
			appLogger.WithError(err).Error("Error closing MySQL connection")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			appLogger.WithError(err).Error("Error closing Redis connection")
		}
	}
	milvusClient.Close()

	appLogger.Info("Service gracefully stopped")
}

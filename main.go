package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/kscout/paper-submission-api/config"
	"github.com/kscout/paper-submission-api/eligibility"
	"github.com/kscout/paper-submission-api/handlers"
	"github.com/kscout/paper-submission-api/jobs"
	"github.com/kscout/paper-submission-api/lock"
	"github.com/kscout/paper-submission-api/metrics"
	"github.com/kscout/paper-submission-api/render"
	"github.com/kscout/paper-submission-api/roster"
	"github.com/kscout/paper-submission-api/storage"
	"github.com/kscout/paper-submission-api/submission"

	"github.com/Noah-Huppert/golog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// {{{1 Context
	ctx, ctxCancel := context.WithCancel(context.Background())

	// signals holds signals received by process
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		<-signals

		ctxCancel()
	}()

	// {{{1 Logger
	logger := golog.NewStdLogger("paper-submission-api")

	// {{{1 Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("failed to load configuration: %s", err.Error())
	}

	cfgStr, err := cfg.String()
	if err != nil {
		logger.Fatalf("failed to convert configuration to string: %s", err.Error())
	}
	logger.Debugf("loaded configuration: %s", cfgStr)

	// {{{1 Metrics
	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsRecorders := metrics.NewMetrics(metricsRegistry)

	// {{{1 Roster
	rosterCols := roster.Columns{
		Identity: cfg.RosterIdentityColumn,
		Decision: cfg.RosterDecisionColumn,
		Title:    cfg.RosterTitleColumn,
	}

	var rosterSrc roster.Source
	switch cfg.RosterType {
	case config.RosterTypeCSV:
		rosterSrc = roster.CSVSource{
			Path:    cfg.RosterCSVPath,
			Columns: rosterCols,
		}
	default:
		rosterSrc, err = roster.NewSheetsSource(ctx, roster.SheetsSourceConfig{
			CredentialsPath:   cfg.SheetsCredentialsPath,
			SpreadsheetID:     cfg.SheetsSpreadsheetID,
			Worksheet:         cfg.SheetsWorksheet,
			Columns:           rosterCols,
			RequestsPerMinute: cfg.RosterRequestsPerMinute,
		})
		if err != nil {
			logger.Fatalf("failed to create roster source: %s", err.Error())
		}
	}

	// {{{1 Store
	store, err := storage.NewStore(ctx, storage.Config{
		Type:    storage.StoreTypeT(cfg.StoreType),
		DataDir: cfg.DataDir,
		S3: storage.S3StoreConfig{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		},
		GCS: storage.GCSStoreConfig{
			Bucket: cfg.GCSBucket,
		},
	})
	if err != nil {
		logger.Fatalf("failed to create submission store: %s", err.Error())
	}

	// {{{1 Locker
	var locker lock.Locker = lock.NewLocalLocker()

	if len(cfg.RedisAddr) > 0 {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %s", err.Error())
		}

		locker = lock.NewRedisLocker(redisClient, logger.GetChild("lock"), cfg.LockTTL)
	}

	// {{{1 MongoDB
	var mDbSubmissions *mongo.Collection

	if len(cfg.DbHost) > 0 {
		// {{{2 Build connection options
		mDbConnOpts := options.Client()
		mDbConnOpts.SetAuth(options.Credential{
			Username: cfg.DbUser,
			Password: cfg.DbPassword,
		})
		mDbConnOpts.SetHosts([]string{
			fmt.Sprintf("%s:%d", cfg.DbHost, cfg.DbPort),
		})

		if err = mDbConnOpts.Validate(); err != nil {
			logger.Fatalf("failed to validate database connection options: %s", err.Error())
		}

		// {{{2 Connect
		mDb, err := mongo.Connect(ctx, mDbConnOpts)
		if err != nil {
			logger.Fatalf("failed to connect to database: %s", err.Error())
		}

		if err := mDb.Ping(ctx, nil); err != nil {
			logger.Fatalf("failed to test datbase connection: %s", err.Error())
		}

		mDbSubmissions = mDb.Database(cfg.DbName).Collection("submissions")
	}

	// {{{1 Job runner
	jobRunner := jobs.JobRunner{
		Ctx:            ctx,
		Logger:         logger.GetChild("jobs"),
		Metrics:        metricsRecorders,
		MDbSubmissions: mDbSubmissions,
		NotifyURL:      cfg.NotifyWebhookURL,
		NotifySecret:   cfg.NotifyWebhookSecret,
		HTTPClient: &http.Client{
			Timeout: cfg.RemoteTimeout,
		},
	}
	jobRunner.Init()

	go jobRunner.Run()

	// {{{1 Summary renderer
	renderer := render.Renderer{Compress: true}
	if len(cfg.SummaryFontPath) > 0 {
		font, err := render.LoadFont(cfg.SummaryFontPath, cfg.SummaryBoldFontPath)
		if err != nil {
			logger.Fatalf("failed to load summary font: %s", err.Error())
		}
		renderer.Font = &font
	}

	// {{{1 Router
	baseHandler := handlers.BaseHandler{
		Ctx:     ctx,
		Logger:  logger.GetChild("handlers"),
		Cfg:     cfg,
		Metrics: metricsRecorders,
	}

	router := handlers.NewRouter(baseHandler, handlers.Routes{
		Checker: eligibility.Checker{
			Roster:  rosterSrc,
			Timeout: cfg.RemoteTimeout,
		},
		Submitter: submission.Orchestrator{
			Logger:        logger.GetChild("submission"),
			Metrics:       metricsRecorders,
			Store:         store,
			Renderer:      renderer,
			Locker:        locker,
			BasePath:      cfg.StoreBasePath,
			TmpDir:        cfg.TmpDir,
			RemoteTimeout: cfg.RemoteTimeout,
			WriteManifest: cfg.WriteManifest,
		},
		Jobs:           jobRunner,
		MetricsHandler: promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}),
	})

	// {{{1 Start HTTP server
	server := http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("failed to serve: %s", err.Error())
		}
	}()

	logger.Infof("started server on %s", cfg.HTTPAddr)

	<-ctx.Done()

	// {{{1 Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("failed to shutdown server: %s", err.Error())
	}

	<-jobRunner.Done()

	if closer, ok := store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Errorf("failed to close submission store: %s", err.Error())
		}
	}

	logger.Info("done")
}

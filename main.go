package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/rachita-nanda/social-media-performance-analytics/config"
	"github.com/rachita-nanda/social-media-performance-analytics/export"
	"github.com/rachita-nanda/social-media-performance-analytics/models"
	"github.com/rachita-nanda/social-media-performance-analytics/rfm"
	"github.com/rachita-nanda/social-media-performance-analytics/routes"
	"github.com/rachita-nanda/social-media-performance-analytics/utils"
	"github.com/rachita-nanda/social-media-performance-analytics/ws"
)

// Runner owns the wiring of one pipeline process: configuration, database
// pools, source, repositories, sinks and the notification hub.
type Runner struct {
	config      config.Config
	connections *config.DBConnections
	logger      *utils.Logger
	source      *rfm.MySQLRecordSource
	repository  *rfm.MySQLScoreRepository
	runLogRepo  models.RunLogRepository
	sinks       []rfm.TableSink
	hub         *ws.Hub
}

// NewRunner loads the configuration, connects the databases and builds the
// pipeline components.
func NewRunner() (*Runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := utils.NewLogger(cfg.Verbose)
	logger.Info("Initializing RFM pipeline runner")

	connections, err := config.ConnectDatabases(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting databases: %w", err)
	}

	rfmConfig := rfm.RFMConfig{
		EntityField: cfg.EntityField,
		SourceTable: cfg.SourceTable,
	}

	repository := rfm.NewMySQLScoreRepository(connections.AnalyticsDB, logger)
	if err := repository.CreateScoresTable(); err != nil {
		config.CloseDatabases(connections)
		return nil, err
	}

	runLogRepo := models.NewMySQLRunLogRepository(connections.AnalyticsDB)
	if err := runLogRepo.CreateRunLogTable(); err != nil {
		config.CloseDatabases(connections)
		return nil, err
	}

	exporter := export.NewCSVExporter(cfg.ExportDir, cfg.EntityField, cfg.ArchiveExports, logger)

	return &Runner{
		config:      cfg,
		connections: connections,
		logger:      logger,
		source:      rfm.NewMySQLRecordSource(connections.SourceDB, rfmConfig, logger),
		repository:  repository,
		runLogRepo:  runLogRepo,
		sinks:       []rfm.TableSink{exporter},
		hub:         ws.NewHub(logger),
	}, nil
}

// Close shuts down the runner's connections.
func (r *Runner) Close() {
	r.logger.Info("Shutting down RFM pipeline runner")
	r.hub.Close()
	config.CloseDatabases(r.connections)
}

// ExecutePipeline runs the full pipeline once, journals the run and
// notifies subscribed clients.
func (r *Runner) ExecutePipeline() error {
	runID := uuid.NewString()
	startTime := time.Now()
	r.logger.LogRunStart(runID)

	lastRun, err := r.runLogRepo.GetLastSuccessfulRun()
	if err != nil {
		r.logger.Error("Could not read last successful run: %v. Proceeding with a fresh run.", err)
	} else if lastRun != nil {
		r.logger.Info("Last successful run %s finished %s with %d entities scored",
			lastRun.ID, lastRun.EndTime.Format("2006-01-02 15:04:05"), lastRun.EntitiesScored)
	}

	if err := r.runLogRepo.CreateEntry(runID, startTime); err != nil {
		r.logger.Error("Could not journal run start: %v", err)
		return err
	}

	rfmConfig := rfm.RFMConfig{
		EntityField: r.config.EntityField,
		SourceTable: r.config.SourceTable,
	}

	result, err := rfm.RunWithCustomConfig(r.source, r.repository, r.sinks, r.logger, rfmConfig)
	endTime := time.Now()
	if err != nil {
		r.logger.Error("Pipeline run %s failed: %v", runID, err)
		if jerr := r.runLogRepo.MarkFailure(runID, endTime, err.Error()); jerr != nil {
			r.logger.Error("Could not journal run failure: %v", jerr)
		}
		r.hub.Broadcast(ws.RunNotice{
			RunID:           runID,
			Status:          models.RunStatusFailed,
			DurationSeconds: endTime.Sub(startTime).Seconds(),
			FinishedAt:      endTime,
		})
		return err
	}

	if err := r.runLogRepo.MarkSuccess(runID, endTime, result.RecordCount, len(result.Rows)); err != nil {
		r.logger.Error("Could not journal run success: %v", err)
	}

	r.hub.Broadcast(ws.RunNotice{
		RunID:            runID,
		Status:           models.RunStatusSuccess,
		RecordsProcessed: result.RecordCount,
		EntitiesScored:   len(result.Rows),
		DurationSeconds:  endTime.Sub(startTime).Seconds(),
		FinishedAt:       endTime,
	})

	r.logger.LogRunComplete(startTime, result.RecordCount, len(result.Rows))
	return nil
}

// StartScheduler re-runs the pipeline on the configured interval until the
// context is cancelled.
func (r *Runner) StartScheduler(ctx context.Context) {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Starting pipeline scheduler with interval %v", r.config.RunInterval)

	// SingletonMode keeps a slow run from overlapping with the next tick.
	_, err := scheduler.Every(r.config.RunInterval).SingletonMode().Do(func() {
		r.logger.Info("Scheduled pipeline run")
		if err := r.ExecutePipeline(); err != nil {
			r.logger.Error("Scheduled pipeline run failed: %v", err)
		}
	})
	if err != nil {
		r.logger.Error("Could not configure scheduler: %v", err)
		return
	}

	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	r.logger.Info("Pipeline scheduler stopped")
}

// StartAPI serves the results API and websocket endpoint until the context
// is cancelled.
func (r *Runner) StartAPI(ctx context.Context) {
	router := mux.NewRouter()
	routes.SetupRoutes(router, r.repository, r.runLogRepo, r.hub)

	server := &http.Server{
		Addr:    r.config.HTTPAddr,
		Handler: router,
	}

	go func() {
		r.logger.Info("Results API listening on %s", r.config.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("API server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("API server shutdown error: %v", err)
	}
	r.logger.Info("Results API stopped")
}

// RunOnce executes a single pipeline run.
func RunOnce() {
	runner, err := NewRunner()
	if err != nil {
		log.Fatalf("Could not create pipeline runner: %v", err)
	}
	defer runner.Close()

	if err := runner.ExecutePipeline(); err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}
}

// RunScheduled executes pipeline runs on the configured interval until a
// termination signal arrives.
func RunScheduled() {
	runner, err := NewRunner()
	if err != nil {
		log.Fatalf("Could not create pipeline runner: %v", err)
	}
	defer runner.Close()

	ctx := signalContext()
	runner.StartScheduler(ctx)
}

// RunServe combines scheduled runs with the results API and run
// notifications.
func RunServe() {
	runner, err := NewRunner()
	if err != nil {
		log.Fatalf("Could not create pipeline runner: %v", err)
	}
	defer runner.Close()

	ctx := signalContext()

	go runner.StartScheduler(ctx)
	runner.StartAPI(ctx)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		log.Println("Termination signal received, stopping pipeline runner...")
		cancel()
	}()

	return ctx
}

func main() {
	modePtr := flag.String("mode", "once", "Run mode: once, scheduled or serve")
	flag.Parse()

	log.Println("Starting RFM pipeline runner in mode:", *modePtr)

	switch *modePtr {
	case "once":
		RunOnce()
	case "scheduled":
		RunScheduled()
	case "serve":
		RunServe()
	default:
		log.Println("Unknown mode:", *modePtr)
		log.Println("Available modes: once, scheduled, serve")
		os.Exit(1)
	}

	log.Println("RFM pipeline runner finished")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/loan-tracker/internal/config"
	"github.com/segyhp/loan-tracker/internal/lock"
	"github.com/segyhp/loan-tracker/internal/metrics"
	"github.com/segyhp/loan-tracker/internal/repository"
	"github.com/segyhp/loan-tracker/internal/service"
	"github.com/segyhp/loan-tracker/pkg/logger"
)

const jobTimeout = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.NewBootstrap().Fatal("failed to load configuration", zap.Error(err))
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)
	log := logger.NewZapAdapter(zapLogger).WithFields(map[string]interface{}{"component": "scheduler"})

	log.Info("starting loan scheduler", nil)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanService := service.NewLoanService(
		repository.NewLoanRepository(db),
		repository.NewPaymentRepository(db),
		lock.NewRedisLocker(redisClient, cfg.Business.PaymentLockTTL, log),
		cfg,
		log,
	)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.GetSchedulerLocation()))

	// Schedule tasks
	if err := setupCronJobs(c, cfg, loanService, log); err != nil {
		zapLogger.Fatal("failed to schedule jobs", zap.Error(err))
	}

	// Expose job metrics; the overdue gauges live in this process
	metricsServer := &http.Server{Addr: cfg.Scheduler.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server stopped", nil)
		}
	}()

	// Start the scheduler
	c.Start()
	log.Info("scheduler started", map[string]interface{}{
		"overdue_spec":  cfg.Scheduler.OverdueSpec,
		"reminder_spec": cfg.Scheduler.ReminderSpec,
		"timezone":      cfg.Scheduler.Timezone,
	})

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler", nil)
	<-c.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(ctx)

	log.Info("scheduler stopped", nil)
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loanService *service.LoanService, log logger.Logger) error {
	// Daily sweep of overdue installments (midnight by default)
	_, err := c.AddFunc(cfg.Scheduler.OverdueSpec, runJob("overdue_sweep", log, func(ctx context.Context) error {
		_, err := loanService.OverdueReport(ctx, time.Now())
		return err
	}))
	if err != nil {
		return err
	}

	// Daily reminders for installments falling due within the window (9 AM by default)
	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, runJob("payment_reminders", log, func(ctx context.Context) error {
		reminders, err := loanService.UpcomingInstallments(ctx, time.Now(), cfg.Scheduler.ReminderWindow)
		if err != nil {
			return err
		}
		log.Info("payment reminders prepared", map[string]interface{}{"count": len(reminders)})
		return nil
	}))
	if err != nil {
		return err
	}

	log.Info("cron jobs scheduled", nil)
	return nil
}

// runJob wraps a job with a timeout, duration metric and logging.
func runJob(name string, log logger.Logger, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		log.Info("job started", map[string]interface{}{"job": name})

		err := job(ctx)
		duration := time.Since(start)
		metrics.JobDuration.WithLabelValues(name).Observe(duration.Seconds())

		if err != nil {
			log.WithError(err).Error("job failed", map[string]interface{}{"job": name, "duration_ms": duration.Milliseconds()})
			return
		}
		log.Info("job finished", map[string]interface{}{"job": name, "duration_ms": duration.Milliseconds()})
	}
}

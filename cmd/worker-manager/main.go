// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"farmchain-workers/internal/common/auth"
	commonaws "farmchain-workers/internal/common/aws"
	"farmchain-workers/internal/common/camunda"
	"farmchain-workers/internal/common/config"
	"farmchain-workers/internal/common/database"
	"farmchain-workers/internal/common/logger"
	"farmchain-workers/internal/common/observability"
	"farmchain-workers/internal/eligibility"

	// Lead Funnel Workers
	ql "farmchain-workers/internal/workers/lead/qualify-lead"

	// Application Workers
	cas "farmchain-workers/internal/workers/application/count-available-slots"
	ra "farmchain-workers/internal/workers/application/review-application"
	sdn "farmchain-workers/internal/workers/application/send-decision-notification"
	sa "farmchain-workers/internal/workers/application/submit-application"

	// Admin Workers
	asi "farmchain-workers/internal/workers/admin/admin-signin"
	aso "farmchain-workers/internal/workers/admin/admin-signout"
	av "farmchain-workers/internal/workers/admin/admin-verify"

	// Data Access Workers
	qf "farmchain-workers/internal/workers/data-access/query-funnel"
)

// obs is set once in main and consulted by every registered worker through
// the startWorker wrapper.
var obs *observability.Observability

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	// Bootstrap logger; replaced with the configured one once config loads.
	zapLog := logger.New("info", "console")
	defer func() { zapLog.Sync() }()

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	obs = observability.New("farmchain-worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// Admin handlers share the polling connection for broker health checks.
	camundaClient := camunda.FromZeebe(zeebeClient)

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	keycloak := auth.NewKeycloakClient(
		cfg.Auth.Keycloak.URL,
		cfg.Auth.Keycloak.Realm,
		cfg.Auth.Keycloak.ClientID,
		cfg.Auth.Keycloak.ClientSecret,
	)

	var sesClient *commonaws.SESClient
	if cfg.Notifications.Email.Enabled {
		sesClient, err = commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("SES client initialization failed", zap.Error(err))
		}
	}

	var snsClient *commonaws.SNSClient
	if cfg.Notifications.SMS.Enabled {
		snsClient, err = commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("SNS client initialization failed", zap.Error(err))
		}
	}

	zapLog.Info("All external service clients initialized")

	// --- 1. Lead Funnel Workers ---
	if cfg.Workers[ql.TaskType].Enabled {
		rule := eligibility.NewRule(cfg.Eligibility.RuleVariant, cfg.Eligibility.MinAnnualIncome)
		handler := ql.NewHandler(
			&ql.Config{
				Timeout: time.Duration(cfg.Workers[ql.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, rule, log,
		)
		startWorker(zeebeClient, ql.TaskType, cfg.Workers[ql.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Application Workers ---
	if cfg.Workers[sa.TaskType].Enabled {
		handler := sa.NewHandler(
			&sa.Config{
				Timeout: time.Duration(cfg.Workers[sa.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, sa.TaskType, cfg.Workers[sa.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ra.TaskType].Enabled {
		handler := ra.NewHandler(
			&ra.Config{
				Timeout:         time.Duration(cfg.Workers[ra.TaskType].Timeout) * time.Millisecond,
				SlotCeiling:     cfg.Membership.SlotCeiling,
				EnforceCapacity: cfg.Membership.EnforceCapacity,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, ra.TaskType, cfg.Workers[ra.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[cas.TaskType].Enabled {
		handler := cas.NewHandler(
			&cas.Config{
				Timeout:     time.Duration(cfg.Workers[cas.TaskType].Timeout) * time.Millisecond,
				SlotCeiling: cfg.Membership.SlotCeiling,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, cas.TaskType, cfg.Workers[cas.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sdn.TaskType].Enabled {
		handler := sdn.NewHandler(
			&sdn.Config{
				Timeout:      time.Duration(cfg.Workers[sdn.TaskType].Timeout) * time.Millisecond,
				EmailEnabled: cfg.Notifications.Email.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				SMSSenderID:  cfg.Notifications.SMS.DefaultSMSSenderID,
			},
			sesClient, snsClient, log,
		)
		startWorker(zeebeClient, sdn.TaskType, cfg.Workers[sdn.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Admin Workers ---
	if taskType := asi.TaskType; cfg.Workers[taskType].Enabled {
		handler, err := asi.NewHandler(asi.HandlerOptions{
			AppConfig: cfg,
			Camunda:   camundaClient,
			Keycloak:  keycloak,
			DB:        pg.DB,
			Redis:     redis.Client,
			Logger:    log,
		})
		if err != nil {
			zapLog.Fatal("failed to create admin-signin handler", zap.Error(err))
		}
		startWorker(zeebeClient, taskType, cfg.Workers[taskType], handler.Handle, zapLog)
	}

	if taskType := av.TaskType; cfg.Workers[taskType].Enabled {
		handler, err := av.NewHandler(av.HandlerOptions{
			AppConfig: cfg,
			Camunda:   camundaClient,
			Keycloak:  keycloak,
			DB:        pg.DB,
			Redis:     redis.Client,
			Logger:    log,
		})
		if err != nil {
			zapLog.Fatal("failed to create admin-verify handler", zap.Error(err))
		}
		startWorker(zeebeClient, taskType, cfg.Workers[taskType], handler.Handle, zapLog)
	}

	if taskType := aso.TaskType; cfg.Workers[taskType].Enabled {
		handler, err := aso.NewHandler(aso.HandlerOptions{
			AppConfig: cfg,
			Camunda:   camundaClient,
			Keycloak:  keycloak,
			Redis:     redis.Client,
			Logger:    log,
		})
		if err != nil {
			zapLog.Fatal("failed to create admin-signout handler", zap.Error(err))
		}
		startWorker(zeebeClient, taskType, cfg.Workers[taskType], handler.Handle, zapLog)
	}

	// --- 4. Data Access Workers ---
	if cfg.Workers[qf.TaskType].Enabled {
		handler := qf.NewHandler(
			&qf.Config{
				Timeout: time.Duration(cfg.Workers[qf.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, qf.TaskType, cfg.Workers[qf.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "ready"
			code := http.StatusOK
			if err := pg.Ping(r.Context()); err != nil {
				status = "postgres unavailable"
				code = http.StatusServiceUnavailable
			} else if err := redis.Ping(r.Context()); err != nil {
				status = "redis unavailable"
				code = http.StatusServiceUnavailable
			} else if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "zeebe unavailable"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(c worker.JobClient, j entities.Job) {
		start := time.Now()
		handlerFunc(c, j)
		obs.RecordJobProcessed(context.Background(), taskType)
		obs.RecordJobDuration(context.Background(), time.Since(start), taskType)
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}

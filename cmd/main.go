package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	blockSlotHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/block_slot"
	cancelAppointmentHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/get_available_slots"
	getDayScheduleHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/get_day_schedule"
	getSettingsHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/get_settings"
	getUserAppointmentsHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/get_user_appointments"
	listBlockedSlotsHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/list_blocked_slots"
	unblockSlotHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/unblock_slot"
	updateAppointmentStatusHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/update_appointment_status"
	updateSettingsHandler "github.com/avkuzmin/ACP-AppointmentService/internal/api/handlers/update_settings"
	"github.com/avkuzmin/ACP-AppointmentService/internal/api/middleware"
	"github.com/avkuzmin/ACP-AppointmentService/internal/config"
	appointmentRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/appointment"
	auditRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/audit"
	blockedslotRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/blockedslot"
	emailqueueRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/emailqueue"
	ledgerRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/ledger"
	settingsRepo "github.com/avkuzmin/ACP-AppointmentService/internal/infra/storage/settings"
	appointmentsService "github.com/avkuzmin/ACP-AppointmentService/internal/service/appointments"
	blockedslotsService "github.com/avkuzmin/ACP-AppointmentService/internal/service/blockedslots"
	settingsService "github.com/avkuzmin/ACP-AppointmentService/internal/service/settings"
	validationService "github.com/avkuzmin/ACP-AppointmentService/internal/service/validation"
	cancelAppointmentUC "github.com/avkuzmin/ACP-AppointmentService/internal/usecase/cancel_appointment"
	createAppointmentUC "github.com/avkuzmin/ACP-AppointmentService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/avkuzmin/ACP-AppointmentService/internal/usecase/get_available_slots"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/dbmetrics"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/logger"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/metrics"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/simpletxmanager"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/txmanager"
)

// realClock отдаёт системное время сервисам валидации
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting ACP-AppointmentService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		blockedslotRepository *blockedslotRepo.Repository
		ledgerRepository      *ledgerRepo.Repository
		settingsRepository    *settingsRepo.Repository
		emailQueue            *emailqueueRepo.Repository
		auditLog              *auditRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		// Инициализируем репозитории с обёрткой метрик
		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		blockedslotRepository = blockedslotRepo.NewRepository(wrappedDB)
		ledgerRepository = ledgerRepo.NewRepository(wrappedDB)
		settingsRepository = settingsRepo.NewRepository(wrappedDB)
		emailQueue = emailqueueRepo.NewRepository(wrappedDB)
		auditLog = auditRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		// Инициализируем репозитории без метрик
		appointmentRepository = appointmentRepo.NewRepository(db)
		blockedslotRepository = blockedslotRepo.NewRepository(db)
		ledgerRepository = ledgerRepo.NewRepository(db)
		settingsRepository = settingsRepo.NewRepository(db)
		emailQueue = emailqueueRepo.NewRepository(db)
		auditLog = auditRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	validationSvc := validationService.NewService(
		appointmentRepository,
		blockedslotRepository,
		settingsRepository,
		ledgerRepository,
		realClock{},
		log,
	)
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		auditLog,
		log,
	)
	blockedslotsSvc := blockedslotsService.NewService(
		blockedslotRepository,
		auditLog,
		log,
	)
	settingsSvc := settingsService.NewService(
		settingsRepository,
		auditLog,
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		validationSvc,
		ledgerRepository,
		emailQueue,
		auditLog,
		txMgr,
		log,
	)
	cancelAppointmentUseCase := cancelAppointmentUC.NewUseCase(
		appointmentRepository,
		validationSvc,
		ledgerRepository,
		emailQueue,
		auditLog,
		txMgr,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(validationSvc, log)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(cancelAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	getUserAppointments := getUserAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getDaySchedule := getDayScheduleHandler.NewHandler(appointmentsSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	blockSlot := blockSlotHandler.NewHandler(blockedslotsSvc, log)
	listBlockedSlots := listBlockedSlotsHandler.NewHandler(blockedslotsSvc, log)
	unblockSlot := unblockSlotHandler.NewHandler(blockedslotsSvc, log)
	getSettings := getSettingsHandler.NewHandler(settingsSvc, log)
	updateSettings := updateSettingsHandler.NewHandler(settingsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты на дату
	api.HandleFunc("/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Действующие настройки записи
	api.HandleFunc("/settings", getSettings.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи на приём ---
	// Создание записи
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Получение записи по ID
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)

	// Отмена записи
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// История записей пользователя
	protected.HandleFunc("/users/me/appointments", getUserAppointments.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (требуют X-User-Role: admin)
	// ============================================================

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminOnly)

	// Расписание дня
	admin.HandleFunc("/schedule", getDaySchedule.Handle).Methods(http.MethodGet)

	// Смена статуса записи
	admin.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)

	// Блокировки слотов
	admin.HandleFunc("/blocked-slots", blockSlot.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/blocked-slots/period", blockSlot.HandlePeriod).Methods(http.MethodPost)
	admin.HandleFunc("/blocked-slots", listBlockedSlots.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/blocked-slots/{blockId}", unblockSlot.Handle).Methods(http.MethodDelete)

	// Настройки системы
	admin.HandleFunc("/settings", updateSettings.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

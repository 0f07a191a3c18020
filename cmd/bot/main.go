package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"barberbot/internal/api"
	"barberbot/internal/bot"
	"barberbot/internal/config"
	"barberbot/internal/conversation"
	"barberbot/internal/database"
	"barberbot/internal/domain"
	"barberbot/internal/events"
	"barberbot/internal/logging"
	"barberbot/internal/models"
	"barberbot/internal/repository"
	"barberbot/internal/service"
	"barberbot/internal/sheets"
	"barberbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	redisClient, stateService := initStateService(ctx, cfg, &logger)
	defer func() { _ = repository.Close(redisClient) }()

	// Воркер синхронизации Google Sheets работает только при настроенной таблице
	var sheetsWorker *worker.SheetsWorker
	var syncWorker domain.SyncWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker = worker.NewSheetsWorker(db, sheetsService, redisClient, retryPolicy, &logger)
		syncWorker = sheetsWorker
		go sheetsWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()

	appointmentService := service.NewAppointmentService(db, eventBus, syncWorker, &logger)
	userService := service.NewUserService(db, cfg, &logger)
	metrics := bot.NewMetrics()

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, db, cfg.Monitoring.PrometheusEnabled, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	return startBot(ctx, cfg, stateService, eventBus, appointmentService, userService, metrics, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

// initGoogleSheets поднимает зеркало в Google Sheets. Таблица не обязательна:
// без креденшалов бот работает только на SQLite.
func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *sheets.Service {
	if cfg.Google.CredentialsFile == "" || cfg.Google.AppointmentsSpreadsheetID == "" {
		logger.Info().Msg("Google Sheets не настроен, зеркало отключено")
		return nil
	}

	sheetsSvc, err := sheets.NewService(cfg.Google.CredentialsFile, cfg.Google.AppointmentsSpreadsheetID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return sheetsSvc
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primaryRepo := repository.NewRedisStateRepository(redisClient, time.Duration(models.DefaultRedisTTL)*time.Second)
	fallbackRepo := repository.NewMemoryStateRepository(time.Duration(models.DefaultRedisTTL) * time.Second)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	stateService *service.StateService,
	eventBus *events.EventBus,
	appointmentService *service.AppointmentService,
	userService *service.UserService,
	metrics *bot.Metrics,
	logger *zerolog.Logger,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)

	machine := conversation.NewMachine(appointmentService, userService, cfg.Services, cfg.Bot.ContactInfo, logger)

	notifier := bot.NewNotifier(tgService, cfg.Telegram.Channel, cfg.Admins, cfg.Bot.NotifyRPS, metrics, logger)
	notifier.Register(eventBus)

	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService, machine,
		appointmentService, userService, eventBus, metrics, logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.StartReminders(ctx)
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/ai"
	appsvc "github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/app"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/config"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/metrics"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/pkg/pdfextract"
	mysqlClient "github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/platform/mysql"
	rabbitmqClient "github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/platform/rabbitmq"
	redisClient "github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/platform/redis"
	s3Client "github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/platform/s3"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/repository"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/session"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/storage"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/worker"
)

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	ExchangePublisher *rabbitmqClient.ExchangePublisher
	ExchangeWorker    *worker.ExchangePersistWorker

	Documents *appsvc.DocumentService
	QA        *appsvc.QAService

	StartedAt time.Time
}

// New connects every configured dependency and wires the services. Redis and
// RabbitMQ are only dialled when the config selects them.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		Config:    cfg,
		Logger:    log,
		Metrics:   metrics.New(),
		StartedAt: time.Now(),
	}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	mysqlDB, err := mysqlClient.New(ctx, mysqlClient.Options{
		DSN:     cfg.MySQLDSN(),
		Verbose: !cfg.IsProduction(),
	})
	if err != nil {
		return err
	}
	a.MySQL = mysqlDB
	if err := mysqlDB.AutoMigrate(&model.Document{}, &model.Exchange{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	sessions, err := a.sessionStore(ctx)
	if err != nil {
		return err
	}
	blobs, err := a.blobStore(ctx)
	if err != nil {
		return err
	}

	documentRepo := repository.NewDocumentRepository(mysqlDB)
	exchangeRepo := repository.NewExchangeRepository(mysqlDB)

	var publisher appsvc.ExchangePublisher
	if cfg.RabbitMQ.URL != "" {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.ExchangeQueue)
		if err != nil {
			return err
		}
		a.MQConn = mqConn
		a.ExchangePublisher = rabbitmqClient.NewExchangePublisher(mqConn, cfg.RabbitMQ.ExchangeQueue)
		publisher = a.ExchangePublisher

		a.ExchangeWorker = worker.NewExchangePersistWorker(mqConn, exchangeRepo, cfg.RabbitMQ.ExchangeQueue, a.Logger)
		if err := a.ExchangeWorker.Start(ctx); err != nil {
			return fmt.Errorf("start exchange worker failed: %w", err)
		}
	}

	extractor := pdfextract.New(a.recognizer(), a.Logger)
	llm := ai.NewOpenAIClient(ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})

	a.Documents = appsvc.NewDocumentService(documentRepo, blobs, extractor, cfg.Upload.MaxBytes, a.Logger, a.Metrics)
	a.QA = appsvc.NewQAService(
		sessions,
		appsvc.NewContextAssembler(documentRepo, a.Logger),
		appsvc.NewAnswerEngine(llm, a.Logger, a.Metrics),
		publisher,
		a.Logger,
		a.Metrics,
	)
	return nil
}

func (a *App) sessionStore(ctx context.Context) (session.Store, error) {
	if a.Config.Session.Backend != config.SessionBackendRedis {
		return session.NewMemoryStore(), nil
	}
	redisCli, err := redisClient.New(ctx, a.Config.Redis.Addr, a.Config.Redis.Password, a.Config.Redis.DB)
	if err != nil {
		return nil, err
	}
	a.Redis = redisCli
	return session.NewRedisStore(redisCli, a.Config.Session.KeyPrefix), nil
}

func (a *App) blobStore(ctx context.Context) (storage.BlobStore, error) {
	cfg := a.Config.Storage
	if cfg.Backend != config.StorageBackendS3 {
		return storage.NewLocalBlobStore(cfg.LocalDir)
	}
	client, err := s3Client.New(ctx, s3Client.Options{
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		PathStyle: cfg.PathStyle,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewS3BlobStore(client, cfg.Bucket, cfg.Region, cfg.Endpoint), nil
}

// recognizer returns nil when OCR is off or its binaries are missing, which
// leaves image-only pages empty.
func (a *App) recognizer() pdfextract.Recognizer {
	cfg := a.Config.OCR
	if !cfg.Enabled {
		return nil
	}
	ocr := pdfextract.NewTesseractOCR(pdfextract.TesseractConfig{
		TesseractPath: cfg.TesseractPath,
		PdftoppmPath:  cfg.PdftoppmPath,
		Language:      cfg.Language,
		DPI:           cfg.DPI,
	})
	if !ocr.Available() {
		a.Logger.Warn("ocr disabled, tesseract or pdftoppm not found",
			zap.String("tesseract", cfg.TesseractPath),
			zap.String("pdftoppm", cfg.PdftoppmPath),
		)
		return nil
	}
	return ocr
}

func (a *App) Close() error {
	var errs []error
	if a.ExchangeWorker != nil {
		a.ExchangeWorker.Close()
	}
	if a.ExchangePublisher != nil {
		if err := a.ExchangePublisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

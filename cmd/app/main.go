package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultStaleAfter = 90 * time.Second

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := gorm.Open(postgresdriver.Open(dsn(configs)), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := gormDB.AutoMigrate(&orderrepo.OrderDTO{}, &driverrepo.DriverDTO{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	app := cmd.NewCompositionRoot(configs, gormDB, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Mirror().Start(ctx)

	jobManager := app.CreateJobManager(logger)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()
	defer app.EventBroker().Close()

	startWebServer(ctx, &app, configs)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:           goDotEnvVariable("HTTP_PORT"),
		DBHost:             goDotEnvVariable("DB_HOST"),
		DBPort:             goDotEnvVariable("DB_PORT"),
		DBUser:             goDotEnvVariable("DB_USER"),
		DBPassword:         goDotEnvVariable("DB_PASSWORD"),
		DBName:             goDotEnvVariable("DB_NAME"),
		DBSslMode:          goDotEnvVariable("DB_SSLMODE"),
		AmqpURL:            goDotEnvVariable("AMQP_URL"),
		AmqpExchange:       goDotEnvVariable("AMQP_EXCHANGE"),
		JWTSecret:          goDotEnvVariable("JWT_SECRET"),
		PositionStaleAfter: staleAfter(goDotEnvVariable("POSITION_STALE_AFTER")),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func staleAfter(raw string) time.Duration {
	if raw == "" {
		return defaultStaleAfter
	}
	window, err := time.ParseDuration(raw)
	if err != nil || window <= 0 {
		log.Fatalf("Invalid POSITION_STALE_AFTER: %q", raw)
	}
	return window
}

func dsn(configs cmd.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode,
	)
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config) {
	e := echo.New()
	e.Use(httpadapter.MetricsMiddleware())
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "Healthy")
	})

	server := httpadapter.NewServer(
		app.CreateCreateOrderCommandHandler(),
		app.CreateAssignDriverCommandHandler(),
		app.CreateAcceptOrderCommandHandler(),
		app.CreateCompleteOrderCommandHandler(),
		app.CreateRegisterDriverCommandHandler(),
		app.CreateReportPositionCommandHandler(),
		app.CreateListOrdersQueryHandler(),
		app.CreateGetAllDriversQueryHandler(),
		app.CreateGetDriverPositionQueryHandler(),
		app.CreateGetDriverETAQueryHandler(),
		app.EventBroker(),
	)
	server.RegisterRoutes(e, []byte(configs.JWTSecret))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil {
		e.Logger.Info("Server stopped: ", err)
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"tableside/cmd"
	adapterhttp "tableside/internal/adapters/in/http"
	"tableside/internal/adapters/out/amqpbridge"
	"tableside/internal/adapters/out/kafkabridge"
	"tableside/internal/adapters/out/postgres/orderrepo"
	"tableside/internal/adapters/out/realtime"
	"tableside/internal/adapters/out/snapshotcache"
	"tableside/internal/core/domain/services"
	"tableside/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	backlogSchedule = "0 * * * * *" // every minute
	backlogMaxAge   = 10 * time.Minute
	snapshotTTL     = 12 * time.Hour
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := gorm.Open(gorm_postgres.Open(postgresDSN(configs)), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	if err = gormDB.AutoMigrate(&orderrepo.OrderDTO{}); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	registry := realtime.NewRegistry(logger)
	app := cmd.NewCompositionRoot(configs, gormDB, registry)

	cache := wireBridges(configs, registry, logger)

	backlogMonitor := jobs.NewBacklogMonitorJob(
		app.CreateGetActiveOrdersQueryHandler(), backlogSchedule, backlogMaxAge, logger)
	jobManager := jobs.NewJobManager(backlogMonitor)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&app, cache, configs.HTTPPort)
}

// wireBridges subscribes the configured external relays to the registry and
// returns the snapshot cache if Redis is configured, nil otherwise. Each
// bridge is optional so the service degrades to in-process fan-out only.
func wireBridges(configs cmd.Config, registry *realtime.Registry, logger *slog.Logger) *snapshotcache.Cache {
	if configs.AmqpURL != "" {
		bridge, err := amqpbridge.Dial(configs.AmqpURL, configs.AmqpExchange)
		if err != nil {
			log.Fatalf("Error connecting to RabbitMQ: %v", err)
		}
		registry.Subscribe("*", bridge)
	}

	if configs.KafkaHost != "" {
		bridge, err := kafkabridge.New(strings.Split(configs.KafkaHost, ","), configs.KafkaTopic, logger)
		if err != nil {
			log.Fatalf("Error connecting to Kafka: %v", err)
		}
		// The management channel sees every order event, so one subscription
		// captures the full stream for analytics.
		registry.Subscribe(services.ChannelManagement, bridge)
	}

	if configs.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPassword,
	})
	cache := snapshotcache.New(client, snapshotTTL)
	registry.Subscribe("*", cache)
	return cache
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:      goDotEnvVariable("HTTP_PORT"),
		DBHost:        goDotEnvVariable("DB_HOST"),
		DBPort:        goDotEnvVariable("DB_PORT"),
		DBUser:        goDotEnvVariable("DB_USER"),
		DBPassword:    goDotEnvVariable("DB_PASSWORD"),
		DBName:        goDotEnvVariable("DB_NAME"),
		DBSslMode:     goDotEnvVariable("DB_SSLMODE"),
		AmqpURL:       goDotEnvVariable("AMQP_URL"),
		AmqpExchange:  goDotEnvVariable("AMQP_EXCHANGE"),
		KafkaHost:     goDotEnvVariable("KAFKA_HOST"),
		KafkaTopic:    goDotEnvVariable("KAFKA_TOPIC"),
		RedisAddr:     goDotEnvVariable("REDIS_ADDR"),
		RedisPassword: goDotEnvVariable("REDIS_PASSWORD"),
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

func postgresDSN(configs cmd.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)
}

func startWebServer(app *cmd.CompositionRoot, cache *snapshotcache.Cache, port string) {
	e := echo.New()

	server := adapterhttp.NewServer(
		app.CreatePlaceOrderCommandHandler(),
		app.CreateChangeOrderStatusCommandHandler(),
		app.CreateGetActiveOrdersQueryHandler(),
		app.CreateGetTableOrdersQueryHandler(),
		app.OrderRepository(),
	)
	server.RegisterRoutes(e)

	streams := adapterhttp.NewStreamServer(app.Registry(), cache)
	streams.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}

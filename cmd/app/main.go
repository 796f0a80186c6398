package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ordering/cmd"
	"ordering/internal/adapters/out/postgres/orderrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	configs := getConfigs()

	gormDB := mustConnectDB(configs)
	if err := gormDB.AutoMigrate(&orderrepo.OrderDTO{}); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	root, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}

	jobManager, err := root.CreateJobManager()
	if err != nil {
		log.Fatalf("Error building jobs: %v", err)
	}
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(root, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		TaxRatePPM:        goDotEnvInt64("TAX_RATE_PPM"),
		ServiceFeeRatePPM: goDotEnvInt64("SERVICE_FEE_RATE_PPM"),

		RestaurantName:    goDotEnvVariable("RESTAURANT_NAME"),
		RestaurantPhone:   goDotEnvVariable("RESTAURANT_PHONE"),
		RestaurantAddress: goDotEnvVariable("RESTAURANT_ADDRESS"),

		SquareAPIURL:      goDotEnvVariable("SQUARE_API_URL"),
		SquareAccessToken: goDotEnvVariable("SQUARE_ACCESS_TOKEN"),
		SquareLocationID:  goDotEnvVariable("SQUARE_LOCATION_ID"),

		ToastAPIURL:       goDotEnvVariable("TOAST_API_URL"),
		ToastAPIKey:       goDotEnvVariable("TOAST_API_KEY"),
		ToastRestaurantID: goDotEnvVariable("TOAST_RESTAURANT_ID"),

		CloverAPIURL:      goDotEnvVariable("CLOVER_API_URL"),
		CloverAccessToken: goDotEnvVariable("CLOVER_ACCESS_TOKEN"),
		CloverMerchantID:  goDotEnvVariable("CLOVER_MERCHANT_ID"),

		DoorDashAPIURL:      goDotEnvVariable("DOORDASH_API_URL"),
		DoorDashAccessToken: goDotEnvVariable("DOORDASH_ACCESS_TOKEN"),

		UberAPIURL:      goDotEnvVariable("UBER_API_URL"),
		UberCustomerID:  goDotEnvVariable("UBER_CUSTOMER_ID"),
		UberAccessToken: goDotEnvVariable("UBER_ACCESS_TOKEN"),

		CourierProvider:   goDotEnvVariable("COURIER_PROVIDER"),
		SimulateProviders: goDotEnvVariable("SIMULATE_PROVIDERS") == "true",
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

func goDotEnvInt64(key string) int64 {
	raw := goDotEnvVariable(key)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return value
}

func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword,
		configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	return gormDB
}

func startWebServer(root *cmd.CompositionRoot, port string) {
	server, err := root.CreateHTTPServer()
	if err != nil {
		log.Fatalf("Error building HTTP server: %v", err)
	}

	e := echo.New()
	server.RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil {
			e.Logger.Info("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}

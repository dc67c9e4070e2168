package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"liyu1981.xyz/fleet-dashboard-service/pkg/cache"
	"liyu1981.xyz/fleet-dashboard-service/pkg/common"
	"liyu1981.xyz/fleet-dashboard-service/pkg/fleet"
	fleetHttp "liyu1981.xyz/fleet-dashboard-service/pkg/http"
	"liyu1981.xyz/fleet-dashboard-service/pkg/store"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	csvPath := common.GetEnvOrDefault(common.EnvKeyFleetCSVPath, "device_metrics.csv")

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyFleetHttpHostPort))

	windowSeconds := int64(cache.DefaultWindow / time.Second)
	if raw := os.Getenv(common.EnvKeyFleetCacheWindowSeconds); raw != "" {
		if windowSeconds, err = strconv.ParseInt(raw, 10, 64); err != nil || windowSeconds <= 0 {
			log.Fatal("Invalid FLEET_CACHE_WINDOW_SECONDS, should be a positive int value")
		}
	}

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyFleetDefaultRate), 64); err != nil {
		log.Fatal("Invalid FLEET_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyFleetDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid FLEET_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	logger := common.GetLogger()

	csvStore := store.NewCSVStore(csvPath)
	loader := cache.NewLoader(csvStore,
		cache.WithWindow(time.Duration(windowSeconds)*time.Second))

	// the first load is the startup gate: a missing file or a bad header
	// refuses to start, later reloads fall back to the cached snapshot
	records, err := loader.Load()
	if err != nil {
		if errors.Is(err, store.ErrNotExist) {
			log.Fatalf("Metrics file %s not found. Run the simulator first to generate initial history.", csvPath)
		}
		log.Fatalf("Failed to load metrics file %s: %v", csvPath, err)
	}

	logger.Info("Loaded metrics file",
		zap.String("path", csvPath), zap.Int("records", len(records)))

	fleetCore := fleet.Fleet{
		Loader: loader,
	}
	fleetCore.WithServices(fleet.ServiceOpts{
		Query: fleetCore.GetIQuery(),
	})

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	logger.Info("Starting HTTP server on port " + httpHostPort)
	rs := &fleetHttp.RestfulServer{
		Server:           gin.Default(),
		Fleet:            &fleetCore,
		RateLimiterStore: fleet.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst)),
		zap.String("cache_window", fmt.Sprintf("%ds", windowSeconds)))

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}

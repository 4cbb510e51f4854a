package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"time"

	"pokefinder-cloud/internal/api"
	"pokefinder-cloud/internal/audit"
	catalogapp "pokefinder-cloud/internal/catalog/application"
	"pokefinder-cloud/internal/catalog/infrastructure/pokeapi"
	catalogrepo "pokefinder-cloud/internal/catalog/infrastructure/postgres"
	cataloghttp "pokefinder-cloud/internal/catalog/interfaces/http"
	"pokefinder-cloud/internal/observability/metrics"
	telemetryapp "pokefinder-cloud/internal/telemetry/application"
	"pokefinder-cloud/internal/telemetry/infrastructure/openweather"
	telemetryws "pokefinder-cloud/internal/telemetry/interfaces/ws"
	usersapp "pokefinder-cloud/internal/users/application"
	usersrepo "pokefinder-cloud/internal/users/infrastructure/postgres"
	usershttp "pokefinder-cloud/internal/users/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	userRepo := usersrepo.NewUserRepository(db)
	revokedTokens := usersrepo.NewRevokedTokenRepository(db)
	userService, err := usersapp.NewService(userRepo, revokedTokens, []byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("users service error: %v", err)
	}
	userHandler, err := usershttp.NewHandler(userService, []byte(cfg.JWTSecret), logger)
	if err != nil {
		logger.Fatalf("users handler error: %v", err)
	}

	pokemonRepo := catalogrepo.NewPokemonRepository(db)
	favoriteRepo := catalogrepo.NewFavoriteRepository(db)
	stream := cataloghttp.NewStream(logger)

	catalogService, err := catalogapp.NewService(pokemonRepo, pokemonRepo, favoriteRepo, stream, logger)
	if err != nil {
		logger.Fatalf("catalog service error: %v", err)
	}

	species, err := pokeapi.NewClient(cfg.PokeAPIBaseURL)
	if err != nil {
		logger.Fatalf("pokeapi client error: %v", err)
	}
	regions := catalogapp.DefaultRegions()
	if cfg.RegionsFile != "" {
		regions, err = catalogapp.LoadRegions(cfg.RegionsFile)
		if err != nil {
			logger.Fatalf("load regions error: %v", err)
		}
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	importer, err := catalogapp.NewImporter(pokemonRepo, species, regions, stream, rng, logger)
	if err != nil {
		logger.Fatalf("catalog importer error: %v", err)
	}
	catalogHandler, err := cataloghttp.NewHandler(catalogService, importer, stream, logger)
	if err != nil {
		logger.Fatalf("catalog handler error: %v", err)
	}

	telemetryCfg, err := telemetryapp.LoadConfig()
	if err != nil {
		logger.Fatalf("telemetry config error: %v", err)
	}
	var weather telemetryapp.WeatherProvider
	if telemetryCfg.WeatherAPIKey != "" {
		weather, err = openweather.NewClient(telemetryCfg.WeatherBaseURL, telemetryCfg.WeatherAPIKey)
		if err != nil {
			logger.Fatalf("weather client error: %v", err)
		}
	} else {
		logger.Printf("OPENWEATHER_API_KEY not set, energy samples use base level")
	}
	routes := telemetryapp.NewPolylineRoutes(regions.FirstHalf.Points, telemetryCfg.RouteProximityKm)
	simulator, err := telemetryapp.NewSimulator(weather, routes, telemetryCfg, rng, logger)
	if err != nil {
		logger.Fatalf("telemetry simulator error: %v", err)
	}
	energyHandler, err := telemetryws.NewHandler(catalogService, simulator, metrics.LiveSessionGauge{}, logger)
	if err != nil {
		logger.Fatalf("energy handler error: %v", err)
	}

	go pruneRevokedTokens(revokedTokens, logger)

	handler, err := api.NewRouter(api.Deps{
		Users:      userHandler,
		Catalog:    catalogHandler,
		Telemetry:  energyHandler,
		AuthSecret: []byte(cfg.JWTSecret),
		Revoker:    revokedTokens,
		Audit:      auditRepo,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatalf("router error: %v", err)
	}

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(handler, logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func pruneRevokedTokens(repo *usersrepo.RevokedTokenRepository, logger *log.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := repo.Prune(ctx, time.Now().UTC()); err != nil {
			logger.Printf("prune revoked tokens: %v", err)
		}
		cancel()
	}
}

type config struct {
	DatabaseURL    string
	HTTPAddr       string
	JWTSecret      string
	TokenTTL       time.Duration
	PokeAPIBaseURL string
	RegionsFile    string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:    getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:      getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		TokenTTL:       getenvDuration("TOKEN_TTL", 24*time.Hour),
		PokeAPIBaseURL: getenvDefault("POKEAPI_BASE_URL", ""),
		RegionsFile:    getenvDefault("REGIONS_FILE", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working through the logging wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

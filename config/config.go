package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultPosterFolder = "posters"
	DefaultFrameFolder  = "frames"
)

const (
	defaultUploadMaxSize      = 1920
	defaultRecentFramesLimit  = 12
	defaultReconIntervalSecs  = 300
	defaultJWTExpirationHours = 24
)

type Config struct {
	// database path
	DatabasePath string

	// directory for small local state (visibility flag file)
	DataDirectory string

	// image host configuration
	UploadEndpoint  string // full upload URL, e.g. https://api.cloudinary.com/v1_1/<cloud>/image/upload
	UploadPreset    string // fixed unsigned upload preset sent with every file
	PosterFolder    string // target folder for film posters
	FrameFolder     string // target folder for frames
	DeliverySegment string // transformation segment spliced into delivery URLs, e.g. "q_auto,f_auto"

	// upload pre-processing
	UploadMaxSize int // longest side in pixels before re-encoding

	// listing defaults
	RecentFramesLimit int

	// auth
	JWTSecret          string
	JWTExpirationHours int
	AdminUsername      string
	AdminPassword      string

	// reconciliation worker
	ReconIntervalSecs int

	// CORS
	AllowedOrigins []string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "gallery.db")

	dataDir := getEnvOrDefault("DATA_DIRECTORY", filepath.Join(".", "data"))
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for data directory '%s': %w", dataDir, err)
	}

	uploadEndpoint := os.Getenv("UPLOAD_ENDPOINT")
	if uploadEndpoint == "" {
		cloudName := getEnvOrDefault("CLOUDINARY_CLOUD_NAME", "demo")
		uploadEndpoint = fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cloudName)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	origins := strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := Config{
		DatabasePath:       dbPath,
		DataDirectory:      absDataDir,
		UploadEndpoint:     uploadEndpoint,
		UploadPreset:       getEnvOrDefault("UPLOAD_PRESET", "film_lovers_preset"),
		PosterFolder:       getEnvOrDefault("POSTER_FOLDER", DefaultPosterFolder),
		FrameFolder:        getEnvOrDefault("FRAME_FOLDER", DefaultFrameFolder),
		DeliverySegment:    getEnvOrDefault("DELIVERY_SEGMENT", "q_auto,f_auto"),
		UploadMaxSize:      getEnvIntOrDefault("UPLOAD_MAX_SIZE", defaultUploadMaxSize),
		RecentFramesLimit:  getEnvIntOrDefault("RECENT_FRAMES_LIMIT", defaultRecentFramesLimit),
		JWTSecret:          jwtSecret,
		JWTExpirationHours: getEnvIntOrDefault("JWT_EXPIRATION_HOURS", defaultJWTExpirationHours),
		AdminUsername:      getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		ReconIntervalSecs:  getEnvIntOrDefault("RECON_INTERVAL_SECONDS", defaultReconIntervalSecs),
		AllowedOrigins:     origins,
	}

	return cfg, nil
}

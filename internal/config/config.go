package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Services ServiceConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
	ArchiveTopic       string
}

type DatabaseConfig struct {
	Connection string
}

// ServiceConfig points at the model-serving sidecars.
type ServiceConfig struct {
	PredictorBaseURL  string
	OcrBaseURL        string
	TranslatorBaseURL string
	MovieCatalogPath  string
}

type APIKeys struct {
	TMDB       string
	Translator string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ArchiveTopic:       getEnv("ARCHIVE_TURN_TOPIC_NAME", "ARCHIVE_CHAT_TURN"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Services: ServiceConfig{
			PredictorBaseURL:  getEnv("PREDICTOR_BASE_URL", "http://localhost:8501"),
			OcrBaseURL:        getEnv("OCR_BASE_URL", "http://localhost:8502"),
			TranslatorBaseURL: getEnv("TRANSLATOR_BASE_URL", ""),
			MovieCatalogPath:  getEnv("MOVIE_CATALOG_PATH", "data/movie_catalog.json"),
		},
		Keys: APIKeys{
			TMDB:       getEnv("TMDB_API_KEY", ""),
			Translator: getEnv("TRANSLATOR_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

package app

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/utils"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string

	MemberDatabaseURL   string
	CalendarDatabaseURL string
	ConnectMongoURI     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventChannel  string

	ServiceJWTSecret string
	ServiceJWTIssuer string
	CORSOrigins      []string

	NoteAuthorID          uuid.UUID
	WriteMemberNotes      bool
	AggregatorConcurrency int

	IntakeEnabled bool
	MetricsAddr   string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        utils.GetEnv("PORT", "8080", log),
		ServiceName: utils.GetEnv("SERVICE_NAME", "vecapp-ai-followup", log),
		Environment: utils.GetEnv("ENVIRONMENT", "dev", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),

		MemberDatabaseURL:   utils.GetEnv("MEMBER_DATABASE_URL", "", log),
		CalendarDatabaseURL: utils.GetEnv("CALENDAR_DATABASE_URL", "", log),
		ConnectMongoURI:     utils.GetEnv("CONNECT_MONGO_URI", "", log),

		RedisAddr:     utils.GetEnv("REDIS_ADDR", "", log),
		RedisPassword: utils.GetEnv("REDIS_PASSWORD", "", log),
		RedisDB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
		EventChannel:  utils.GetEnv("NOTE_EVENTS_CHANNEL", "", log),

		ServiceJWTSecret: utils.GetEnv("SERVICE_JWT_SECRET", "", log),
		ServiceJWTIssuer: utils.GetEnv("SERVICE_JWT_ISSUER", "", log),

		WriteMemberNotes:      utils.GetEnvAsBool("WRITE_MEMBER_NOTES", true, log),
		AggregatorConcurrency: utils.GetEnvAsInt("FOLLOWUP_AGGREGATE_CONCURRENCY", 8, log),

		IntakeEnabled: utils.GetEnvAsBool("INTAKE_ENABLED", false, log),
		MetricsAddr:   utils.GetEnv("METRICS_ADDR", "", log),
	}
	if raw := utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log); raw != "" {
		cfg.CORSOrigins = strings.Split(raw, ",")
	}
	if raw := utils.GetEnv("AI_NOTE_AUTHOR_ID", "", log); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			log.Warn("Ignoring invalid AI_NOTE_AUTHOR_ID", "error", err)
		} else {
			cfg.NoteAuthorID = id
		}
	}
	return cfg
}

package config

import (
	"os"
	"strconv"
)

// Config carries every external setting the service needs. It is built once
// in main and handed to the components that use it; nothing reads the
// environment after startup.
type Config struct {
	ListenAddr string

	DBDSN         string
	DBAutoMigrate bool

	DriveRootFolder    string
	ServiceAccountFile string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	MailTo       string
	MailBcc      string

	PDFDisabled bool

	LogLevel string
	LogFile  string
}

func Load() *Config {
	return &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8085"),
		DBDSN:              getEnv("DB_DSN", ""),
		DBAutoMigrate:      getBool("DB_AUTO_MIGRATE", true),
		DriveRootFolder:    getEnv("DRIVE_ROOT_FOLDER_ID", ""),
		ServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "google-service-account.json"),
		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:           getEnv("SMTP_FROM", ""),
		MailTo:             getEnv("MAIL_TO", ""),
		MailBcc:            getEnv("MAIL_BCC", ""),
		PDFDisabled:        getBool("PDF_DISABLED", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	switch val {
	case "false", "0", "no":
		return false
	}
	return true
}

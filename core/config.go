package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string // DEV (default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		WorkDir  string

		SecretKey        string
		FrontendBaseURL  string
		defaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		Server    ServerConfig
		Database  DatabaseConfig
		Admission AdmissionConfig
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// AdmissionConfig holds the knobs of the application lifecycle core.
	AdmissionConfig struct {
		// MaxUploadBytes caps the declared size of an attached document.
		MaxUploadBytes int64
		// AllowedDocumentTypes maps a document-type key to the content
		// types accepted for it. Keys are lowercase; document-type
		// matching is case-insensitive.
		AllowedDocumentTypes map[string][]string
		// TerminalStatuses admit no further transitions.
		TerminalStatuses []string
		// TimeZone used when formatting exam schedules in notifications.
		TimeZone string
		// DeleteReplacedUploads triggers best-effort blob deletion when a
		// document is re-uploaded over an existing key. Off by default:
		// replaced uploads are retained for audit.
		DeleteReplacedUploads bool
		// MediaRoot is where the filesystem blob store writes uploads.
		MediaRoot string
	}
)

func (c *Config) IsProd() bool { return c.Env == "PROD" }

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Udahili")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w3lc0me-t0-the-@dmission-0ffice!ch@nge-me")
	conf.SetDefault("defaultFromEmail", "admissions@localhost")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "0.0.0.0:8000")
	conf.SetDefault("server.debugHost", "0.0.0.0:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "udahili")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.user", "udahili")
	conf.SetDefault("database.password", "udahili")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("admission.maxUploadBytes", int64(5<<20)) // 5 MiB
	conf.SetDefault("admission.terminalStatuses", []string{"approved", "rejected"})
	conf.SetDefault("admission.timeZone", "Asia/Manila")
	conf.SetDefault("admission.deleteReplacedUploads", false)
	conf.SetDefault("admission.mediaRoot", filepath.Join(Getwd(), "media"))
	pdfOrImage := []string{"application/pdf", "image/jpeg", "image/png"}
	conf.SetDefault("admission.allowedDocumentTypes", map[string][]string{
		"birthCertificate":     pdfOrImage,
		"reportCard":           pdfOrImage,
		"goodMoralCertificate": pdfOrImage,
		"idPhoto":              {"image/jpeg", "image/png"},
	})

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		AppName:          conf.GetString("appName"),
		Build:            conf.GetString("build"),
		WorkDir:          Getwd(),
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			DebugHost:          conf.GetString("server.debugHost"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Admission: AdmissionConfig{
			MaxUploadBytes:        conf.GetInt64("admission.maxUploadBytes"),
			AllowedDocumentTypes:  lowerKeys(conf.GetStringMapStringSlice("admission.allowedDocumentTypes")),
			TerminalStatuses:      conf.GetStringSlice("admission.terminalStatuses"),
			TimeZone:              conf.GetString("admission.timeZone"),
			DeleteReplacedUploads: conf.GetBool("admission.deleteReplacedUploads"),
			MediaRoot:             conf.GetString("admission.mediaRoot"),
		},
	}
}

// lowerKeys normalizes map keys to lowercase. viper only lowercases keys of
// map[string]interface{} values, so defaults typed as map[string][]string
// keep their original casing and env overrides arrive lowercased; matching
// is case-insensitive either way.
func lowerKeys(m map[string][]string) map[string][]string {
	normalized := make(map[string][]string, len(m))
	for k, v := range m {
		normalized[strings.ToLower(k)] = v
	}
	return normalized
}

// Getwd tries to find the project root.
// go-test changes the working directory to the test package being run during tests...
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	root := "udahili"
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(currDir); err == nil {
			dirBase := filepath.Base(currDir)
			if dirBase == root && fi.IsDir() {
				return currDir
			}
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd // fall back to the actual working directory
		}
		currDir = newDir
	}
}

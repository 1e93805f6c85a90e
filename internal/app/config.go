package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/data/db"
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/management"
	"github.com/tissage-sgq/shiftconsole/internal/platform/envutil"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime/bus"
	"github.com/tissage-sgq/shiftconsole/internal/savetask"
	"github.com/tissage-sgq/shiftconsole/internal/services"
)

type Config struct {
	Port        string
	LogMode     string
	Environment string
	Version     string

	ShiftAPI shiftapi.Config
	DB       db.Config
	Redis    bus.RedisConfig

	SaveDelay     time.Duration
	CatalogTTL    time.Duration
	DashboardPoll time.Duration
	CORSOrigins   []string

	Plant domain.PlantDefaults
}

func LoadConfig(log *logger.Logger) (Config, error) {
	api, err := shiftapi.ResolveConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("VERSION", "dev"),
		ShiftAPI:    api,
		DB: db.Config{
			Driver:           envutil.String("SNAPSHOT_DB_DRIVER", db.DriverSQLite),
			SQLitePath:       envutil.String("SNAPSHOT_SQLITE_PATH", "shiftconsole.db"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "shiftconsole"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		},
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", ""),
		},
		SaveDelay:     envutil.Millis("SAVE_DEBOUNCE_MS", savetask.DefaultDelay),
		CatalogTTL:    envutil.Seconds("CATALOG_TTL_SECONDS", 10*time.Minute),
		DashboardPoll: envutil.Seconds("DASHBOARD_POLL_SECONDS", management.DefaultPollInterval),
		CORSOrigins:   envutil.List("CORS_ALLOWED_ORIGINS", nil),
		Plant:         services.DefaultPlantDefaults(),
	}

	if path := envutil.String("SHIFTCONSOLE_CONFIG", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read plant config: %w", err)
		}
		plant, err := ParsePlantDefaults(raw)
		if err != nil {
			return Config{}, fmt.Errorf("plant config %s: %w", path, err)
		}
		cfg.Plant = plant
		log.Info("Plant defaults loaded", "path", path)
	}
	return cfg, nil
}

type yamlPlantFile struct {
	QCThresholds    *domain.QCThresholds            `yaml:"qc_thresholds"`
	VacationHours   map[string]domain.VacationHours `yaml:"vacation_hours"`
	DefectTypes     []yamlDefectType                `yaml:"defect_types"`
	LostTimeReasons []yamlLostTimeReason            `yaml:"lost_time_reasons"`
	ChecklistItems  []domain.ChecklistItem          `yaml:"checklist_items"`
}

type yamlDefectType struct {
	ID        int    `yaml:"id"`
	Name      string `yaml:"name"`
	Severity  string `yaml:"severity"`
	Threshold *int   `yaml:"threshold"`
}

type yamlLostTimeReason struct {
	ID        int    `yaml:"id"`
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	IsPlanned bool   `yaml:"planned"`
}

// ParsePlantDefaults reads a plant file. Sections left out keep the built-in
// defaults.
func ParsePlantDefaults(raw []byte) (domain.PlantDefaults, error) {
	var f yamlPlantFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return domain.PlantDefaults{}, err
	}
	out := services.DefaultPlantDefaults()
	if f.QCThresholds != nil {
		out.QCThresholds = *f.QCThresholds
	}
	if len(f.VacationHours) > 0 {
		hours := make(map[domain.Vacation]domain.VacationHours, len(f.VacationHours))
		for name, h := range f.VacationHours {
			v := domain.Vacation(name)
			if !v.Valid() {
				return domain.PlantDefaults{}, fmt.Errorf("unknown vacation %q", name)
			}
			hours[v] = h
		}
		for v, h := range out.VacationHours {
			if _, ok := hours[v]; !ok {
				hours[v] = h
			}
		}
		out.VacationHours = hours
	}
	if len(f.DefectTypes) > 0 {
		out.DefectTypes = make([]domain.DefectType, 0, len(f.DefectTypes))
		for _, d := range f.DefectTypes {
			sev := domain.Severity(strings.TrimSpace(d.Severity))
			switch sev {
			case "":
				sev = domain.SeverityBlocking
			case domain.SeverityBlocking, domain.SeverityNonBlocking, domain.SeverityThreshold:
			default:
				return domain.PlantDefaults{}, fmt.Errorf("defect type %q: unknown severity %q", d.Name, d.Severity)
			}
			out.DefectTypes = append(out.DefectTypes, domain.DefectType{
				ID:             d.ID,
				Name:           d.Name,
				Severity:       sev,
				ThresholdValue: d.Threshold,
				IsActive:       true,
			})
		}
	}
	if len(f.LostTimeReasons) > 0 {
		out.LostTimeReasons = make([]domain.LostTimeReason, 0, len(f.LostTimeReasons))
		for i, r := range f.LostTimeReasons {
			out.LostTimeReasons = append(out.LostTimeReasons, domain.LostTimeReason{
				ID:        r.ID,
				Name:      r.Name,
				Category:  r.Category,
				IsPlanned: r.IsPlanned,
				IsActive:  true,
				Order:     i + 1,
			})
		}
	}
	if len(f.ChecklistItems) > 0 {
		out.ChecklistItems = f.ChecklistItems
	}
	return out, nil
}

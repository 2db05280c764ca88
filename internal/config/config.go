package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const EnvPrefix = "PETCARE_"

type Application struct {
	HTTP      HTTP      `koanf:"http"`
	Log       Log       `koanf:"log"`
	Platform  Platform  `koanf:"platform"`
	Database  Database  `koanf:"db"`
	Reminders Reminders `koanf:"reminders"`
	Calendar  Calendar  `koanf:"calendar"`
	Uploads   Uploads   `koanf:"uploads"`
	Session   Session   `koanf:"session"`
}

type HTTP struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"readtimeout"`
	WriteTimeout time.Duration `koanf:"writetimeout"`
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	App    string `koanf:"app"`
}

// Platform apunta al backend-as-a-service que guarda entidades, auth y archivos.
type Platform struct {
	BaseURL      string        `koanf:"baseurl"`
	AppID        string        `koanf:"appid"`
	APIKey       string        `koanf:"apikey"`
	APIKeyHeader string        `koanf:"apikeyheader"`
	Timeout      time.Duration `koanf:"timeout"`
}

// Database: si DSN está vacío se usan los stores in-memory.
type Database struct {
	DSN string `koanf:"dsn"`
}

type Reminders struct {
	PreAlert  time.Duration `koanf:"prealert"`
	ExitDelay time.Duration `koanf:"exitdelay"`
	Locale    string        `koanf:"locale"`
}

type Calendar struct {
	UIDDomain       string        `koanf:"uiddomain"`
	ProductID       string        `koanf:"productid"`
	Timezone        string        `koanf:"timezone"`
	DefaultLocation string        `koanf:"defaultlocation"`
	Duration        time.Duration `koanf:"duration"`
	TimeMode        string        `koanf:"timemode"` // wallclock | utc
}

type Uploads struct {
	MaxBytes int64 `koanf:"maxbytes"`
}

type Session struct {
	RedirectAttempts int           `koanf:"redirectattempts"`
	RedirectBackoff  time.Duration `koanf:"redirectbackoff"`
	DefaultRedirect  string        `koanf:"defaultredirect"`
}

// Defaults devuelve la configuración base antes de archivo y env.
func Defaults() Application {
	return Application{
		HTTP: HTTP{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
			App:    "petcare-plus",
		},
		Platform: Platform{
			APIKeyHeader: "api_key",
			Timeout:      10 * time.Second,
		},
		Reminders: Reminders{
			PreAlert:  15 * time.Minute,
			ExitDelay: 400 * time.Millisecond,
			Locale:    "pt-BR",
		},
		Calendar: Calendar{
			UIDDomain:       "petcareplus.app",
			ProductID:       "-//PetCare+//Agenda//PT",
			Timezone:        "America/Sao_Paulo",
			DefaultLocation: "Clínica Veterinária",
			Duration:        time.Hour,
			TimeMode:        "wallclock",
		},
		Uploads: Uploads{
			MaxBytes: 10 << 20,
		},
		Session: Session{
			RedirectAttempts: 3,
			RedirectBackoff:  500 * time.Millisecond,
			DefaultRedirect:  "/dashboard",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if strings.TrimSpace(path) != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if os.IsNotExist(err) {
				log.Infof("Config file not found at %s, using defaults and environment variables", path)
			} else {
				log.Errorf("error loading config from YAML: %v", err)
				return Application{}, err
			}
		} else {
			log.Infof("Loaded configuration from file: %s", path)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

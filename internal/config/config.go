// Package config carga la configuración desde un YAML opcional y
// overrides por variables de entorno. Las ENV siempre ganan.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr"`
		// BaseURL pública, usada para armar las callback URLs de OAuth.
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Storage struct {
		// mongo | postgres | memory
		Driver string `yaml:"driver"`
		Mongo  struct {
			URI      string `yaml:"uri"`
			Database string `yaml:"database"`
		} `yaml:"mongo"`
		Postgres struct {
			DSN string `yaml:"dsn"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// redis | memory. Las sesiones "sessioned" viven en este
		// backend: con memory mueren en cada reinicio del proceso. Para
		// que sobrevivan reinicios hay que configurar redis; memory es
		// un default de desarrollo.
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Session struct {
		// Secret firma las cookies stateless y el state de OAuth.
		Secret string `yaml:"secret"`
		// sessioned | stateless
		Mode       string `yaml:"mode"`
		TTL        string `yaml:"ttl"`
		CookieName string `yaml:"cookie_name"`
		Domain     string `yaml:"domain"`
		SameSite   string `yaml:"samesite"`
		Secure     bool   `yaml:"secure"`
	} `yaml:"session"`

	Providers struct {
		Google   Provider `yaml:"google"`
		Facebook Provider `yaml:"facebook"`
		GitHub   Provider `yaml:"github"`
	} `yaml:"providers"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`
}

// Provider son las credenciales OAuth de un proveedor. Un proveedor
// sin client id + secret queda deshabilitado en silencio: es política
// deliberada, no un error de arranque.
type Provider struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

// Enabled retorna true si el proveedor tiene credenciales completas.
func (p Provider) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Load lee el YAML (si path no está vacío y existe) y aplica overrides
// de entorno. Nunca falla por archivo ausente, sí por YAML inválido.
func Load(path string) (*Config, error) {
	c := &Config{}
	c.defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyEnv()
	return c, nil
}

func (c *Config) defaults() {
	c.App.Env = "dev"
	c.Server.Addr = ":3000"
	c.Server.BaseURL = "http://localhost:3000"
	c.Storage.Driver = "mongo"
	c.Storage.Mongo.Database = "user_info"
	c.Cache.Kind = "memory"
	c.Session.Mode = "sessioned"
	c.Session.TTL = "24h"
	c.Session.CookieName = "sid"
	c.Session.SameSite = "Lax"
}

// SessionTTL parsea el TTL de sesión; 24h si está ausente o inválido.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// StorageDSN retorna el connection string del driver activo.
func (c *Config) StorageDSN() string {
	switch c.Storage.Driver {
	case "postgres":
		return c.Storage.Postgres.DSN
	case "memory":
		return "memory"
	default:
		return c.Storage.Mongo.URI
	}
}

// Validate chequea lo imprescindible para arrancar: sin connection
// string del store primario el proceso no debe servir tráfico.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "mongo":
		if c.Storage.Mongo.URI == "" {
			return fmt.Errorf("config: MONGODB_URI is required")
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("config: DATABASE_DSN is required")
		}
	case "memory":
		// dev/test, sin DSN
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("config: SESSION_SECRET is required")
	}
	return nil
}

func (c *Config) applyEnv() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	} else if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + v
	}
	if v, ok := getEnvStr("BASE_URL"); ok {
		c.Server.BaseURL = strings.TrimRight(v, "/")
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("MONGODB_URI"); ok {
		c.Storage.Mongo.URI = v
	}
	if v, ok := getEnvStr("MONGODB_DATABASE"); ok {
		c.Storage.Mongo.Database = v
	}
	if v, ok := getEnvStr("DATABASE_DSN"); ok {
		c.Storage.Postgres.DSN = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_SECRET"); ok {
		c.Session.Secret = v
	}
	if v, ok := getEnvStr("SESSION_MODE"); ok {
		c.Session.Mode = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvStr("SESSION_DOMAIN"); ok {
		c.Session.Domain = v
	}
	if v, ok := getEnvStr("SESSION_SAMESITE"); ok {
		c.Session.SameSite = v
	}
	if v, ok := getEnvBool("SESSION_SECURE"); ok {
		c.Session.Secure = v
	}

	// PROVIDERS
	applyProviderEnv(&c.Providers.Google, "GOOGLE")
	applyProviderEnv(&c.Providers.Facebook, "FACEBOOK")
	applyProviderEnv(&c.Providers.GitHub, "GITHUB")

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}
}

func applyProviderEnv(p *Provider, prefix string) {
	if v, ok := getEnvStr(prefix + "_CLIENT_ID"); ok {
		p.ClientID = v
	}
	if v, ok := getEnvStr(prefix + "_CLIENT_SECRET"); ok {
		p.ClientSecret = v
	}
	if v, ok := getEnvStr(prefix + "_REDIRECT_URL"); ok {
		p.RedirectURL = v
	}
	if v, ok := getEnvCSV(prefix + "_SCOPES"); ok && len(v) > 0 {
		p.Scopes = v
	}
}

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func getEnvBool(key string) (bool, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

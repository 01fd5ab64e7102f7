// trackauth es el binario del servicio: serve levanta el servidor HTTP
// y seed crea un usuario local de prueba.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trackshare/trackauth/internal/cache"
	"github.com/trackshare/trackauth/internal/config"
	"github.com/trackshare/trackauth/internal/email"
	httpserver "github.com/trackshare/trackauth/internal/http"
	authctrl "github.com/trackshare/trackauth/internal/http/controllers/auth"
	healthctrl "github.com/trackshare/trackauth/internal/http/controllers/health"
	pagesctrl "github.com/trackshare/trackauth/internal/http/controllers/pages"
	socialctrl "github.com/trackshare/trackauth/internal/http/controllers/social"
	"github.com/trackshare/trackauth/internal/http/router"
	authsvc "github.com/trackshare/trackauth/internal/http/services/auth"
	socialsvc "github.com/trackshare/trackauth/internal/http/services/social"
	"github.com/trackshare/trackauth/internal/identity"
	"github.com/trackshare/trackauth/internal/metrics"
	"github.com/trackshare/trackauth/internal/oauth"
	"github.com/trackshare/trackauth/internal/oauth/facebook"
	"github.com/trackshare/trackauth/internal/oauth/github"
	"github.com/trackshare/trackauth/internal/oauth/google"
	"github.com/trackshare/trackauth/internal/observability/logger"
	"github.com/trackshare/trackauth/internal/session"
	"github.com/trackshare/trackauth/internal/store"
	storememory "github.com/trackshare/trackauth/internal/store/memory"
	"github.com/trackshare/trackauth/internal/store/mongo"
	"github.com/trackshare/trackauth/internal/store/pg"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "trackauth",
		Short:         "Servicio de autenticación multi-proveedor de TrackShare",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "ruta del YAML de configuración (opcional)")

	root.AddCommand(serveCmd(&cfgPath))
	root.AddCommand(seedCmd(&cfgPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig carga .env (si existe), el YAML y valida.
func loadConfig(path string) (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newStore arma el Store lazy según el driver configurado. pgStore
// queda seteado cuando el driver es postgres, para las métricas del
// pool.
func newStore(cfg *config.Config, pgStore *atomic.Pointer[pg.Store]) *store.Lazy {
	return store.NewLazy(func(ctx context.Context) (store.Store, error) {
		switch cfg.Storage.Driver {
		case "postgres":
			s, err := pg.Open(ctx, cfg.Storage.Postgres.DSN)
			if err != nil {
				return nil, err
			}
			pgStore.Store(s)
			return s, nil
		case "memory":
			return storememory.New(), nil
		default:
			return mongo.Open(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database)
		}
	})
}

func newCache(cfg *config.Config) cache.Cache {
	return cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.SessionTTL(),
	})
}

func newSessions(cfg *config.Config, c cache.Cache) *session.Manager {
	return session.NewManager(session.Config{
		Secret:     []byte(cfg.Session.Secret),
		TTL:        cfg.SessionTTL(),
		CookieName: cfg.Session.CookieName,
		Domain:     cfg.Session.Domain,
		SameSite:   cfg.Session.SameSite,
		Secure:     cfg.Session.Secure,
		Mode:       cfg.Session.Mode,
	}, c)
}

// newRegistry registra las estrategias con credenciales completas. Un
// proveedor sin credenciales queda fuera y su ruta devuelve 404.
func newRegistry(cfg *config.Config) *oauth.Registry {
	registry := oauth.NewRegistry()

	callback := func(p config.Provider, name string) string {
		if p.RedirectURL != "" {
			return p.RedirectURL
		}
		return cfg.Server.BaseURL + "/auth/" + name + "/callback"
	}

	if p := cfg.Providers.Google; p.Enabled() {
		registry.Register(google.New(p.ClientID, p.ClientSecret, callback(p, google.ProviderName), p.Scopes))
	}
	if p := cfg.Providers.Facebook; p.Enabled() {
		registry.Register(facebook.New(p.ClientID, p.ClientSecret, callback(p, facebook.ProviderName), p.Scopes))
	}
	if p := cfg.Providers.GitHub; p.Enabled() {
		registry.Register(github.New(p.ClientID, p.ClientSecret, callback(p, github.ProviderName), p.Scopes))
	}
	return registry
}

func newMailer(cfg *config.Config) email.Sender {
	if cfg.SMTP.Host == "" {
		return nil
	}
	s := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	if cfg.SMTP.TLS != "" {
		s.TLSMode = cfg.SMTP.TLS
	}
	s.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
	return s
}

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}

			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
			defer func() { _ = logger.Sync() }()
			log := logger.L().With(logger.Component("main"))

			var pgStore atomic.Pointer[pg.Store]
			st := newStore(cfg, &pgStore)
			defer func() { _ = st.Close(context.Background()) }()

			sessions := newSessions(cfg, newCache(cfg))
			registry := newRegistry(cfg)
			signer := oauth.NewStateSigner([]byte(cfg.Session.Secret))

			creds := identity.NewCredentials(st)
			reconciler := identity.NewReconciler(st)

			authService := authsvc.NewService(authsvc.Deps{
				Credentials: creds,
				Sessions:    sessions,
				Mailer:      newMailer(cfg),
			})
			socialService := socialsvc.NewService(socialsvc.Deps{
				Registry:   registry,
				Signer:     signer,
				Reconciler: reconciler,
				Sessions:   sessions,
			})

			metricsHandler, err := metrics.RegisterMetrics(metrics.MetricsConfig{
				GlobalPool: func() *pgxpool.Pool {
					if s := pgStore.Load(); s != nil {
						return s.Pool()
					}
					return nil
				},
			})
			if err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}

			providers := registry.Names()
			handler := router.New(router.Deps{
				Pages:          pagesctrl.NewController(providers),
				Auth:           authctrl.NewController(authService, sessions, providers),
				Social:         socialctrl.NewController(socialService, sessions),
				Health:         healthctrl.NewController(st),
				Sessions:       sessions,
				MetricsHandler: metricsHandler,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("server starting",
				logger.String("addr", cfg.Server.Addr),
				logger.String("driver", cfg.Storage.Driver),
				logger.String("session_mode", cfg.Session.Mode),
				logger.Any("providers", providers),
			)
			return httpserver.StartWithShutdown(ctx, cfg.Server.Addr, handler, 10*time.Second)
		},
	}
}

func seedCmd(cfgPath *string) *cobra.Command {
	var name, userEmail, password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea un usuario local de prueba",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}

			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
			defer func() { _ = logger.Sync() }()

			var pgStore atomic.Pointer[pg.Store]
			st := newStore(cfg, &pgStore)
			defer func() { _ = st.Close(context.Background()) }()

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			u, err := identity.NewCredentials(st).Register(ctx, name, userEmail, password, password)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Printf("user created: id=%s email=%s\n", u.ID, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Demo User", "nombre del usuario")
	cmd.Flags().StringVar(&userEmail, "email", "demo@example.com", "email del usuario")
	cmd.Flags().StringVar(&password, "password", "changeme123", "password del usuario")
	return cmd
}

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

const version = "1.0.0"

const errorLogRetention = 30 * 24 * time.Hour

type config struct {
	port int
	env  string
	db   struct {
		dsn                string
		maxOpenConnections int
		maxIdleConnections int
		maxIdleTime        time.Duration
	}
	jwt struct {
		secret string
		expiry time.Duration
	}
	adminSecret string
	limiter     struct {
		enabled           bool
		requestsPerMinute int
		burst             int
	}
	cors struct {
		trustedOrigins []string
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

type application struct {
	config  config
	storage *storage
	mailer  *mailer
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	var cfg config
	flag.IntVar(&cfg.port, "port", 3000, "Server port")
	flag.StringVar(&cfg.env, "env", "development", "Environment [development|production]")

	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConnections, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConnections, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	var maxIdleTime string
	flag.StringVar(&maxIdleTime, "db-max-idle-time", "15m", "PostgreSQL max connection idle time")

	flag.StringVar(&cfg.jwt.secret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT secret")
	var jwtExpiry string
	flag.StringVar(&jwtExpiry, "jwt-expiry", envString("JWT_EXPIRY", "168h"), "JWT expiry")
	flag.StringVar(&cfg.adminSecret, "admin-secret", os.Getenv("ADMIN_SECRET_CODE"), "Admin registration code")

	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", true, "Enable rate limiter")
	flag.IntVar(&cfg.limiter.requestsPerMinute, "limiter-rpm", 60, "Rate limiter max requests per minute per IP")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 10, "Rate limiter burst")

	var corsOrigins string
	flag.StringVar(&corsOrigins, "cors-trusted-origins", envString("CORS_ORIGIN", "*"), "Trusted CORS origins (space separated)")

	flag.StringVar(&cfg.smtp.host, "smtp-host", os.Getenv("SMTP_HOST"), "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", envInt("SMTP_PORT", 25), "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", os.Getenv("SMTP_SENDER"), "SMTP sender")
	flag.Parse()

	cfg.cors.trustedOrigins = strings.Fields(corsOrigins)

	d, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		cfg.db.maxIdleTime = 15 * time.Minute
		log.Printf(`invalid value %s for flag "db-max-idle-time" defaulting to %s`, maxIdleTime, cfg.db.maxIdleTime)
	} else {
		cfg.db.maxIdleTime = d
	}

	d, err = time.ParseDuration(jwtExpiry)
	if err != nil {
		cfg.jwt.expiry = 168 * time.Hour
		log.Printf(`invalid value %s for flag "jwt-expiry" defaulting to %s`, jwtExpiry, cfg.jwt.expiry)
	} else {
		cfg.jwt.expiry = d
	}

	if cfg.jwt.secret == "" {
		secret := make([]byte, 32)
		_, err = rand.Read(secret[:])
		if err != nil {
			log.Fatal(err)
		}
		cfg.jwt.secret = string(secret)
		log.Println("no JWT secret configured; generated a random one, tokens will not survive a restart")
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("established a connection with database")

	st := newStorage(db)
	if err := st.init(); err != nil {
		log.Fatal(err)
	}
	log.Println("database tables initialized")

	// The settings row overrides the limiter rate and token expiry defaults.
	if s, err := st.getSettings(); err != nil {
		log.Println(err)
	} else if s != nil {
		if s.APIRateLimit > 0 {
			cfg.limiter.requestsPerMinute = s.APIRateLimit
		}
		if s.APITokenExpiry > 0 {
			cfg.jwt.expiry = time.Duration(s.APITokenExpiry) * time.Hour
		}
	}

	var m *mailer
	if cfg.smtp.host != "" {
		m = newMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)
	}

	app := &application{
		config:  cfg,
		storage: st,
		mailer:  m,
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc("@daily", func() {
		n, err := st.pruneErrorLogs(errorLogRetention)
		if err != nil {
			log.Println(err)
			return
		}
		if n > 0 {
			log.Printf("pruned %d error log entries", n)
		}
	})
	if err != nil {
		log.Fatal(err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.port),
		Handler:      composeRoutes(app),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	shutdownErr := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		log.Printf("caught signal %s, shutting down", s)
		scheduler.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	log.Printf("starting %s server on port %d\n", cfg.env, cfg.port)
	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	if err := <-shutdownErr; err != nil {
		log.Fatal(err)
	}
	if err := db.Close(); err != nil {
		log.Fatal(err)
	}
	log.Println("server stopped")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	adapthttp "petitdej/internal/adapter/http"
	"petitdej/internal/adapter/postgres"
	"petitdej/internal/adapter/sqlite"
	"petitdej/internal/app"
	"petitdej/internal/domain"
	"petitdej/internal/token"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "public")

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "dev-secret"
		log.Warn("SESSION_SECRET not set, using insecure development secret")
	}

	var (
		users        domain.UserRepository
		reservations domain.ReservationRepository
		closeDB      func() error
	)
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err := postgres.Open(connStr)
		if err != nil {
			log.Error("postgres open failed", "err", err)
			os.Exit(1)
		}
		users = db
		reservations = postgres.NewReservationRepo(db)
		closeDB = db.Close
		log.Info("using postgres store")
	} else {
		path := env("DB_PATH", "db.sqlite")
		db, err := sqlite.Open(path)
		if err != nil {
			log.Error("sqlite open failed", "err", err, "path", path)
			os.Exit(1)
		}
		users = db
		reservations = sqlite.NewReservationRepo(db)
		closeDB = db.Close
		log.Info("using sqlite store", "path", path)
	}
	defer func() { _ = closeDB() }()

	authSvc := app.NewAuthService(users)
	resSvc := app.NewReservationService(reservations)
	issuer := token.NewIssuer([]byte(secret), token.DefaultValidity)

	srv := adapthttp.New(authSvc, resSvc, issuer, webDir, log)
	if env("COOKIE_SECURE", "") == "true" {
		srv = srv.WithSecureCookies()
	}
	if cfg, ok := oidcFromEnv(log); ok {
		srv = srv.WithOIDC(cfg)
		log.Info("sso login enabled")
	}

	log.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// oidcFromEnv builds the SSO configuration when all OIDC variables are
// present.
func oidcFromEnv(log *slog.Logger) (adapthttp.OIDCConfig, bool) {
	issuerURL := os.Getenv("OIDC_ISSUER")
	clientID := os.Getenv("OIDC_CLIENT_ID")
	clientSecret := os.Getenv("OIDC_CLIENT_SECRET")
	redirectURL := os.Getenv("OIDC_REDIRECT_URL")
	if issuerURL == "" || clientID == "" || clientSecret == "" || redirectURL == "" {
		return adapthttp.OIDCConfig{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		log.Error("oidc discovery failed, sso disabled", "err", err)
		return adapthttp.OIDCConfig{}, false
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, true
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"crypto/tls"
	"log"
	"net/http"
	"os"

	"github.com/hnrobert/remlogon/internal/accounts"
	"github.com/hnrobert/remlogon/internal/audit"
	"github.com/hnrobert/remlogon/internal/config"
	"github.com/hnrobert/remlogon/internal/logger"
	"github.com/hnrobert/remlogon/internal/logon"
	"github.com/hnrobert/remlogon/internal/remote"
	"github.com/hnrobert/remlogon/internal/server"
)

func main() {
	cfgPath := getenvDefault("REMLOGON_CONFIG", "/etc/remlogon/config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("remlogon: %v", err)
	}

	if cfg.Logging.Dir != "" {
		if err := logger.Init(cfg.Logging.Dir); err != nil {
			log.Printf("remlogon: file logging disabled: %v", err)
		}
		defer logger.Close()
	}
	logger.SetDebug(cfg.Logging.Debug)

	var store accounts.Store
	switch cfg.Accounts.Backend {
	case config.BackendCmd:
		store = accounts.NewCmdStore()
	default:
		store = accounts.NewFileStore(cfg.Accounts.PasswdPath, cfg.Accounts.ShadowPath, cfg.Accounts.GroupPath)
	}

	authority := remote.New(cfg.Remote.URL, cfg.Remote.Timeout)
	if cfg.Remote.InsecureSkipVerify {
		logger.Warn("TLS verification against %s is disabled", cfg.Remote.URL)
		authority.SetTransport(&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
	}

	engine := logon.New(authority, store, cfg.Remote.Domain)

	audits := audit.NewStore(cfg.Audit.Path, cfg.Audit.MaxRecords)
	if err := audits.Ensure(); err != nil {
		logger.Warn("Audit journal unavailable at %s: %v", cfg.Audit.Path, err)
		audits = nil
	}

	addr := getenvDefault("REMLOGON_LISTEN", cfg.Server.ListenAddr)
	srv := server.New(server.Config{ListenAddr: addr}, server.Options{
		Validator:      engine,
		Audit:          audits,
		JWTSecret:      cfg.Server.JWTSecret,
		NoticePath:     cfg.Server.NoticePath,
		ConfirmSession: cfg.Session.Enabled,
	})

	logger.Info("remlogon listening on %s, authority %s, backend %s", addr, cfg.Remote.URL, cfg.Accounts.Backend)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

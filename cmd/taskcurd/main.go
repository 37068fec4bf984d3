// Command taskcurd runs the TaskCur web application.
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taskcur/taskcur/internal/auth"
	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/notify"
	"github.com/taskcur/taskcur/internal/server"
	"github.com/taskcur/taskcur/internal/store"
	"github.com/taskcur/taskcur/internal/task"
	"github.com/taskcur/taskcur/internal/user"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "taskcur",
	})

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal("opening store", "path", cfg.Database.Path, "err", err)
	}
	defer st.Close()

	ledger := task.NewLedger(st, logger)
	directory := user.NewDirectory(st, time.Duration(cfg.Users.PurgeAfterDays)*24*time.Hour, logger)
	sessions := auth.NewSessions(st, time.Duration(cfg.Session.TTLHours)*time.Hour, logger)
	guard := auth.NewGuard(ledger)
	mailer := notify.NewSMTPMailer(cfg.SMTP.Addr, cfg.SMTP.SenderAddress, cfg.SMTPPassword())
	dispatcher := notify.NewDispatcher(ledger, directory, st, mailer, cfg.Server.BaseURL, logger)

	sweeper := auth.NewSweeper(sessions, time.Hour)
	sweeper.Start()
	defer sweeper.Stop()

	srv := server.New(ledger, directory, sessions, guard, dispatcher, cfg.Session.CookieName, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("listening", "addr", cfg.Server.ListenAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", "err", err)
	}
}

// Command taskcur-reset-password sets a new password for an existing
// user directly against the database. It exists for the day the web
// surface is down or an account is locked out.
//
// Usage:
//
//	taskcur-reset-password [-config path] <username>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/taskcur/taskcur/internal/auth"
	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: taskcur-reset-password [-config path] <username>")
		os.Exit(1)
	}
	userName := flag.Arg(0)

	if err := run(*configPath, userName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Password reset successfully for user %q.\n", userName)
}

func run(configPath, userName string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := st.GetUser(ctx, userName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %q not found", userName)
		}
		return err
	}

	var password, confirm string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("New password for %s", userName)).
				Description(fmt.Sprintf("At least %d characters.", auth.MinPasswordLength)).
				EchoMode(huh.EchoModePassword).
				Value(&password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	if err := auth.ValidateNewPassword(password, confirm); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return st.SetPasswordHash(ctx, userName, hash, time.Now().UTC())
}

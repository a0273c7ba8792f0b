// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

// Command storefront drives the Bazinga storefront core from a terminal.
//
// # Usage
//
//	storefront [--email E --password P] <command> [args]
//
// Commands:
//
//	comics     [--search S] [--series S] [--character S] [--creator S] [--digital]
//	facets
//	quote      <comicId>
//	plans
//	news
//	register   --username U
//	subscribe  <PREMIUM|UNLIMITED> <MONTHLY|YEARLY>
//	cart       [add <comicId> [ORIGINAL|DIGITAL] | set <lineId> <qty> | remove <lineId> | clear]
//	wishlist   [add <comicId> | remove <comicId> | move <comicId>]
//	library
//	checkout   --first F --last L --address A --city C --zip Z --card N --expiry MM/YY --cvv CVV [--contact E]
//	publish    --title T --content C
//
// Admin commands:
//
//	categories
//	conditions
//	publish-comic --title T --price P [--author A] [--isbn I] [--year Y] [--category C] [--condition ID] [--type T] ...
//	edit-comic    <comicId> --title T --price P [fields as for publish-comic]
//	admin-comics
//	redact        <comicId> [--undo]
//	delete-comic  <comicId>
//	users         [--query Q]
//	create-user   --username U --user-email E --user-password P [--role R] [--first F] [--last L]
//	set-role      <userId> <USER|EDITOR|ADMIN>
//
// Logs go to stderr as JSON; command output goes to stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dentuss/Bazinga-Comics/internal/admin"
	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/client"
	"github.com/dentuss/Bazinga-Comics/internal/commerce"
	"github.com/dentuss/Bazinga-Comics/internal/news"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/config"
	"github.com/dentuss/Bazinga-Comics/internal/platform/constants"
	"github.com/dentuss/Bazinga-Comics/internal/users/auth"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if appErr := apperr.As(err); appErr != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", appErr.Message)
			for _, detail := range appErr.Details {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", detail.Field, detail.Message)
			}
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app holds the wired core for one invocation.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	out     io.Writer
	catalog *catalog.Service
	store   *commerce.Store
	auth    *auth.Service
	news    *news.Service
	admin   *admin.Service

	email    string
	password string
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	email := global.String("email", os.Getenv("STOREFRONT_EMAIL"), "account email")
	password := global.String("password", os.Getenv("STOREFRONT_PASSWORD"), "account password")
	global.SetInterspersed(false)
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: storefront [flags] <command> [args]\n%s", global.FlagUsages())
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(log)

	policy, err := cfg.FailurePolicy()
	if err != nil {
		return err
	}
	storePolicy := commerce.ReplaceWithFailure
	if policy == config.FailurePolicyRetain {
		storePolicy = commerce.RetainLastGood
	}

	api := client.New(cfg, log)
	store := commerce.NewStore(api, log, commerce.WithFailurePolicy(storePolicy))
	defer store.Close()

	a := &app{
		cfg:      cfg,
		log:      log,
		out:      out,
		catalog:  catalog.NewService(api, log),
		store:    store,
		auth:     auth.NewService(api, store, log),
		news:     news.NewService(api, log),
		admin:    admin.NewService(api, log, time.Now),
		email:    *email,
		password: *password,
	}

	command, rest := global.Arg(0), global.Args()[1:]
	handler, ok := commands[command]
	if !ok {
		return fmt.Errorf("unknown command %q", command)
	}
	return handler(ctx, a, rest)
}

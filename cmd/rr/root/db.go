package root

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/qinghezeng/research-gamification/internal/config"
	"github.com/qinghezeng/research-gamification/internal/engine"
	"github.com/qinghezeng/research-gamification/internal/storage"
	"github.com/qinghezeng/research-gamification/internal/ui"
)

func openDB(ctx context.Context, g *globalFlags, cfg *config.Config) (*sql.DB, func(), error) {
	explicit := g.dbPath
	if explicit == "" {
		explicit = cfg.DBPath
	}
	path, err := storage.ResolveDBPath(explicit)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func openService(ctx context.Context, g *globalFlags) (*engine.Service, func(), error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := openDB(ctx, g, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := engine.NewService(ctx, db, cfg.Logger(),
		engine.WithLocation(cfg.Location()),
		engine.WithStartingCurrency(cfg.StartingCurrency),
		engine.WithNotificationTTL(cfg.NotificationTTL),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// printUnlocks writes any live achievement notifications.
func printUnlocks(w io.Writer, svc *engine.Service) {
	for _, u := range svc.Notifications() {
		fmt.Fprintln(w, ui.UnlockLine(u))
	}
}

// shortID trims UUIDs to their timestamp prefix for display. FindActivity
// accepts any unique prefix.
func shortID(id string) string {
	if len(id) > 13 {
		return id[:13]
	}
	return id
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tradeline-audit/internal/report"
	"github.com/sells-group/tradeline-audit/internal/sol"
	"github.com/sells-group/tradeline-audit/internal/store"
)

// initEngine builds the audit engine with the configured limitation table.
func initEngine() (*report.Engine, error) {
	table := sol.DefaultTable()
	if cfg.SOL.TablePath != "" {
		t, err := sol.LoadTable(cfg.SOL.TablePath)
		if err != nil {
			return nil, err
		}
		table = t
		zap.L().Info("loaded SOL table override",
			zap.String("path", cfg.SOL.TablePath),
			zap.String("version", table.Version),
		)
	}
	return report.NewEngine(table), nil
}

// initStore opens the configured store backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	switch cfg.Store.Driver {
	case "postgres":
		poolCfg := &store.PoolConfig{MaxConns: cfg.Store.MaxConns, MinConns: cfg.Store.MinConns}
		pg, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, poolCfg)
		if err != nil {
			return nil, err
		}
		st = pg
	case "sqlite", "":
		sq, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = sq
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}

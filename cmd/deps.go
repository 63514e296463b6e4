package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/form990-cli/internal/config"
	"github.com/sells-group/form990-cli/internal/fetcher"
	"github.com/sells-group/form990-cli/internal/schedule"
	"github.com/sells-group/form990-cli/internal/store"
)

// initStore opens the configured store. Driver "none" yields a nil store.
func initStore(ctx context.Context, c config.StoreConfig) (store.Store, error) {
	switch c.Driver {
	case "sqlite":
		return store.NewSQLite(c.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, c.DatabaseURL, &store.PoolConfig{
			MaxConns: c.MaxConns,
			MinConns: c.MinConns,
		})
	case "none", "":
		return nil, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Driver)
	}
}

// initSource builds the document source for the configured kind.
func initSource(c config.SourceConfig) (schedule.Source, error) {
	switch c.Kind {
	case "dir":
		return &schedule.DirSource{Dir: c.Dir}, nil
	case "http", "":
		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  c.UserAgent,
			Timeout:    time.Duration(c.TimeoutSecs) * time.Second,
			MaxRetries: c.MaxRetries,
			Hosts:      fetcher.DefaultHosts(),
		})
		return &schedule.HTTPSource{Fetcher: f, BaseURL: c.BaseURL, CacheDir: c.CacheDir}, nil
	default:
		return nil, eris.Errorf("unsupported source kind: %s", c.Kind)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"courtside/internal/platform/config"
	"courtside/internal/platform/logger"
	"courtside/internal/platform/store"
	trackermod "courtside/internal/services/tracker/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	_ = godotenv.Load()

	root := config.New()
	l := logger.Get()

	var (
		fKinds      = flag.String("kinds", "", "comma separated record kinds: milestone,shoe,outfit")
		fAccounts   = flag.String("accounts", "", "comma separated source accounts to search")
		fVariations = flag.String("variations", "", "comma separated name variations to search for")
		fStart      = flag.String("start", "", "UTC start date YYYY-MM-DD")
		fEnd        = flag.String("end", "", "UTC end date YYYY-MM-DD exclusive")
		fLimit      = flag.Int("limit", 0, "max posts per unit (0 = config default)")
		fResume     = flag.Bool("resume", true, "skip posts already exported in prior runs")
		fDryRun     = flag.Bool("dry-run", false, "print the planned units and exit without any external calls")
	)
	flag.Parse()

	for _, f := range []struct{ flag, key string }{
		{*fKinds, "CORE_TRACKER_KINDS"},
		{*fAccounts, "CORE_TRACKER_ACCOUNTS"},
		{*fVariations, "CORE_TRACKER_VARIATIONS"},
		{*fStart, "CORE_TRACKER_SINCE"},
		{*fEnd, "CORE_TRACKER_UNTIL"},
	} {
		mustSetEnv(f.key, f.flag)
	}
	if *fLimit > 0 {
		mustSetEnv("CORE_TRACKER_POST_LIMIT", strconv.Itoa(*fLimit))
	}
	mustSetEnv("CORE_TRACKER_RESUME", map[bool]string{true: "1", false: "0"}[*fResume])

	for _, d := range []string{*fStart, *fEnd} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			l.Panic().Err(err).Str("date", d).Msg("bad date flag, want YYYY-MM-DD")
		}
	}

	// PG is optional: without it the run ledger is disabled and resume
	// falls back to scanning the output sink
	var st *store.Store
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	if pgCfg.MayBool("ENABLED", false) {
		var err error
		st, err = store.Open(context.Background(), store.Config{
			AppName: "courtside-scrape",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
		}, store.WithLogger(*l))
		if err != nil {
			l.Panic().Err(err).Msg("store.Open failed")
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
	}

	// SIGINT/SIGTERM abort the run cooperatively between units
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mod, err := trackermod.New(ctx, trackermod.Deps{Cfg: root, Store: st})
	if err != nil {
		l.Panic().Err(err).Msg("tracker module wiring failed")
	}

	units := mod.Units()
	if len(units) == 0 {
		l.Panic().Msg("no units: set -accounts (or CORE_TRACKER_ACCOUNTS)")
	}

	if *fDryRun {
		for _, u := range units {
			l.Info().Str("unit", u.Label()).Msg("planned")
		}
		l.Info().Int("units", len(units)).Msg("dry run, nothing executed")
		return
	}

	m, err := mod.Ports().Runner.Run(ctx, units)

	l.Info().
		Str("run_id", m.RunID).
		Int("posts_processed", m.PostsProcessed).
		Int("posts_skipped", m.PostsSkipped).
		Int("failed_units", m.FailedUnits).
		Int("exported", m.Exported).
		Int64("duration_ms", m.DurationMS).
		Msg("run finished")

	if err != nil {
		if errors.Is(err, context.Canceled) {
			l.Warn().Msg("run aborted by signal")
			os.Exit(130)
		}
		l.Fatal().Err(err).Msg("run failed")
	}
}

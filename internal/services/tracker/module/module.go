// Package module wires the tracker pipeline from configuration
package module

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"courtside/internal/adapters/llm/openai"
	"courtside/internal/adapters/monitor"
	"courtside/internal/adapters/sink/csvsink"
	"courtside/internal/adapters/social/twitterapi"
	"courtside/internal/adapters/sports/espn"
	"courtside/internal/core/normalize"
	"courtside/internal/platform/config"
	perr "courtside/internal/platform/errors"
	"courtside/internal/platform/retry"
	"courtside/internal/platform/store"
	"courtside/internal/services/tracker/dates"
	"courtside/internal/services/tracker/domain"
	"courtside/internal/services/tracker/extract"
	"courtside/internal/services/tracker/repo"
	"courtside/internal/services/tracker/service"
	"courtside/internal/services/tracker/stats"
)

// Deps are the platform dependencies handed to the module
type Deps struct {
	Cfg   config.Conf
	Store *store.Store // optional; nil or PG-less disables the ledger
}

// Ports defines the tracker module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the tracker module
type Module struct {
	ports Ports
	opts  Options
	units []domain.Unit
}

// New wires all adapters and the pipeline service from deps.Cfg.
// ctx covers ledger schema setup only
func New(ctx context.Context, deps Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	kinds := make([]domain.Kind, 0, len(opts.Kinds))
	for _, k := range opts.Kinds {
		kind, err := domain.ParseKind(k)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}

	// one limiter shared by every external adapter: the rate floor is
	// global, not per collaborator
	limiter := rate.NewLimiter(rate.Every(opts.RateEvery), 1)
	pol := retry.Policy{MaxAttempts: opts.RetryAttempts, Base: opts.RetryBase, Cap: 30 * time.Second}

	social := twitterapi.NewSearcher(twitterapi.NewClient(twitterapi.Options{
		APIKey:  opts.TwitterKey,
		Timeout: opts.TwitterTimeout,
		Retry:   pol,
	}, limiter))

	classifier := openai.NewClient(openai.Options{
		APIKey:      opts.OpenAIKey,
		Model:       opts.OpenAIModel,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Retry:       pol,
	}, limiter)

	sports := espn.NewClient(espn.Options{
		AthleteID: opts.ESPNAthleteID,
		Timeout:   opts.ESPNTimeout,
		Retry:     pol,
	}, limiter)

	sink, err := csvsink.New(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	mon, err := monitor.New(opts.MetricsPath)
	if err != nil {
		return nil, err
	}

	var ledger domain.LedgerRepo
	if deps.Store != nil && deps.Store.PG != nil {
		led := repo.NewLedger(deps.Store.PG)
		if err := led.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		ledger = led
	}

	svcOpts := service.Options{
		Player:    opts.Player,
		Team:      opts.Team,
		Kinds:     kinds,
		Since:     opts.Since,
		Until:     opts.Until,
		PostLimit: opts.PostLimit,
		UnitDelay: opts.UnitDelay,
		Resume:    opts.Resume,
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(svcOpts); err != nil {
		return nil, perr.WrapIf(err, perr.ErrorCodeValidation, "tracker options")
	}

	svc := service.New(service.Deps{
		Search:  social,
		Extract: extract.New(classifier, opts.Player),
		Dates:   dates.New(sports),
		Stats:   stats.New(sports),
		Sink:    sink,
		Monitor: mon,
		Ledger:  ledger,
		Norm:    normalize.New(),
	}, svcOpts)

	m := &Module{opts: opts, units: buildUnits(opts)}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// buildUnits crosses accounts with name variations, preserving order
func buildUnits(opts Options) []domain.Unit {
	units := make([]domain.Unit, 0, len(opts.Accounts)*len(opts.Variations))
	for _, acct := range opts.Accounts {
		for _, v := range opts.Variations {
			units = append(units, domain.Unit{Account: acct, Variation: v})
		}
	}
	return units
}

// Name returns the module name
func (m *Module) Name() string { return "tracker" }

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// Units returns the configured (account, variation) pairs in run order
func (m *Module) Units() []domain.Unit { return m.units }

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }

package pokerorchestrator

import "github.com/caarlos0/env/v11"

// Options is the orchestrator's bootstrap configuration. All values can come
// from the environment, mostly useful when the orchestrator runs as a
// standalone service.
type Options struct {
	// OwnerSigner is the account allowed to run administrative commands.
	OwnerSigner string `env:"POKER_OWNER"`

	// BaseSeed feeds per-hand deck seeds. Hand seeds derive from it, the
	// hand id and the table id, so replays with the same base seed
	// reproduce the same decks.
	BaseSeed uint64 `env:"POKER_BASE_SEED"`

	// Default clock profile for tables without an explicit one.
	ActionTime      int `env:"POKER_ACTION_TIME" envDefault:"30"`
	TimeBankSeconds int `env:"POKER_TIME_BANK_SECONDS" envDefault:"60"`

	// SQLiteDSN selects the SQLite store when non-empty. Leave empty to
	// keep state in memory.
	SQLiteDSN string `env:"POKER_SQLITE_DSN"`
}

func NewOptions() *Options {
	return &Options{
		ActionTime:      30,
		TimeBankSeconds: 60,
	}
}

func NewOptionsFromEnv() (*Options, error) {
	opts := NewOptions()
	if err := env.Parse(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) TimeProfile() TimeProfile {
	return TimeProfile{
		ActionTime:      o.ActionTime,
		TimeBankSeconds: o.TimeBankSeconds,
	}
}

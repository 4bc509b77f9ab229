package scheduler

import (
	"context"

	"github.com/rs/zerolog"
)

// DebtorSource lists the Telegram IDs of users with outstanding debt.
type DebtorSource interface {
	Debtors(ctx context.Context) []int64
}

// Mapper translates internal Telegram IDs into identifiers the external
// system understands. The mapping may legitimately be empty.
type Mapper interface {
	ExternalAccounts(ids []int64) []string
}

// Runner performs the external enforcement action against a set of
// account names.
type Runner interface {
	Disable(ctx context.Context, accounts []string) error
}

// Enforcer fetches the debtor list, maps it to external accounts and
// invokes the automation runner. Nothing here propagates an error to
// the scheduler; every failure is logged and swallowed.
type Enforcer struct {
	debtors DebtorSource
	mapper  Mapper
	runner  Runner
	log     zerolog.Logger
}

// NewEnforcer creates an Enforcer.
func NewEnforcer(debtors DebtorSource, mapper Mapper, runner Runner, logger zerolog.Logger) *Enforcer {
	return &Enforcer{
		debtors: debtors,
		mapper:  mapper,
		runner:  runner,
		log:     logger.With().Str("component", "enforcer").Logger(),
	}
}

// Run executes one enforcement pass.
func (e *Enforcer) Run(ctx context.Context) {
	ids := e.debtors.Debtors(ctx)
	if len(ids) == 0 {
		e.log.Info().Msg("no debtors found")
		return
	}
	e.log.Info().Ints64("debtor_ids", ids).Msg("debtors found")

	accounts := e.mapper.ExternalAccounts(ids)
	if len(accounts) == 0 {
		e.log.Warn().Msg("debtors found, but none map to external accounts; skipping enforcement run")
		return
	}

	if err := e.runner.Disable(ctx, accounts); err != nil {
		e.log.Error().Err(err).Strs("accounts", accounts).Msg("enforcement run failed")
		return
	}
	e.log.Info().Strs("accounts", accounts).Msg("enforcement run completed")
}

// AccountsMapper is the config-backed Mapper: a static Telegram ID to
// external account name table. IDs without an entry are dropped.
type AccountsMapper map[int64]string

// ExternalAccounts implements Mapper.
func (m AccountsMapper) ExternalAccounts(ids []int64) []string {
	var accounts []string
	for _, id := range ids {
		if name, ok := m[id]; ok && name != "" {
			accounts = append(accounts, name)
		}
	}
	return accounts
}

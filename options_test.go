package pokerorchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOptions_Defaults(t *testing.T) {
	opts := NewOptions()
	assert.Equal(t, 30, opts.ActionTime)
	assert.Equal(t, 60, opts.TimeBankSeconds)
	assert.Equal(t, "", opts.OwnerSigner)
	assert.Equal(t, uint64(0), opts.BaseSeed)
}

func TestNewOptionsFromEnv(t *testing.T) {
	t.Setenv("POKER_OWNER", "admin-signer")
	t.Setenv("POKER_BASE_SEED", "12345")
	t.Setenv("POKER_ACTION_TIME", "15")
	t.Setenv("POKER_SQLITE_DSN", "file:poker.db")

	opts, err := NewOptionsFromEnv()
	assert.NoError(t, err)
	assert.Equal(t, "admin-signer", opts.OwnerSigner)
	assert.Equal(t, uint64(12345), opts.BaseSeed)
	assert.Equal(t, 15, opts.ActionTime)
	assert.Equal(t, 60, opts.TimeBankSeconds)
	assert.Equal(t, "file:poker.db", opts.SQLiteDSN)

	profile := opts.TimeProfile()
	assert.Equal(t, 15, profile.ActionTime)
	assert.Equal(t, 60, profile.TimeBankSeconds)
}

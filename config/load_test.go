package config

import (
	"boostlend/core"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  address: "0x0000000000000000000000000000000000003000"
  treasury: "0x0000000000000000000000000000000000003001"
  auth_secret: "s3cret"
reserves:
  - asset: "0x0000000000000000000000000000000000001001"
    symbol: USDC
    vault: "0x0000000000000000000000000000000000002001"
    reserve_factor: 1000
    stable_borrowing: true
    yield_boost: true
strategies:
  - name: default
    optimal_utilization: "0.8"
    variable_rate_slope1: "0.04"
    variable_rate_slope2: "0.75"
boosters:
  - type: 1
    action: 1
    multiplier: 25000
`

func TestLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "boostlend.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))

	var cfg core.Config
	require.NoError(t, Load(file, &cfg))

	assert.Equal(t, common.HexToAddress("0x3000"), cfg.App.Address)
	assert.Equal(t, "@every 1m", cfg.App.AccrueSchedule)
	assert.Equal(t, "s3cret", cfg.App.AuthSecret)

	require.Len(t, cfg.Reserves, 1)
	assert.Equal(t, "USDC", cfg.Reserves[0].Symbol)
	assert.Equal(t, uint64(1000), cfg.Reserves[0].ReserveFactor)
	assert.True(t, cfg.Reserves[0].YieldBoost)

	require.Len(t, cfg.Strategies, 1)
	assert.Equal(t, "0.8", cfg.Strategies[0].OptimalUtilization.String())

	assert.Equal(t, uint64(25000), cfg.MultiplierTable().Of(1, 1))
}

func TestNormalize(t *testing.T) {
	v := normalize(map[string]interface{}{
		"list": []interface{}{map[interface{}]interface{}{"a": 1}},
	})

	list := v.(map[string]interface{})["list"].([]interface{})
	assert.Equal(t, map[string]interface{}{"a": 1}, list[0])
}

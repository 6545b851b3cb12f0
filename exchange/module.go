// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/exchange/contract"
	"github.com/luxfi/exchange/modules"
	"github.com/luxfi/exchange/precompileconfig"
)

var _ contract.Configurator = (*configurator)(nil)

const ConfigKey = "exchangeConfig"

// Module registers the precompile at the factory address. Instance addresses
// inside the reserved range route to the same contract; the host resolves
// them through modules.GetPrecompileModuleByAddress after checking the range.
var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      FactoryAddress,
	Contract:     ExchangePrecompile,
	Configurator: &configurator{},
}

type configurator struct{}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}

func (*configurator) MakeConfig() precompileconfig.Config {
	return &Config{}
}

// Configure lists the genesis tokens so their pools exist from activation.
func (*configurator) Configure(
	chainConfig precompileconfig.ChainConfig,
	cfg precompileconfig.Config,
	state contract.StateDB,
	blockContext contract.ConfigurationBlockContext,
) error {
	config, ok := cfg.(*Config)
	if !ok {
		return fmt.Errorf("unexpected config type %T", cfg)
	}
	if !state.Exist(FactoryAddress) {
		state.CreateAccount(FactoryAddress)
	}
	for _, token := range config.GenesisTokens {
		if _, err := ExchangePrecompile.Factory().CreateExchange(state, token); err != nil {
			return fmt.Errorf("listing genesis token %s: %w", token, err)
		}
	}
	return nil
}

// Config implements the precompileconfig.Config interface
type Config struct {
	Upgrade precompileconfig.Upgrade `json:"upgrade,omitempty"`

	// GenesisTokens are listed at activation, in order, so their exchange
	// addresses are deterministic.
	GenesisTokens []common.Address `json:"genesisTokens,omitempty"`
}

func (c *Config) Key() string {
	return ConfigKey
}

func (c *Config) Timestamp() *uint64 {
	return c.Upgrade.Timestamp()
}

func (c *Config) IsDisabled() bool {
	return c.Upgrade.Disable
}

func (c *Config) Equal(cfg precompileconfig.Config) bool {
	other, ok := cfg.(*Config)
	if !ok {
		return false
	}
	if !c.Upgrade.Equal(&other.Upgrade) {
		return false
	}
	if len(c.GenesisTokens) != len(other.GenesisTokens) {
		return false
	}
	for i, token := range c.GenesisTokens {
		if token != other.GenesisTokens[i] {
			return false
		}
	}
	return true
}

// Verify rejects zero and duplicate genesis tokens before activation.
func (c *Config) Verify(chainConfig precompileconfig.ChainConfig) error {
	seen := make(map[common.Address]bool, len(c.GenesisTokens))
	for _, token := range c.GenesisTokens {
		if token == (common.Address{}) {
			return fmt.Errorf("%w: genesis token is the zero address", ErrInvalidAddress)
		}
		if seen[token] {
			return fmt.Errorf("%w: genesis token %s listed twice", ErrExchangeExists, token)
		}
		seen[token] = true
	}
	if len(c.GenesisTokens) > maxExchanges {
		return ErrExchangeSlotsFull
	}
	return nil
}

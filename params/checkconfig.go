package params

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/c2xstation/storefront/log"
)

var (
	blankOrCommaSepRegexp = regexp.MustCompile(`[\s,]+`) // blank or comma separated

	validate = validator.New()
)

func splitStringByBlankOrComma(str string) []string {
	return blankOrCommaSepRegexp.Split(strings.TrimSpace(str), -1)
}

func errConfigFileNotExist(configFile string) error {
	return fmt.Errorf("config file '%v' not exist", configFile)
}

func errDecodeConfig(err error) error {
	return fmt.Errorf("toml DecodeFile: %w", err)
}

// CheckConfig check storefront config
func (c *StoreConfig) CheckConfig() (err error) {
	if !strings.HasPrefix(c.Identifier, StorefrontPrefixID) {
		return fmt.Errorf("wrong identifier '%v', missing prefix '%v'", c.Identifier, StorefrontPrefixID)
	}
	if err = validate.Struct(c); err != nil {
		return err
	}
	log.Info("check identifier pass", "identifier", c.Identifier)

	if err = c.Chain.CheckConfig(); err != nil {
		return err
	}
	if err = c.Confirm.CheckConfig(); err != nil {
		return err
	}
	if err = c.Session.CheckConfig(); err != nil {
		return err
	}
	if c.Wallet != nil {
		if err = c.Wallet.CheckConfig(); err != nil {
			return err
		}
	}
	if c.Server != nil {
		if err = c.Server.CheckConfig(); err != nil {
			return err
		}
	}
	return nil
}

// CheckConfig check chain config
func (c *ChainConfig) CheckConfig() error {
	for i, url := range c.LCD {
		c.LCD[i] = strings.TrimSuffix(strings.TrimSpace(url), "/")
	}
	for symbol, denom := range c.Denoms {
		if denom == "" {
			return fmt.Errorf("empty denom of '%v'", symbol)
		}
		if decimals, exist := c.Decimals[denom]; exist && (decimals < 0 || decimals > 36) {
			return fmt.Errorf("wrong decimals %v of denom '%v'", decimals, denom)
		}
	}
	if len(c.LCD) == 0 {
		log.Warn("no lcd endpoint configured, confirmation polling is skipped")
	}
	return nil
}

// CheckConfig check confirm config
func (c *ConfirmConfig) CheckConfig() error {
	if c.IntervalMs > c.TimeoutMs {
		return fmt.Errorf("confirm interval %vms is longer than timeout %vms", c.IntervalMs, c.TimeoutMs)
	}
	return nil
}

// CheckConfig check session config
func (c *SessionConfig) CheckConfig() error {
	switch c.Backend {
	case SessionBackendLevelDB:
		if c.DataDir == "" && GetDataDir() == "" {
			return errors.New("leveldb session backend requires 'DataDir' or '--datadir'")
		}
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis session backend requires 'RedisAddr'")
		}
	}
	return nil
}

// CheckConfig check api server config
func (c *APIServerConfig) CheckConfig() error {
	if c.Port == 0 {
		c.Port = 11556
	}
	if c.MaxRequestsLimit <= 0 {
		c.MaxRequestsLimit = 10
	}
	return nil
}

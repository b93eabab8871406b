package main

import (
	"strings"
	"sync"

	"tagdock/internal/config"
)

type commandContext struct {
	serverFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(serverFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// serverURL resolves the daemon address: the --server flag wins, then
// the api_bind from configuration.
func (c *commandContext) serverURL() (string, error) {
	if c.serverFlag != nil {
		if flag := strings.TrimSpace(*c.serverFlag); flag != "" {
			return normalizeServerURL(flag), nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return normalizeServerURL(cfg.Paths.APIBind), nil
}

func (c *commandContext) client() (*apiClient, error) {
	base, err := c.serverURL()
	if err != nil {
		return nil, err
	}
	return newAPIClient(base), nil
}

func normalizeServerURL(value string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "http://" + value
}

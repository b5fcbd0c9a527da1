package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/nexuspro/nexus-render/internal/config"
	"github.com/nexuspro/nexus-render/internal/db"
	"github.com/nexuspro/nexus-render/internal/logging"
)

type commandContext struct {
	dataDirFlag  *string
	logLevelFlag *string
	envFileFlag  *string

	configOnce sync.Once
	config     *config.EnvConfig
	configErr  error
}

func newCommandContext(dataDirFlag, logLevelFlag, envFileFlag *string) *commandContext {
	return &commandContext{
		dataDirFlag:  dataDirFlag,
		logLevelFlag: logLevelFlag,
		envFileFlag:  envFileFlag,
	}
}

// ensureConfig loads .env, applies flag overrides and reads the
// environment. Flags win over the environment, which wins over .env.
func (c *commandContext) ensureConfig() (*config.EnvConfig, error) {
	c.configOnce.Do(func() {
		var envFiles []string
		if f := flagValue(c.envFileFlag); f != "" {
			envFiles = append(envFiles, f)
		}
		if err := config.LoadDotEnv(envFiles...); err != nil {
			c.configErr = err
			return
		}

		overrides := map[string]string{
			config.EnvDataDir:  flagValue(c.dataDirFlag),
			config.EnvLogLevel: flagValue(c.logLevelFlag),
		}
		for key, val := range overrides {
			if val == "" {
				continue
			}
			if err := os.Setenv(key, val); err != nil {
				c.configErr = fmt.Errorf("set %s: %w", key, err)
				return
			}
		}

		cfg, err := config.New()
		if err != nil {
			c.configErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewLogger(config.DefaultLogLevel)
	}
	return logging.NewLogger(cfg.LogLevel())
}

// openDB opens the registry database for read-mostly commands. SQLite in WAL
// mode lets these run next to a live server.
func (c *commandContext) openDB() (*db.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.DBPath()); err != nil {
		return nil, fmt.Errorf("no database at %s (has the server been started?)", logging.SanitizePath(cfg.DBPath()))
	}
	return db.New(cfg.DBPath(), nil)
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

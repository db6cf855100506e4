package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type ConfigCache struct {
	usersDir string
	cache    map[string]*UserConfig
	mu       sync.RWMutex
}

func NewConfigCache(usersDir string) *ConfigCache {
	return &ConfigCache{
		usersDir: usersDir,
		cache:    make(map[string]*UserConfig),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.usersDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.usersDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		// Derive user name from filename (remove .yml extension)
		userName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(userName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("User configuration loaded", "user", userName, "scrape_interval", config.Settings.ScrapeInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(userName string) (*UserConfig, error) {
	configFile := cc.getConfigFilePath(userName)
	userConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	// Set user name from parameter
	userConfig.Name = userName

	if err := cc.validateConfig(userConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	// Store in cache
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[userConfig.Name] = userConfig

	return userConfig, nil
}

func (cc *ConfigCache) GetConfig(userName string) (*UserConfig, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	userConfig, ok := cc.cache[userName]
	if !ok {
		return nil, fmt.Errorf("user config with name '%s' not found", userName)
	}
	return userConfig, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*UserConfig {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*UserConfig, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*UserConfig, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var userConfig UserConfig
	if err := yaml.Unmarshal(data, &userConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if userConfig.Settings.Language == "" {
		userConfig.Settings.Language = "en"
	}
	if userConfig.Settings.ScrapeInterval == 0 {
		userConfig.Settings.ScrapeInterval = 60
	}

	return &userConfig, nil
}

func (cc *ConfigCache) validateConfig(userConfig *UserConfig) error {
	if userConfig == nil {
		return fmt.Errorf("userConfig is nil")
	}

	requiredFields := map[string]string{
		"user name": userConfig.Name,
		"email":     userConfig.Email,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	if userConfig.Settings.ScrapeInterval < 0 {
		return fmt.Errorf("scrape interval must be non-negative")
	}

	for _, source := range []string{"twitter", "facebook"} {
		for i, ref := range userConfig.Refs(source) {
			if strings.TrimSpace(ref) == "" {
				return fmt.Errorf("%s ref at index %d is empty", source, i)
			}
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(userName string) string {
	return filepath.Join(cc.usersDir, userName+".yml")
}

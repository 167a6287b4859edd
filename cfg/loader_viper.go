package cfg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	defaultConfigDir  = "cfg/yaml"
	defaultConfigName = "mode"
	envPrefix         = "OSSFINDER"
)

type ViperLoader struct {
	v                     *viper.Viper
	path                  string
	watch                 bool
	mu                    sync.RWMutex
	current               *Config
	configChangeCallbacks []func(*Config)
}

// NewViperLoader reads cfg/yaml/mode.yaml, or the file at path when it is not empty.
func NewViperLoader(path string) (*ViperLoader, error) {
	return &ViperLoader{
		v:                     viper.New(),
		path:                  path,
		watch:                 true,
		configChangeCallbacks: make([]func(*Config), 0),
	}, nil
}

func (vl *ViperLoader) Load() (*Config, error) {
	vl.mu.RLock()
	if vl.current != nil {
		defer vl.mu.RUnlock()
		return vl.current, nil
	}
	vl.mu.RUnlock()

	if err := vl.loadConfig(); err != nil {
		return nil, err
	}

	if vl.IsWatchChange() {
		vl.v.OnConfigChange(func(e fsnotify.Event) {
			fmt.Printf("[INFO][CONFIG] Config file changed: %s\n", e.Name)
			if errReload := vl.reloadConfig(); errReload != nil {
				fmt.Printf("[ERROR][CONFIG] Failed to reload config: %v\n", errReload)
			}
		})
		vl.v.WatchConfig()
	}

	vl.mu.RLock()
	defer vl.mu.RUnlock()
	return vl.current, nil
}

func (vl *ViperLoader) IsWatchChange() bool {
	return vl.watch
}

// DisableWatch turns off fsnotify reloading; one-shot commands use it.
func (vl *ViperLoader) DisableWatch() {
	vl.watch = false
}

func (vl *ViperLoader) RegisterConfigChangeCallback(callback func(*Config)) {
	vl.mu.Lock()
	vl.configChangeCallbacks = append(vl.configChangeCallbacks, callback)
	vl.mu.Unlock()
}

func (vl *ViperLoader) loadConfig() error {
	if vl.path != "" {
		vl.v.SetConfigFile(vl.path)
	} else {
		vl.v.AddConfigPath(defaultConfigDir)
		vl.v.SetConfigName(defaultConfigName)
		vl.v.SetConfigType("yaml")
	}

	vl.v.SetEnvPrefix(envPrefix)
	vl.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vl.v.AutomaticEnv()
	if err := vl.v.BindEnv("githubapi.accesstoken", "GITHUB_TOKEN", envPrefix+"_GITHUBAPI_ACCESSTOKEN"); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to bind GITHUB_TOKEN: %w", err)
	}

	if err := vl.v.ReadInConfig(); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to read config file: %w", err)
	}

	config, err := vl.unmarshal()
	if err != nil {
		return err
	}

	vl.mu.Lock()
	vl.current = config
	vl.mu.Unlock()
	return nil
}

func (vl *ViperLoader) unmarshal() (*Config, error) {
	config := &Config{}
	if err := vl.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config: %w", err)
	}
	config.ApplyDefaults()
	return config, nil
}

func (vl *ViperLoader) reloadConfig() error {
	config, err := vl.unmarshal()
	if err != nil {
		return err
	}

	vl.mu.Lock()
	vl.current = config
	callbacks := make([]func(*Config), len(vl.configChangeCallbacks))
	copy(callbacks, vl.configChangeCallbacks)
	vl.mu.Unlock()

	for _, callback := range callbacks {
		go callback(config)
	}

	fmt.Println("[INFO][CONFIG] Configuration reloaded successfully")
	return nil
}

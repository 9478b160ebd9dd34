package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationKeyDelimiterConstant          = "."
	environmentKeyDelimiterConstant            = "_"
	environmentListSeparatorConstant           = ","
	defaultsMergeErrorTemplateConstant         = "invalid built-in defaults: %w"
	configurationFileReadErrorTemplateConstant = "failed to read configuration: %w"
	configurationDecodeErrorTemplateConstant   = "failed to parse configuration: %w"
)

// ConfigurationSource names the layers studentpub settings are read from, lowest precedence first:
// fallback values, Defaults, the first matching file in SearchDirectories (or an explicit file),
// then EnvironmentPrefix variables such as STUDENTPUB_COMPLETION_MODEL.
type ConfigurationSource struct {
	FileName          string
	Format            string
	EnvironmentPrefix string
	SearchDirectories []string
	Defaults          []byte
}

// ConfigurationLoader decodes layered settings into a configuration struct.
type ConfigurationLoader struct {
	source ConfigurationSource
}

// LoadedConfiguration reports which file, if any, contributed settings.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader copies source so later changes by the caller have no effect.
func NewConfigurationLoader(source ConfigurationSource) *ConfigurationLoader {
	source.SearchDirectories = append([]string(nil), source.SearchDirectories...)
	source.Defaults = append([]byte(nil), source.Defaults...)
	return &ConfigurationLoader{source: source}
}

// LoadConfiguration fills target. Durations decode from strings such as "2s" and comma separated
// environment values decode into slices.
func (loader *ConfigurationLoader) LoadConfiguration(explicitFilePath string, fallbackValues map[string]any, target any) (LoadedConfiguration, error) {
	settings := viper.New()
	settings.SetConfigName(loader.source.FileName)
	settings.SetConfigType(loader.source.Format)
	for key, value := range fallbackValues {
		settings.SetDefault(key, value)
	}

	if len(loader.source.Defaults) > 0 {
		if mergeError := settings.MergeConfig(bytes.NewReader(loader.source.Defaults)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(defaultsMergeErrorTemplateConstant, mergeError)
		}
	}

	if fileError := loader.mergeConfigurationFile(settings, explicitFilePath); fileError != nil {
		return LoadedConfiguration{}, fileError
	}

	settings.SetEnvPrefix(loader.source.EnvironmentPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer(configurationKeyDelimiterConstant, environmentKeyDelimiterConstant))
	settings.AutomaticEnv()

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(environmentListSeparatorConstant),
	))
	if decodeError := settings.Unmarshal(target, decodeHook); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: settings.ConfigFileUsed()}, nil
}

// mergeConfigurationFile tolerates a missing file only when none was named explicitly.
func (loader *ConfigurationLoader) mergeConfigurationFile(settings *viper.Viper, explicitFilePath string) error {
	if len(explicitFilePath) > 0 {
		settings.SetConfigFile(explicitFilePath)
	} else {
		for _, directory := range loader.source.SearchDirectories {
			settings.AddConfigPath(directory)
		}
	}

	readError := settings.MergeInConfig()
	var notFoundError viper.ConfigFileNotFoundError
	if readError == nil || errors.As(readError, &notFoundError) {
		return nil
	}
	return fmt.Errorf(configurationFileReadErrorTemplateConstant, readError)
}

package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	environmentFileConfigurationTypeConstant = "env"
	environmentFileReadErrorTemplateConstant = "failed to read environment file %s: %w"
)

// EnvironmentFileLoader reads KEY=VALUE files such as .env into a map keyed by upper-cased variable names.
type EnvironmentFileLoader struct{}

// NewEnvironmentFileLoader constructs an EnvironmentFileLoader.
func NewEnvironmentFileLoader() EnvironmentFileLoader {
	return EnvironmentFileLoader{}
}

// Load returns the variables declared in the file at filePath.
// A missing file yields an empty map without error.
func (EnvironmentFileLoader) Load(filePath string) (map[string]string, error) {
	trimmedFilePath := strings.TrimSpace(filePath)
	if len(trimmedFilePath) == 0 {
		return map[string]string{}, nil
	}

	if _, statError := os.Stat(trimmedFilePath); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf(environmentFileReadErrorTemplateConstant, trimmedFilePath, statError)
	}

	viperInstance := viper.New()
	viperInstance.SetConfigFile(trimmedFilePath)
	viperInstance.SetConfigType(environmentFileConfigurationTypeConstant)
	if readError := viperInstance.ReadInConfig(); readError != nil {
		return nil, fmt.Errorf(environmentFileReadErrorTemplateConstant, trimmedFilePath, readError)
	}

	variables := make(map[string]string)
	for settingKey, settingValue := range viperInstance.AllSettings() {
		variables[strings.ToUpper(settingKey)] = fmt.Sprint(settingValue)
	}
	return variables, nil
}

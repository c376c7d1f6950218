package cli

import (
	_ "embed"
)

const embeddedConfigurationTypeConstant = "yaml"

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
}

// ApplicationCommonConfiguration stores logging and execution defaults applied to every run.
type ApplicationCommonConfiguration struct {
	LogLevel         string `mapstructure:"log_level"`
	LogFormat        string `mapstructure:"log_format"`
	DryRun           bool   `mapstructure:"dry_run"`
	WorkingDirectory string `mapstructure:"working_directory"`
}

type configurationInitializationPlan struct {
	DirectoryPath string
	FilePath      string
}

// EmbeddedDefaultConfiguration returns a copy of the configuration shipped with the binary and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfiguration...), embeddedConfigurationTypeConstant
}

package cli

import (
	"time"

	"github.com/temirov/gpr/internal/utils"
)

const (
	forgeBackendCLIConstant = "cli"
	forgeBackendAPIConstant = "api"
)

// ApplicationConfiguration describes the persisted configuration for gpr.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common" yaml:"common"`
	PR      PullRequestConfiguration       `mapstructure:"pr" yaml:"pr"`
	Forge   ForgeConfiguration             `mapstructure:"forge" yaml:"forge"`
	Tracker TrackerConfiguration           `mapstructure:"tracker" yaml:"tracker"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// PullRequestConfiguration controls how the pull request is prepared and pushed.
type PullRequestConfiguration struct {
	Remote           string `mapstructure:"remote" yaml:"remote"`
	DefaultTarget    string `mapstructure:"default_target" yaml:"default_target"`
	SkipConfirmation bool   `mapstructure:"skip_confirmation" yaml:"skip_confirmation"`
	SkipReviewers    bool   `mapstructure:"skip_reviewers" yaml:"skip_reviewers"`
	Editor           string `mapstructure:"editor" yaml:"editor"`
}

// ForgeConfiguration selects the pull request backend.
type ForgeConfiguration struct {
	Backend      string `mapstructure:"backend" yaml:"backend"`
	Organization string `mapstructure:"organization" yaml:"organization"`
}

// TrackerConfiguration configures ticket lookups.
type TrackerConfiguration struct {
	Endpoint      string        `mapstructure:"endpoint" yaml:"endpoint"`
	TokenVariable string        `mapstructure:"token_variable" yaml:"token_variable"`
	Prefixes      []string      `mapstructure:"prefixes" yaml:"prefixes"`
	MinimumDigits int           `mapstructure:"minimum_digits" yaml:"minimum_digits"`
	MaximumDigits int           `mapstructure:"maximum_digits" yaml:"maximum_digits"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type trackerConfigurationView struct {
	Endpoint      string   `yaml:"endpoint"`
	TokenVariable string   `yaml:"token_variable"`
	Prefixes      []string `yaml:"prefixes"`
	MinimumDigits int      `yaml:"minimum_digits"`
	MaximumDigits int      `yaml:"maximum_digits"`
	Timeout       string   `yaml:"timeout"`
}

// MarshalYAML renders the timeout as a duration string.
func (configuration TrackerConfiguration) MarshalYAML() (any, error) {
	prefixes := configuration.Prefixes
	if prefixes == nil {
		prefixes = []string{}
	}
	return trackerConfigurationView{
		Endpoint:      configuration.Endpoint,
		TokenVariable: configuration.TokenVariable,
		Prefixes:      prefixes,
		MinimumDigits: configuration.MinimumDigits,
		MaximumDigits: configuration.MaximumDigits,
		Timeout:       configuration.Timeout.String(),
	}, nil
}

func defaultConfigurationValues() map[string]any {
	return map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		pullRequestRemoteConfigKey:       defaultRemoteNameConstant,
		forgeBackendConfigKeyConstant:    forgeBackendCLIConstant,
	}
}

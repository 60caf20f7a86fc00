package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	configurationCommandUseConstant          = "config"
	configurationCommandShortConstant        = "Print the effective configuration as YAML"
	configurationCommandLongConstant         = "config prints the configuration gpr would run with after merging the embedded defaults, the configuration file, GPR_ environment variables, and flags."
	configurationSourceCommentTemplate       = "# source: %s\n"
	configurationEmbeddedSourceConstant      = "embedded defaults"
	configurationRenderErrorTemplateConstant = "unable to render configuration: %w"
	configurationYAMLIndentConstant          = 2
)

func newConfigurationCommand(application *Application) *cobra.Command {
	return &cobra.Command{
		Use:   configurationCommandUseConstant,
		Short: configurationCommandShortConstant,
		Long:  configurationCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.printConfiguration(command)
		},
	}
}

func (application *Application) printConfiguration(command *cobra.Command) error {
	output := command.OutOrStdout()

	source := application.configurationMetadata.ConfigFileUsed
	if len(source) == 0 {
		source = configurationEmbeddedSourceConstant
	}
	if _, writeError := fmt.Fprintf(output, configurationSourceCommentTemplate, source); writeError != nil {
		return fmt.Errorf(configurationRenderErrorTemplateConstant, writeError)
	}

	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(configurationYAMLIndentConstant)
	if encodeError := encoder.Encode(application.configuration); encodeError != nil {
		return fmt.Errorf(configurationRenderErrorTemplateConstant, encodeError)
	}
	return encoder.Close()
}

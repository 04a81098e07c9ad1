package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mistral-io/phaseanalysis/internal/common"
	"github.com/mistral-io/phaseanalysis/internal/common/config"
	"github.com/mistral-io/phaseanalysis/internal/common/logging"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/configuration"
)

// loadConfig reads the base configuration, the user's config files and any overriding flags, validates the
// result and switches to application logging as configured.
func loadConfig(cmd *cobra.Command) (configuration.PhaseAnalysisConfiguration, error) {
	var c configuration.PhaseAnalysisConfiguration

	userSpecifiedConfigs, err := cmd.Flags().GetStringSlice(configFlag)
	if err != nil {
		return c, err
	}
	configDir, err := cmd.Flags().GetString(configDirFlag)
	if err != nil {
		return c, err
	}
	if err := common.LoadConfig(&c, configDir, userSpecifiedConfigs, cmd.Flags()); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		config.LogValidationErrors(err)
		return c, errors.WithMessage(err, "invalid configuration")
	}
	if err := logging.ConfigureApplicationLogging(c.Logging); err != nil {
		return c, err
	}
	return c, nil
}

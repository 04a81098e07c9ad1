package common

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	commonconfig "github.com/mistral-io/phaseanalysis/internal/common/config"
)

const (
	baseConfigFileName = "config"
	envPrefix          = "PHASEANALYSIS"
)

// LoadConfig populates config from, in increasing order of precedence: config.yaml in defaultPath, each of
// overrideConfigs, PHASEANALYSIS_* environment variables and any explicitly set flags.  Nested keys map to
// environment variables with dots replaced by underscores, e.g. output.csv.path -> PHASEANALYSIS_OUTPUT_CSV_PATH.
func LoadConfig(config any, defaultPath string, overrideConfigs []string, flags *pflag.FlagSet) error {
	v := viper.New()

	v.SetConfigName(baseConfigFileName)
	v.AddConfigPath(defaultPath)
	if err := v.ReadInConfig(); err != nil {
		return errors.WithMessagef(err, "error reading base config path=%s", defaultPath)
	}
	log.Infof("Read base config from %s", v.ConfigFileUsed())

	for _, overrideConfig := range overrideConfigs {
		v.SetConfigFile(overrideConfig)
		if err := v.MergeInConfig(); err != nil {
			return errors.WithMessagef(err, "error reading config from %s", overrideConfig)
		}
		log.Infof("Read config from %s", v.ConfigFileUsed())
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if flags != nil {
		if err := bindChangedFlags(v, flags); err != nil {
			return err
		}
	}

	if err := v.Unmarshal(config, commonconfig.CustomHooks...); err != nil {
		return errors.WithMessage(err, "error unmarshalling config")
	}
	return nil
}

// Only flags the user actually set take part, so that flag defaults never shadow values from config files.
func bindChangedFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.Visit(func(flag *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := flag.Annotations[commonconfig.ConfigKeyAnnotation]
		if len(key) == 0 {
			return
		}
		bindErr = v.BindPFlag(key[0], flag)
	})
	return errors.WithMessage(bindErr, "error binding command line flags")
}

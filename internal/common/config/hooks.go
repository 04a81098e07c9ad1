package config

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigKeyAnnotation marks a command line flag as an override for the config key stored under it.
const ConfigKeyAnnotation = "phaseanalysis_config_key"

var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		TrimmedStringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)),
}

// TrimmedStringToSliceHookFunc splits a string into a slice on sep, trimming whitespace and dropping empty
// elements, so that "csv, sqlite" and "csv,sqlite," both yield [csv sqlite].
func TrimmedStringToSliceHookFunc(sep string) mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Slice {
			return data, nil
		}
		raw := data.(string)
		parts := strings.Split(raw, sep)
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
		return result, nil
	}
}

// AnnotateConfigKey ties flag to config key, so that LoadConfig lets the flag override the key when set.
func AnnotateConfigKey(flags *pflag.FlagSet, flag string, key string) {
	if err := flags.SetAnnotation(flag, ConfigKeyAnnotation, []string{key}); err != nil {
		panic(errors.WithMessagef(err, "cannot annotate flag %s", flag))
	}
}

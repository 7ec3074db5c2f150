package envcheck

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadEnvFiles parses dotenv files and returns their merged key/value pairs.
// Files are applied in order, so a later file overrides an earlier one, the
// same way Compose layers --env-file arguments. Keys are upper-cased.
func LoadEnvFiles(paths ...string) (map[string]string, error) {
	values := make(map[string]string)

	for _, path := range paths {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("env")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read env file %q: %w", path, err)
		}

		// viper lower-cases keys; env files use upper-case names.
		for _, key := range v.AllKeys() {
			values[strings.ToUpper(key)] = v.GetString(key)
		}
	}

	return values, nil
}

// MergeEnviron returns a copy of values where the listed keys are taken from
// environ when present there. environ uses the os.Environ "KEY=value" form.
// Process environment wins over env files, as it does for Compose variable
// substitution. values is not modified.
func MergeEnviron(values map[string]string, environ []string, keys []string) map[string]string {
	merged := make(map[string]string, len(values)+len(keys))
	for k, v := range values {
		merged[k] = v
	}

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !wanted[key] {
			continue
		}
		merged[key] = value
	}

	return merged
}

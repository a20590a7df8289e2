package config

import "fmt"

// ConfigInitError reports a config file that exists but is missing a
// required field. Callers point the user at `nt init`.
type ConfigInitError struct {
	Field string
}

func (e *ConfigInitError) Error() string {
	return fmt.Sprintf("required config variable %q is not set, run `nt init`", e.Field)
}

package floof

import "fmt"

// ConfigError reports a problem with the configuration itself: a malformed
// floof.yaml, an unknown operation, a reference to a task that does not
// exist, or an operation used somewhere it cannot work. Config errors are
// surfaced at parse time where possible and at dispatch time otherwise.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

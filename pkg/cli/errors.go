package cli

import "fmt"

// ConfigError reports a problem with the loaded configuration. Field is the
// dotted path (e.g. "provider.base_url") when the failing field is known,
// empty for whole-file failures such as an unreadable or unparseable file.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError reports a failed command. Endpoint names the endpoint whose
// limiter the command was driving, empty when the failure is not tied to one.
type CommandError struct {
	Command  string
	Endpoint string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("command %s failed for endpoint %q: %v", e.Command, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a CommandError with no endpoint context.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// NewEndpointError creates a CommandError scoped to one endpoint.
func NewEndpointError(command, endpoint string, err error) *CommandError {
	return &CommandError{
		Command:  command,
		Endpoint: endpoint,
		Err:      err,
	}
}

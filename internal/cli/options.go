package cli

import "time"

// Options are the global flags, parsed before the command name.
type Options struct {
	JSON    bool
	Debug   bool
	Timeout time.Duration
	Email   string
}

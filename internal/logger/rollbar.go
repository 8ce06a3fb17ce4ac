package logger

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rs/zerolog"
)

var rollbarEnabled bool

// RollbarOptions configures error forwarding to Rollbar.
type RollbarOptions struct {
	Token       string
	Environment string
	CodeVersion string
	ServerHost  string
}

// EnableRollbar configures the Rollbar client and returns log with a hook that
// forwards error-and-above events. With an empty token, log is returned unchanged.
func EnableRollbar(log zerolog.Logger, opts RollbarOptions) zerolog.Logger {
	if opts.Token == "" {
		rollbar.SetEnabled(false)
		rollbarEnabled = false
		return log
	}

	rollbar.SetToken(opts.Token)
	rollbar.SetEnvironment(opts.Environment)
	rollbar.SetServerHost(opts.ServerHost)
	if opts.CodeVersion != "" {
		rollbar.SetCodeVersion(opts.CodeVersion)
	}
	rollbar.SetEnabled(true)
	rollbarEnabled = true

	return log.Hook(RollbarHook{})
}

// FlushRollbar blocks until queued Rollbar items are sent.
func FlushRollbar() {
	rollbar.Wait()
}

// RollbarHook forwards zerolog events at error level and above to Rollbar.
type RollbarHook struct{}

// Run implements zerolog.Hook.
func (RollbarHook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	switch level {
	case zerolog.ErrorLevel:
		rollbar.Error(msg)
	case zerolog.FatalLevel, zerolog.PanicLevel:
		rollbar.Critical(msg)
		rollbar.Wait()
	}
}

// ReportPanic sends a recovered panic value to Rollbar as a critical item.
func ReportPanic(recovered interface{}, extras map[string]interface{}) {
	if !rollbarEnabled {
		return
	}
	rollbar.Critical(recovered, extras)
}

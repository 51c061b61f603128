// Package common provides logging, terminal and exit code handling shared by the secretscrub commands.
package common

import (
	"bytes"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/CompassSecurity/secretscrub/pkg/format"
	"github.com/CompassSecurity/secretscrub/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version information - set via ldflags during build
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Log configuration
var (
	originalTermState *term.State
	JsonLogoutput     bool
	LogFile           string
	LogColor          bool
	LogDebug          bool
	LogLevel          string
)

// ExitCode is set by commands that map their outcome to a process exit code.
var ExitCode = 0

// TerminalRestorer is a function that can be called to restore terminal state
var TerminalRestorer func()

// CustomWriter wraps an os.File with proper cross-platform newline handling
type CustomWriter struct {
	Writer *os.File
}

func (cw *CustomWriter) Write(p []byte) (n int, err error) {
	originalLen := len(p)

	if bytes.HasSuffix(p, []byte("\n")) {
		p = bytes.TrimSuffix(p, []byte("\n"))
	}

	// necessary as to: https://github.com/rs/zerolog/blob/master/log.go#L474
	newlineChars := []byte("\n")
	if runtime.GOOS == "windows" {
		newlineChars = []byte("\n\r")
	}

	modified := append(p, newlineChars...)

	written, err := cw.Writer.Write(modified)
	if err != nil {
		return 0, err
	}

	if written != len(modified) {
		return 0, io.ErrShortWrite
	}

	return originalLen, nil
}

// FatalHook is a zerolog hook that restores terminal state before fatal exits
type FatalHook struct{}

func (h FatalHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.FatalLevel {
		if TerminalRestorer != nil {
			TerminalRestorer()
		}
	}
}

// SaveTerminalState saves the current terminal state for later restoration
func SaveTerminalState() {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		state, err := term.GetState(int(os.Stdin.Fd()))
		if err == nil {
			originalTermState = state
		}
	}
}

// RestoreTerminalState restores the terminal to its saved state
func RestoreTerminalState() {
	if originalTermState != nil {
		_ = term.Restore(int(os.Stdin.Fd()), originalTermState)
	}
}

// InitLogger initializes the zerolog logger with the configured options.
// Logs go to stderr so the scan report on stdout stays readable when piped.
func InitLogger(cmd *cobra.Command) {
	defaultOut := &CustomWriter{Writer: os.Stderr}
	colorEnabled := LogColor && term.IsTerminal(int(os.Stderr.Fd()))

	if LogFile != "" {
		// #nosec G304 - User-provided log file path via --logfile flag, user controls their own filesystem
		runLogFile, err := os.OpenFile(
			LogFile,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			format.FileUserReadWrite,
		)
		if err != nil {
			panic(err)
		}
		defaultOut = &CustomWriter{Writer: runLogFile}

		rootFlags := cmd.Root().PersistentFlags()
		if !rootFlags.Changed("color") {
			colorEnabled = false
		}
	}

	fatalHook := FatalHook{}
	hitWriter := &logging.HitLevelWriter{}

	if JsonLogoutput {
		hitWriter.SetOutput(defaultOut)
	} else {
		// For console output, use custom FormatLevel to color the hit level
		hitWriter.SetOutput(&zerolog.ConsoleWriter{
			Out:         defaultOut,
			TimeFormat:  time.RFC3339,
			NoColor:     !colorEnabled,
			FormatLevel: formatLevelWithHitColor(colorEnabled),
		})
	}

	logging.SetGlobalHitWriter(hitWriter)
	log.Logger = zerolog.New(hitWriter).With().Timestamp().Logger().Hook(fatalHook)
}

// formatLevelWithHitColor returns a custom level formatter that adds a distinct color for the "hit" level.
func formatLevelWithHitColor(colorEnabled bool) zerolog.Formatter {
	return func(i interface{}) string {
		level, ok := i.(string)
		if !ok {
			return ""
		}

		if !colorEnabled {
			return level
		}

		switch level {
		case "hit":
			return "\x1b[35m" + level + "\x1b[0m"
		case "trace":
			return "\x1b[90m" + level + "\x1b[0m"
		case "info":
			return "\x1b[32m" + level + "\x1b[0m"
		case "warn":
			return "\x1b[33m" + level + "\x1b[0m"
		case "error", "fatal", "panic":
			return "\x1b[31m" + level + "\x1b[0m"
		default:
			return level
		}
	}
}

// SetGlobalLogLevel sets the global log level based on the configured options.
// Without flags the level is warn, a pre-commit hook should stay quiet.
func SetGlobalLogLevel(cmd *cobra.Command) {
	if LogLevel != "" {
		level, err := logging.ParseLevel(LogLevel)
		if err != nil || level == zerolog.NoLevel {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
			log.Warn().Str("logLevelSpecified", LogLevel).Msg("Invalid log level, defaulting to warn")
			return
		}
		zerolog.SetGlobalLevel(level)
		log.Debug().Str("logLevel", level.String()).Msg("Log level set (explicit)")
		return
	}

	if LogDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("Log level set to debug (-v)")
		return
	}

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

// AddCommonFlags adds the common logging and output flags to a cobra command
func AddCommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&JsonLogoutput, "json", "", false, "Use JSON as log output format")
	cmd.PersistentFlags().StringVarP(&LogFile, "logfile", "l", "", "Log output to a file")
	cmd.PersistentFlags().BoolVarP(&LogDebug, "verbose", "v", false, "Enable debug logging (shortcut for --log-level=debug)")
	cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Set log level globally (debug, info, warn, error, hit). Example: --log-level=debug")
	cmd.PersistentFlags().BoolVar(&LogColor, "color", true, "Enable colored log output (auto-disabled when using --logfile or when stderr is not a terminal)")
}

// SetupPersistentPreRun sets up the PersistentPreRun handler for logging initialization
func SetupPersistentPreRun(cmd *cobra.Command) {
	cmd.PersistentPreRun = func(c *cobra.Command, args []string) {
		InitLogger(c)
		SetGlobalLogLevel(c)
		log.Debug().Str("version", Version).Str("commit", Commit).Str("date", Date).Msg("secretscrub")
	}
}

// Run executes the root command and returns the process exit code.
// A command error, which includes usage errors, always maps to 1.
func Run(rootCmd *cobra.Command) int {
	SaveTerminalState()
	defer RestoreTerminalState()

	TerminalRestorer = RestoreTerminalState

	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return ExitCode
}

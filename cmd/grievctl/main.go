package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError renders failures as a short title + description; nothing
// here ever panics at the user.
func printError(err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		fmt.Fprintf(os.Stderr, "%s: %s\n", appErr.Code, appErr.Message)
		if suggestions, ok := appErr.Details.([]string); ok {
			for _, s := range suggestions {
				fmt.Fprintf(os.Stderr, "  - %s\n", s)
			}
		}
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

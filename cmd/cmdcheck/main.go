package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
)

var version = "dev"

func main() {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	// Support environment variable routing for CI jobs
	if cmd := os.Getenv("CMDCHECK_COMMAND"); cmd != "" {
		os.Args = append([]string{os.Args[0], cmd}, os.Args[1:]...)
	}

	rootCmd := newRootCmd(logger)
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	debug, _ := strconv.ParseBool(os.Getenv("CMDCHECK_DEBUG"))
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

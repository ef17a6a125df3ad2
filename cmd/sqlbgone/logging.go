// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("sqlbgone")

var stderrFormat = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{level:.4s} ▶ %{message}%{color:reset}`,
)

// SetupLogging sends log records at or above level to w. The level is one of
// the go-logging level names, such as "DEBUG" or "WARNING".
func SetupLogging(w io.Writer, level string) error {
	lvl, err := logging.LogLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	backend := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), stderrFormat)
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
	return nil
}

// Red renders s in red when the output supports colour.
func Red(s string) string {
	return color.New(color.FgHiRed).SprintFunc()(s)
}

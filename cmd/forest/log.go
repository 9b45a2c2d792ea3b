package main

import (
	"github.com/rs/zerolog"

	"github.com/branchml/forest/internal/forestlog"
)

// Logger builds this invocation's logger from the persistent --verbose
// and --log-file flags, turning a plain verbose bool into structured,
// leveled logging per forestlog's convention.
func (c *rootCmdConfig) Logger() zerolog.Logger {
	level := "info"
	if c.verbose {
		level = "debug"
	}
	return forestlog.New(forestlog.Config{Level: level, FilePath: c.logFile})
}

//go:build !nogpu

package gpu

import (
	"log/slog"

	"github.com/gogpu/termcell"
)

// slogger returns the current package logger.
// All logging in internal/gpu goes through this function.
func slogger() *slog.Logger { return termcell.Logger() }

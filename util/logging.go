package util

import (
	"fmt"

	"github.com/golang/glog"
)

var LoggingEnabled = false

// LogF writes a debug message when LoggingEnabled is set. The language server talks over stdout,
// so these never go there.
func LogF(format string, args ...interface{}) {
	if !LoggingEnabled {
		return
	}
	glog.InfoDepth(1, fmt.Sprintf(format, args...))
}

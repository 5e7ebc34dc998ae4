package tools

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05.000"

var (
	loggerEnabled   atomic.Bool
	loggerTimestamp atomic.Bool
	outputLogger    atomic.Pointer[log.Logger]
)

func init() {
	loggerEnabled.Store(true)
	SetLoggerOutput(os.Stdout)
}

func EnableLogger()           { loggerEnabled.Store(true) }
func DisableLogger()          { loggerEnabled.Store(false) }
func EnableLoggerTimestamp()  { loggerTimestamp.Store(true) }
func DisableLoggerTimestamp() { loggerTimestamp.Store(false) }

// Redirects the progress lines, stdout by default
func SetLoggerOutput(w io.Writer) {
	outputLogger.Store(log.New(w, "", 0))
}

// Prints a user facing progress line, unless the logger is disabled
func LogOutput(val ...interface{}) {
	if !loggerEnabled.Load() {
		return
	}
	line := fmt.Sprintln(val...)
	if loggerTimestamp.Load() {
		line = "[" + time.Now().Format(timestampLayout) + "] " + line
	}
	outputLogger.Load().Print(line)
}

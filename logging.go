package transitsync

import (
	"log"
	"os"
)

// InitLogging sends log output to stderr so itinerary output on stdout stays
// pipeable.
func InitLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

var debugMode bool

// SetDebug toggles debug logging for the process.
func SetDebug(enable bool) {
	debugMode = enable
}

// Debugf logs only when debug mode is enabled.
func Debugf(format string, v ...any) {
	if debugMode {
		log.Printf("[DEBUG] "+format, v...)
	}
}

// Package obs holds the process-wide JSON logger and HTTP metrics.
package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the shared structured logger used across the service.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogJSON emits entry as a single JSON line.  ts and level are filled in
// when missing.
func LogJSON(entry map[string]any) {
	if _, ok := entry["ts"]; !ok {
		entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if _, ok := entry["level"]; !ok {
		entry["level"] = "info"
	}
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}

// Error logs msg at error level with err attached.
func Error(msg string, err error, fields map[string]any) {
	entry := map[string]any{"level": "error", "msg": msg}
	if err != nil {
		entry["error"] = err.Error()
	}
	for k, v := range fields {
		entry[k] = v
	}
	LogJSON(entry)
}

// Info logs msg at info level.
func Info(msg string, fields map[string]any) {
	entry := map[string]any{"level": "info", "msg": msg}
	for k, v := range fields {
		entry[k] = v
	}
	LogJSON(entry)
}

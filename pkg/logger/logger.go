// Package logger is the area-based file logger. Every call names an area; areas
// and the minimum level are switched in the [Debug] section of the settings file.
// Until Initialize has run every call is a no-op.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/antibyte/retrobasic/pkg/configuration"
)

// LogLevel orders log entries by severity.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	}
	return "UNKNOWN"
}

// LogArea names the subsystem an entry belongs to.
type LogArea string

const (
	AreaTinyBasic  LogArea = "tinybasic"
	AreaFileSystem LogArea = "filesystem"
	AreaDatabase   LogArea = "database"
	AreaConsole    LogArea = "console"
	AreaWebSocket  LogArea = "websocket"
	AreaAuth       LogArea = "auth"
	AreaSession    LogArea = "session"
	AreaConfig     LogArea = "config"
	AreaGeneral    LogArea = "general"
)

var allAreas = []LogArea{
	AreaTinyBasic, AreaFileSystem, AreaDatabase, AreaConsole, AreaWebSocket,
	AreaAuth, AreaSession, AreaConfig, AreaGeneral,
}

// Logger writes entries to a size-rotated file.
type Logger struct {
	enabled     int32 // atomic bool
	level       int32 // atomic LogLevel
	areaEnabled map[LogArea]*int32

	mutex         sync.Mutex
	file          *os.File
	logPath       string
	maxSizeMB     int64
	rotationCount int
	currentSize   int64
}

var (
	globalLogger *Logger
	initOnce     sync.Once
)

// Initialize creates the global logger from the [Debug] settings.
func Initialize() error {
	var err error
	initOnce.Do(func() {
		globalLogger, err = newLogger()
	})
	return err
}

func newLogger() (*Logger, error) {
	l := &Logger{areaEnabled: make(map[LogArea]*int32, len(allAreas))}
	for _, area := range allAreas {
		l.areaEnabled[area] = new(int32)
	}
	l.loadConfig()
	if err := l.openLogFile(); err != nil {
		return nil, fmt.Errorf("open log file %s: %w", l.logPath, err)
	}
	return l, nil
}

func (l *Logger) loadConfig() {
	atomic.StoreInt32(&l.enabled, boolToInt32(configuration.GetBool("Debug", "enable_debug_logging", false)))
	atomic.StoreInt32(&l.level, int32(parseLogLevel(configuration.GetString("Debug", "log_level", "INFO"))))

	l.logPath = configuration.GetString("Debug", "log_file", "retrobasic.log")
	l.maxSizeMB = int64(configuration.GetInt("Debug", "max_log_size_mb", 10))
	l.rotationCount = configuration.GetInt("Debug", "log_rotation_count", 3)

	for area, flag := range l.areaEnabled {
		on := configuration.GetBool("Debug", "log_"+string(area), area != AreaTinyBasic)
		atomic.StoreInt32(flag, boolToInt32(on))
	}
}

func (l *Logger) openLogFile() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.file != nil {
		l.file.Close()
	}
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0755); err != nil {
		return err
	}
	file, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	l.file = file
	if stat, err := file.Stat(); err == nil {
		l.currentSize = stat.Size()
	}
	return nil
}

// rotate shifts log.N to log.N+1, keeping rotationCount files. Caller holds the mutex.
func (l *Logger) rotate() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	os.Remove(fmt.Sprintf("%s.%d", l.logPath, l.rotationCount))
	for i := l.rotationCount - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", l.logPath, i), fmt.Sprintf("%s.%d", l.logPath, i+1))
	}
	os.Rename(l.logPath, l.logPath+".1")

	file, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Printf("[ERROR] [GENERAL] reopen log file: %v", err)
		return
	}
	l.file = file
	l.currentSize = 0
}

func (l *Logger) shouldLog(level LogLevel, area LogArea) bool {
	if atomic.LoadInt32(&l.enabled) == 0 && level < WARN {
		return false
	}
	if atomic.LoadInt32(&l.level) > int32(level) {
		return false
	}
	flag, ok := l.areaEnabled[area]
	return ok && atomic.LoadInt32(flag) != 0
}

func (l *Logger) write(level LogLevel, area LogArea, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, file, line, _ := runtime.Caller(2)
	entry := fmt.Sprintf("[%s] %s [%s:%d] [%s] %s\n",
		time.Now().Format("2006-01-02 15:04:05.000"),
		level, filepath.Base(file), line, strings.ToUpper(string(area)), message)

	l.mutex.Lock()
	if l.file != nil {
		if n, err := l.file.WriteString(entry); err == nil {
			l.currentSize += int64(n)
			if l.maxSizeMB > 0 && l.currentSize > l.maxSizeMB*1024*1024 {
				l.rotate()
			}
		}
	}
	l.mutex.Unlock()

	// WARN and above also go to the standard logger (stderr).
	if level >= WARN {
		log.Printf("[%s] [%s] %s", level, strings.ToUpper(string(area)), message)
	}
}

// Debug logs at DEBUG level.
func Debug(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.shouldLog(DEBUG, area) {
		globalLogger.write(DEBUG, area, format, args...)
	}
}

// Info logs at INFO level.
func Info(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.shouldLog(INFO, area) {
		globalLogger.write(INFO, area, format, args...)
	}
}

// Warn logs at WARN level.
func Warn(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.shouldLog(WARN, area) {
		globalLogger.write(WARN, area, format, args...)
	}
}

// Error logs at ERROR level.
func Error(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.shouldLog(ERROR, area) {
		globalLogger.write(ERROR, area, format, args...)
	}
}

// Fatal logs and exits the process.
func Fatal(area LogArea, format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.write(FATAL, area, format, args...)
	}
	log.Fatalf("[FATAL] [%s] %s", strings.ToUpper(string(area)), fmt.Sprintf(format, args...))
}

// EnableArea switches an area on at runtime.
func EnableArea(area LogArea) {
	setArea(area, true)
}

// DisableArea switches an area off at runtime.
func DisableArea(area LogArea) {
	setArea(area, false)
}

func setArea(area LogArea, on bool) {
	if globalLogger == nil {
		return
	}
	if flag, ok := globalLogger.areaEnabled[area]; ok {
		atomic.StoreInt32(flag, boolToInt32(on))
	}
}

// ListAreas returns every known area.
func ListAreas() []LogArea {
	return append([]LogArea(nil), allAreas...)
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func parseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Close flushes and closes the log file.
func Close() {
	if globalLogger == nil {
		return
	}
	globalLogger.mutex.Lock()
	defer globalLogger.mutex.Unlock()
	if globalLogger.file != nil {
		globalLogger.file.Sync()
		globalLogger.file.Close()
		globalLogger.file = nil
	}
}

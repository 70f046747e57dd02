package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из строки (trace|debug|info|warn|error).
// Неизвестные значения трактуются как INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TRACE
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Directory — каталог для файлов логов. Пустая строка отключает файловый вывод;
// cmd выставляет его из конфигурации до создания логгеров.
var Directory = ""

// Logger представляет логгер компонента с консольным и файловым выводом
type Logger struct {
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
	mu              sync.Mutex
}

var (
	defaultLogger = &Logger{
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		minConsoleLevel: levelFromEnv(),
		minFileLevel:    TRACE,
	}
	defaultMu sync.RWMutex
)

var (
	configuredLevel   = INFO
	configuredLevelMu sync.RWMutex
)

// levelFromEnv возвращает уровень из LOG_LEVEL, иначе заданный через Configure
func levelFromEnv() LogLevel {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		return ParseLevel(env)
	}
	configuredLevelMu.RLock()
	defer configuredLevelMu.RUnlock()
	return configuredLevel
}

// Configure задаёт каталог файлов и уровень консоли для новых и уже
// созданных логгеров. LOG_LEVEL в окружении имеет приоритет.
func Configure(level LogLevel, dir string) {
	configuredLevelMu.Lock()
	configuredLevel = level
	Directory = dir
	configuredLevelMu.Unlock()

	effective := levelFromEnv()
	SetDefaultLevel(effective)

	lm := GetLoggerManager()
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	for _, l := range lm.loggers {
		l.SetLevel(effective)
	}
}

// NewLogger создаёт логгер компонента.
// Файл пишется в Directory/<component>_<время>.log, если Directory задан.
func NewLogger(component string) (*Logger, error) {
	l := &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		minConsoleLevel: levelFromEnv(),
		minFileLevel:    TRACE,
	}

	if Directory == "" {
		return l, nil
	}

	if err := os.MkdirAll(Directory, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", Directory, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(Directory, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	l.file = file
	l.fileLogger = log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	return l, nil
}

// NewWriterLogger создаёт логгер, пишущий в произвольный writer (без файла).
// Используется в тестах и утилитах.
func NewWriterLogger(component string, w io.Writer, level LogLevel) *Logger {
	return &Logger{
		component:       component,
		consoleLogger:   log.New(w, "", 0),
		minConsoleLevel: level,
		minFileLevel:    ERROR,
	}
}

// SetLevel меняет минимальный уровень консольного вывода
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.minConsoleLevel = level
	l.mu.Unlock()
}

// Close закрывает файловый вывод логгера
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var message string
	if l.component != "" {
		message = fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))
	} else {
		message = fmt.Sprintf("[%s] %s", level.String(), fmt.Sprintf(format, args...))
	}

	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}
	if l.consoleLogger != nil && level >= l.minConsoleLevel {
		l.consoleLogger.Println(message)
	}
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.logf(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.logf(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.logf(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.logf(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.logf(ERROR, format, args...) }

// InitDefaultLogger инициализирует глобальный логгер с файловым выводом
func InitDefaultLogger(component string) error {
	l, err := NewLogger(component)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	return nil
}

// SetDefaultLevel меняет уровень консольного вывода глобального логгера
func SetDefaultLevel(level LogLevel) {
	current().SetLevel(level)
}

// CloseDefaultLogger закрывает глобальный логгер
func CloseDefaultLogger() {
	_ = current().Close()
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Trace логирует сообщение уровня TRACE глобальным логгером
func Trace(format string, args ...interface{}) { current().Trace(format, args...) }

// Debug логирует сообщение уровня DEBUG глобальным логгером
func Debug(format string, args ...interface{}) { current().Debug(format, args...) }

// Info логирует сообщение уровня INFO глобальным логгером
func Info(format string, args ...interface{}) { current().Info(format, args...) }

// Warn логирует сообщение уровня WARN глобальным логгером
func Warn(format string, args ...interface{}) { current().Warn(format, args...) }

// Error логирует сообщение уровня ERROR глобальным логгером
func Error(format string, args ...interface{}) { current().Error(format, args...) }

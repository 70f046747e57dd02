package logging

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Имена компонентов симуляции
const (
	ComponentWorld   = "world"
	ComponentCombat  = "combat"
	ComponentStage   = "stage"
	ComponentStorage = "storage"
	ComponentServer  = "server"
	ComponentRunner  = "runner"
	ComponentEvents  = "events"
)

// LoggerManager хранит логгеры компонентов и их уровни
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает общий менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{loggers: make(map[string]*Logger)}
	})
	return globalManager
}

func (lm *LoggerManager) lookup(component string) (*Logger, bool) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	l, ok := lm.loggers[component]
	return l, ok
}

// GetLogger возвращает логгер компонента; первый вызов создаёт его
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	if l, ok := lm.lookup(component); ok {
		return l, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}

	l, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger как GetLogger, но при ошибке файла отдаёт консольный логгер
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err == nil {
		return l
	}

	base := current()
	fallback := &Logger{
		component:       component,
		consoleLogger:   base.consoleLogger,
		minConsoleLevel: levelFromEnv(),
		minFileLevel:    ERROR,
	}
	base.Warn("⚠️ Файловый лог для %s недоступен: %v", component, err)

	lm.mu.Lock()
	lm.loggers[component] = fallback
	lm.mu.Unlock()
	return fallback
}

// Register подменяет логгер компонента, например writer-логгером в тестах
func (lm *LoggerManager) Register(component string, logger *Logger) {
	lm.mu.Lock()
	lm.loggers[component] = logger
	lm.mu.Unlock()
}

// Components возвращает отсортированные имена зарегистрированных компонентов
func (lm *LoggerManager) Components() []string {
	lm.mu.RLock()
	names := make([]string, 0, len(lm.loggers))
	for name := range lm.loggers {
		names = append(names, name)
	}
	lm.mu.RUnlock()

	sort.Strings(names)
	return names
}

// SetLogLevel задаёт уровни консоли и файла уже созданного логгера
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	l, ok := lm.lookup(component)
	if !ok {
		return fmt.Errorf("логгер компонента %s не найден", component)
	}

	l.mu.Lock()
	l.minConsoleLevel = consoleLevel
	l.minFileLevel = fileLevel
	l.mu.Unlock()
	return nil
}

// ApplyComponentLevels выставляет консольные уровни по карте компонент → уровень
// (секция logging.components конфигурации). Отсутствующие логгеры создаются.
func (lm *LoggerManager) ApplyComponentLevels(levels map[string]string) error {
	for component, level := range levels {
		component = strings.TrimSpace(component)
		if component == "" {
			return fmt.Errorf("пустое имя компонента для уровня %q", level)
		}
		lm.MustGetLogger(component).SetLevel(ParseLevel(level))
	}
	return nil
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var firstErr error
	for name, l := range lm.loggers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("закрытие логгера %s: %w", name, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return firstErr
}

// GetComponentLogger возвращает логгер компонента из общего менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetWorldLogger() *Logger   { return GetComponentLogger(ComponentWorld) }
func GetCombatLogger() *Logger  { return GetComponentLogger(ComponentCombat) }
func GetStageLogger() *Logger   { return GetComponentLogger(ComponentStage) }
func GetStorageLogger() *Logger { return GetComponentLogger(ComponentStorage) }
func GetServerLogger() *Logger  { return GetComponentLogger(ComponentServer) }
func GetRunnerLogger() *Logger  { return GetComponentLogger(ComponentRunner) }
func GetEventsLogger() *Logger  { return GetComponentLogger(ComponentEvents) }

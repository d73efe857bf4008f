package logging

import (
	"fmt"
	"sort"
	"sync"
)

// Компоненты с собственным логгером
const (
	ComponentRecorder = "recorder"
	ComponentPlayback = "playback"
	ComponentStorage  = "storage"
	ComponentEventBus = "eventbus"
)

// LoggerManager хранит по одному логгеру на компонент
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
	level   LogLevel
	leveled bool // level задан через SetLevelAll и применяется к новым логгерам
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{loggers: make(map[string]*Logger)}
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}
	l, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger for %s: %w", component, err)
	}
	if lm.leveled {
		l.SetLevel(lm.level)
	}
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger как GetLogger, но при ошибке (например, файл логов не создать)
// возвращает консольный логгер
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err == nil {
		return l
	}
	fallback := &Logger{
		component:       component,
		consoleLogger:   Default().consoleLogger,
		minConsoleLevel: INFO,
		minFileLevel:    ERROR,
	}
	fallback.Warn("файловый лог недоступен: %v", err)
	return fallback
}

// SetLevelAll меняет консольный уровень всех существующих и будущих логгеров
func (lm *LoggerManager) SetLevelAll(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.level, lm.leveled = level, true
	for _, l := range lm.loggers {
		l.SetLevel(level)
	}
}

// SetLogLevel устанавливает уровни консоли и файла для одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	l, ok := lm.loggers[component]
	lm.mu.Unlock()
	if !ok {
		return fmt.Errorf("logger for component %s not found", component)
	}

	l.mu.Lock()
	l.minConsoleLevel = consoleLevel
	l.minFileLevel = fileLevel
	l.mu.Unlock()
	return nil
}

// Components имена компонентов с созданными логгерами, по алфавиту
func (lm *LoggerManager) Components() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	names := make([]string, 0, len(lm.loggers))
	for c := range lm.loggers {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for c, l := range lm.loggers {
		if err := l.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close logger for %s: %w", c, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return lastErr
}

func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetRecorderLogger() *Logger { return GetComponentLogger(ComponentRecorder) }
func GetPlaybackLogger() *Logger { return GetComponentLogger(ComponentPlayback) }
func GetStorageLogger() *Logger  { return GetComponentLogger(ComponentStorage) }
func GetEventBusLogger() *Logger { return GetComponentLogger(ComponentEventBus) }

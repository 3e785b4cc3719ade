package main

import (
	"log/slog"
	"sync"
)

// loggingNavigator is the process-level stand-in for a browser location bar:
// it tracks the current path and logs every navigation.
type loggingNavigator struct {
	logger *slog.Logger

	mu   sync.Mutex
	path string
}

func newLoggingNavigator(path string, logger *slog.Logger) *loggingNavigator {
	return &loggingNavigator{logger: logger, path: path}
}

func (n *loggingNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *loggingNavigator) NavigateTo(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
	n.logger.Info("navigate", "path", path)
}

func (n *loggingNavigator) Reload() {
	n.logger.Info("reload requested")
}

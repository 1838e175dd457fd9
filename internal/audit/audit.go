// Package audit appends one structured JSON entry per processed signal to a
// log file. The log is the only persistence in the system.
package audit

import (
	"encoding/json"
	"os"
	"sync"

	"hooktrade/internal/core"
)

// Log is an append-only JSON-lines event sink
type Log struct {
	logger core.ILogger

	mu   sync.Mutex
	file *os.File
}

// Open opens (or creates) the audit log at path
func Open(path string, logger core.ILogger) (*Log, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	return &Log{
		logger: logger.WithField("component", "audit"),
		file:   file,
	}, nil
}

// Record appends one event. A sink failure is logged but never propagated:
// the audit trail must not fail the signal it records.
func (l *Log) Record(event core.AuditEvent) {
	line, err := json.Marshal(event)
	if err != nil {
		l.logger.Error("failed to encode audit event", "error", err)
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Write(line); err != nil {
		l.logger.Error("failed to append audit event", "error", err)
	}
}

// Close flushes and closes the underlying file
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

var _ core.IAuditSink = (*Log)(nil)

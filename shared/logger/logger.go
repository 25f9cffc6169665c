// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// Logger provides structured logging scoped to a single assistant component.
type Logger struct {
	Component  string
	InstanceID string
	Container  string
}

// LogEntry is the JSON shape written for every log line.
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	Component string                 `json:"component"`
	Instance  string                 `json:"instance_id"`
	Container string                 `json:"container"`
	SessionID string                 `json:"session_id"`
	RequestID string                 `json:"request_id,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// New creates a Logger for the named component.
func New(component string) *Logger {
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = "unknown"
	}

	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		Container:  container,
	}
}

// Log writes a structured entry to stdout.
func (l *Logger) Log(level LogLevel, sessionID, requestID, message string, fields map[string]interface{}) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Component: l.Component,
		Instance:  l.InstanceID,
		Container: l.Container,
		SessionID: sessionID,
		RequestID: requestID,
		Message:   message,
		Fields:    fields,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		log.Printf("ERROR: Failed to marshal log entry: %v", err)
		return
	}

	log.Println(string(jsonBytes))
}

// Info logs an informational message
func (l *Logger) Info(sessionID, requestID, message string, fields map[string]interface{}) {
	l.Log(INFO, sessionID, requestID, message, fields)
}

// Error logs an error message
func (l *Logger) Error(sessionID, requestID, message string, fields map[string]interface{}) {
	l.Log(ERROR, sessionID, requestID, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(sessionID, requestID, message string, fields map[string]interface{}) {
	l.Log(WARN, sessionID, requestID, message, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(sessionID, requestID, message string, fields map[string]interface{}) {
	l.Log(DEBUG, sessionID, requestID, message, fields)
}

// WithError attaches err to fields and logs at ERROR level.
func (l *Logger) WithError(sessionID, requestID, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(sessionID, requestID, message, fields)
}

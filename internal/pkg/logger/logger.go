package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// SimpleLogger é a implementação concreta da interface Logger,
// com output JSON estruturado via log/slog.
type SimpleLogger struct {
	logger *slog.Logger
}

// NewLogger cria e retorna uma nova instância do Logger escrevendo em stdout.
// Esta função é chamada no main.go.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stdout)
}

// NewLoggerWithWriter cria um Logger que escreve no writer informado.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &SimpleLogger{logger: slog.New(handler)}
}

// parseLevel converte o nível textual; valores desconhecidos viram info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (l *SimpleLogger) log(level slog.Level, msg string, fields map[string]interface{}, err error) {
	if !l.logger.Enabled(context.Background(), level) {
		return
	}

	attrs := make([]any, 0, len(fields)*2+2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	l.logger.Log(context.Background(), level, msg, attrs...)
}

// Implementações da Interface Logger

func (l *SimpleLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(slog.LevelDebug, msg, fields, nil)
}

func (l *SimpleLogger) Info(msg string, fields map[string]interface{}) {
	l.log(slog.LevelInfo, msg, fields, nil)
}

func (l *SimpleLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(slog.LevelWarn, msg, fields, nil)
}

func (l *SimpleLogger) Error(msg string, err error) {
	l.log(slog.LevelError, msg, nil, err)
}

// Fatal registra o erro e encerra o processo.
func (l *SimpleLogger) Fatal(msg string, err error) {
	l.log(slog.LevelError, msg, map[string]interface{}{"fatal": true}, err)
	os.Exit(1)
}

package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestSetupWithWriter_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter("production", &buf)

	Info("payment recorded", "guest_id", "g-1")

	assert.Contains(t, buf.String(), `"msg":"payment recorded"`)
	assert.Contains(t, buf.String(), `"guest_id":"g-1"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter("development", &buf)

	l := NewGormLogger(gormlogger.Error, 0)
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM guests", 0
	}, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM guests", 0
	}, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "SQL Error")
}

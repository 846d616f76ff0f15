// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitledger/chaindb/conf"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level Lvl
		name  string
	}{
		{LvlCrit, "Crit"},
		{LvlFatal, "Fatal"},
		{LvlError, "Error"},
		{LvlWarn, "Warn"},
		{LvlInfo, "Info"},
		{LvlDebug, "Debug"},
		{LvlTrace, "Trace"},
	}

	for i, tt := range tests {
		if int(tt.level) != i {
			t.Errorf("Level %s expected value %d, got %d", tt.name, i, tt.level)
		}
	}
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = &logger{}
}

func TestRootLogger(t *testing.T) {
	if Root() == nil {
		t.Fatal("Root logger should not be nil")
	}
}

func TestNewLogger(t *testing.T) {
	l := New("module", "test")
	if l == nil {
		t.Fatal("New logger should not be nil")
	}
}

func TestLogManagerCreation(t *testing.T) {
	manager := NewLogManager("/tmp/test_logs", 100)
	if manager.logDir != "/tmp/test_logs" {
		t.Errorf("logDir = %s, want /tmp/test_logs", manager.logDir)
	}
	if manager.totalSizeCap != 100*1024*1024 {
		t.Errorf("totalSizeCap = %d, want %d", manager.totalSizeCap, 100*1024*1024)
	}
}

func TestLogManagerStartStop(t *testing.T) {
	manager := NewLogManager("/tmp/test_logs", 100)
	manager.Start()
	time.Sleep(100 * time.Millisecond)
	manager.Stop()
}

func TestLogManagerNoSizeCap(t *testing.T) {
	manager := NewLogManager("/tmp/test_logs", 0)
	manager.Start() // no background task for a zero cap
	manager.Stop()
}

func TestInitConsoleOnly(t *testing.T) {
	loggerConfig := conf.LoggerConfig{
		LogFile: "",
		Level:   "info",
		MaxSize: 100,
		Console: true,
	}
	Init(t.TempDir(), loggerConfig)
	Info("test console output")
}

func TestInitWithFile(t *testing.T) {
	tmpDir := t.TempDir()
	loggerConfig := conf.LoggerConfig{
		LogFile:    "test.log",
		Level:      "debug",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     1,
		Compress:   false,
		Console:    true,
		JSONFormat: true,
		LocalTime:  true,
	}
	Init(tmpDir, loggerConfig)
	Info("test file output")

	logDir := filepath.Join(tmpDir, "log")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("log directory was not created: %s", logDir)
	}
	Close()
}

func TestLogOutput(t *testing.T) {
	tmpDir := t.TempDir()
	loggerConfig := conf.LoggerConfig{
		LogFile:    "test.log",
		Level:      "trace",
		MaxSize:    10,
		Console:    false,
		JSONFormat: true,
	}
	Init(tmpDir, loggerConfig)

	Trace("trace message")
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	Tracef("trace %s", "formatted")
	Debugf("debug %s", "formatted")
	Infof("info %s", "formatted")
	Warnf("warn %s", "formatted")
	Errorf("error %s", "formatted")

	Info("with context", "key1", "value1", "key2", 123)

	Close()
}

func TestLoggerWithContext(t *testing.T) {
	l := New("module", "test", "version", "1.0")
	l.Info("test message", "extra", "data")
}

func TestLogFileInfo(t *testing.T) {
	info := logFileInfo{
		path:    "/tmp/test.log",
		size:    1024,
		modTime: time.Now(),
	}
	if info.path != "/tmp/test.log" {
		t.Errorf("path = %s, want /tmp/test.log", info.path)
	}
	if info.size != 1024 {
		t.Errorf("size = %d, want 1024", info.size)
	}
}

func TestCtxToArray(t *testing.T) {
	ctx := Ctx{
		"key1": "value1",
		"key2": 123,
	}
	arr := ctx.toArray()
	if len(arr) != 4 {
		t.Errorf("len(arr) = %d, want 4", len(arr))
	}
}

func TestNormalizeOddLength(t *testing.T) {
	ctx := []interface{}{"key1", "value1", "key2"}
	normalized := normalize(ctx)
	if len(normalized) != 4 {
		t.Errorf("len(normalized) = %d, want 4", len(normalized))
	}
	if normalized[3] != nil {
		t.Errorf("normalized[3] = %v, want nil", normalized[3])
	}
}

func BenchmarkLogInfo(b *testing.B) {
	tmpDir := b.TempDir()
	loggerConfig := conf.LoggerConfig{
		LogFile:    "bench.log",
		Level:      "info",
		MaxSize:    100,
		Console:    false,
		JSONFormat: true,
	}
	Init(tmpDir, loggerConfig)
	defer Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Info("benchmark message", "iteration", i)
	}
}

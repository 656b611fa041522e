package xzap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetUp(t *testing.T) {
	l, err := SetUp(LogConf{ServiceName: "opend", Mode: ModeConsole, Level: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = SetUp(LogConf{Level: "loud"})
	assert.Error(t, err)

	_, err = SetUp(LogConf{Mode: "syslog"})
	assert.Error(t, err)
}

func TestSetUpFile(t *testing.T) {
	dir := t.TempDir()
	l, err := SetUp(LogConf{Mode: ModeFile, Path: dir, Level: "info", MaxSize: 1})
	require.NoError(t, err)
	l.Info("hello")
	_ = l.Sync()
	assert.FileExists(t, dir+"/"+defaultLogName)
}

func TestTraceID(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))
	ctx := NewContext(context.Background(), "abc")
	assert.Equal(t, "abc", TraceID(ctx))
	assert.NotNil(t, WithContext(ctx))
}

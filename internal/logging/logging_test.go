package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenLogFile_Disabled(t *testing.T) {
	file, err := OpenLogFile("")
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestAttachFileLogger_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "caixa.log")
	file, err := OpenLogFile(path)
	require.NoError(t, err)
	defer file.Close()

	logger := AttachFileLogger(zap.NewNop(), file, false)
	logger.Debug("hidden")
	logger.Info("register opened", zap.String("register_id", "r-1"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"msg":"register opened"`)
	assert.Contains(t, content, `"register_id":"r-1"`)
	assert.False(t, strings.Contains(content, "hidden"))
}

func TestAttachFileLogger_NilFile(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, AttachFileLogger(base, nil, true))
}

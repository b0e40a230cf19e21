package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/user/.config", "tasklist"), GlobalDir("/home/user/.config"))
	assert.Equal(t, filepath.Join("/home/user/.config", "tasklist", "config.toml"), GlobalConfigPath("/home/user/.config"))
}

func TestDataPaths(t *testing.T) {
	dir := filepath.Join("/data", "tasklist")

	assert.Equal(t, filepath.Join(dir, "tasks.db"), DBPath(dir))
	assert.Equal(t, filepath.Join(dir, "tasks.json"), JSONStorePath(dir))
	assert.Equal(t, filepath.Join(dir, "logs"), LogDir(dir))
	assert.Equal(t, filepath.Join(dir, "logs", "tasks.log"), LogPath(LogDir(dir)))
}

func TestLogDir_EmptyDataDirDisablesLogging(t *testing.T) {
	assert.Empty(t, LogDir(""))
}

func TestDBPath_RelativeWithoutDataDir(t *testing.T) {
	assert.Equal(t, "tasks.db", DBPath(""))
	assert.Equal(t, "tasks.json", JSONStorePath(""))
}

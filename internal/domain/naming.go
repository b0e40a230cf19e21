package domain

import "path/filepath"

// Directory and file names.
const (
	AppDirName     = "tasklist"    // Directory under XDG_CONFIG_HOME
	ConfigFileName = "config.toml" // Config file name
	DBFileName     = "tasks.db"    // SQLite store file name
	JSONFileName   = "tasks.json"  // JSON store file name
	LogFileName    = "tasks.log"   // Log file name
)

// GlobalDir returns the application directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalDir(configHome), ConfigFileName)
}

// DBPath returns the default SQLite database path inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFileName)
}

// JSONStorePath returns the default JSON store path inside dataDir.
func JSONStorePath(dataDir string) string {
	return filepath.Join(dataDir, JSONFileName)
}

// LogDir returns the default log directory inside dataDir.
func LogDir(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "logs")
}

// LogPath returns the log file path inside logDir.
func LogPath(logDir string) string {
	return filepath.Join(logDir, LogFileName)
}

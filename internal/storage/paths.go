package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const saveFileName = "save.json"

// DefaultSavePath возвращает путь к файлу сохранения по соглашениям ОС:
// Linux — $XDG_DATA_HOME/<app> или ~/.local/share/<app>,
// Windows — %APPDATA%\<app>, macOS — ~/Library/Application Support/<app>.
func DefaultSavePath(appName string) (string, error) {
	home, _ := os.UserHomeDir()
	return savePathFor(runtime.GOOS, home, os.Getenv, appName)
}

func savePathFor(goos, home string, getenv func(string) string, appName string) (string, error) {
	var dir string

	switch goos {
	case "windows":
		dir = getenv("APPDATA")
		if dir == "" {
			if home == "" {
				return "", errors.New("не задан APPDATA и неизвестен домашний каталог")
			}
			dir = filepath.Join(home, "AppData", "Roaming")
		}
	case "darwin":
		if home == "" {
			return "", errors.New("неизвестен домашний каталог")
		}
		dir = filepath.Join(home, "Library", "Application Support")
	default:
		dir = getenv("XDG_DATA_HOME")
		if dir == "" {
			if home == "" {
				return "", errors.New("неизвестен домашний каталог")
			}
			dir = filepath.Join(home, ".local", "share")
		}
	}

	return filepath.Join(dir, appName, saveFileName), nil
}

package utils

import "os"

// IsValidFolder checks if the provided path is a valid directory
func IsValidFolder(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// FileExists checks if the provided path is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// EnsureFolder creates path and its parents when missing
func EnsureFolder(path string) error {
	if IsValidFolder(path) {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}

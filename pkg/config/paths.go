// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// GetRimeDataDir returns the Rime data directory.
//
// Priority:
// 1. RIME_DATA_DIR environment variable (if set and non-empty)
// 2. ~/.rime (default)
//
// The returned path is always absolute. Tilde (~) in RIME_DATA_DIR is expanded
// to the user's home directory. Relative paths are converted to absolute paths.
//
// This function is called during bootstrap (before the config file is loaded)
// to locate the config file itself, so it reads directly from os.Getenv()
// rather than viper.
//
// Examples:
//
//	RIME_DATA_DIR=/custom/rime        -> /custom/rime
//	RIME_DATA_DIR=~/my-rime           -> /home/user/my-rime
//	RIME_DATA_DIR=relative/path       -> /current/dir/relative/path
//	RIME_DATA_DIR not set             -> /home/user/.rime
func GetRimeDataDir() string {
	// Check environment variable first
	if dataDir := os.Getenv("RIME_DATA_DIR"); dataDir != "" {
		return expandPath(dataDir)
	}

	// Fall back to ~/.rime
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir cannot be determined
		return ".rime"
	}
	return filepath.Join(homeDir, ".rime")
}

// GetRimeSubDir returns a subdirectory within the Rime data directory.
// Example: GetRimeSubDir("logs") returns ~/.rime/logs
func GetRimeSubDir(subdir string) string {
	return filepath.Join(GetRimeDataDir(), subdir)
}

// expandPath expands ~ and resolves to absolute path
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path // Return as-is if we can't get home dir
		}
		return filepath.Join(homeDir, path[2:])
	}

	// Make path absolute
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path // Return as-is if we can't make it absolute
	}
	return absPath
}

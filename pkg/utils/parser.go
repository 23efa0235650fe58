// Package utils provides common helper functions for string manipulation,
// data parsing, and HTTP plumbing used across the application.
package utils

import (
	"memorial/pkg/logger"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// sizeRegex matches a number followed optionally by a unit string.
// It allows flexible spacing between the number and the unit.
var sizeRegex = regexp.MustCompile(`^(\d+)\s*([a-zA-Z]*)$`)

// unitMultipliers maps data size units to their byte values using binary prefixes (IEC standard).
// 1 KB = 1024 Bytes, 1 MB = 1024 * 1024 Bytes, etc.
var unitMultipliers = map[string]int64{
	"":   1,       // Bytes (default)
	"B":  1,       // Bytes
	"KB": 1 << 10, // Kibibyte (1024)
	"MB": 1 << 20, // Mebibyte (1024^2)
	"GB": 1 << 30, // Gibibyte (1024^3)
}

// SizeToBytes parses a human-readable data size string into its integer byte representation.
// It supports binary prefixes (KB, MB, GB) where 1KB = 1024 Bytes.
//
// The input string is case-insensitive and tolerates whitespace (e.g., "5MB", "5 MB", "5mb").
// defaultValue is returned if parsing fails or the unit is unsupported.
func SizeToBytes(sizeStr string, defaultValue int64) int64 {
	rawStr := strings.TrimSpace(strings.ToUpper(sizeStr))
	if rawStr == "" {
		return defaultValue
	}

	matches := sizeRegex.FindStringSubmatch(rawStr)
	if len(matches) != 3 {
		logger.LogWarn("Utils: Invalid size format '%s', using default.", sizeStr)
		return defaultValue
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil || value <= 0 {
		logger.LogWarn("Utils: Invalid numeric value in '%s', using default.", sizeStr)
		return defaultValue
	}

	multiplier, exists := unitMultipliers[matches[2]]
	if !exists {
		logger.LogWarn("Utils: Unsupported unit '%s' in '%s', using default.", matches[2], sizeStr)
		return defaultValue
	}

	return value * multiplier
}

// ParseDuration is time.ParseDuration with a fallback for empty or broken input.
func ParseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// ParseInt safely parses a string to int with bounds checking.
// Usage: ParseInt("3", 1, 1, 500) -> Returns 3
// Usage: ParseInt("abc", 1, 1, 500) -> Returns 1 (Default)
// Usage: ParseInt("9999", 1, 1, 500) -> Returns 500 (Max)
func ParseInt(value string, def int, min int, max int) int {
	if value == "" {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	if i < min {
		return min
	}
	if i > max {
		return max
	}
	return i
}

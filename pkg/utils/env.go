package utils

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"memorial/pkg/logger"
)

// LoadEnv reads a .env file from the working directory into the process
// environment. Variables that are already set win over the file.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		logger.LogWarn("Could not read .env file: %v", err)
	}
}

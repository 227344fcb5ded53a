package main

import (
	"os"

	"github.com/yigit/lms/internal/pkg/logger"
)

// @title LMS API
// @version 1.0.0
// @description LMS API: Users, Courses, Enrollments

// @host localhost:8080
// @BasePath /api

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

package services

import (
	"os"
	"testing"

	"github.com/rdd81/smart-budget-app/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	os.Exit(m.Run())
}

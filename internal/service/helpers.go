package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

func clampPageSize(size int) int {
	if size <= 0 {
		return 20
	}
	if size > 100 {
		return 100
	}
	return size
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func normalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "system"
	}
	return r
}

// notFound maps a missing row onto the module sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(models.DateLayout, strings.TrimSpace(value))
}

func validateRange(from, to string) error {
	if from == "" || to == "" {
		return nil
	}
	if from > to {
		return ErrInvalidDateRange
	}
	return nil
}

func stringPtr(value string) *string {
	return &value
}

func timePtr(value time.Time) *time.Time {
	return &value
}

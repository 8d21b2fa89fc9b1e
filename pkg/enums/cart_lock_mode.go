package enums

import "fmt"

// CartLockMode decides how concurrent writes to one cart session are serialized.
type CartLockMode string

const (
	// CartLockModeLocal serializes writers inside a single API process.
	CartLockModeLocal CartLockMode = "local"
	// CartLockModeRedis serializes writers across API replicas sharing Redis.
	CartLockModeRedis CartLockMode = "redis"
)

var validCartLockModes = []CartLockMode{
	CartLockModeLocal,
	CartLockModeRedis,
}

func (m CartLockMode) String() string {
	return string(m)
}

func (m CartLockMode) IsValid() bool {
	for _, candidate := range validCartLockModes {
		if candidate == m {
			return true
		}
	}
	return false
}

func ParseCartLockMode(value string) (CartLockMode, error) {
	for _, candidate := range validCartLockModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart lock mode %q", value)
}

package enums

import "fmt"

// CartBackend selects where cart sessions are persisted between requests.
type CartBackend string

const (
	CartBackendDB     CartBackend = "db"
	CartBackendRedis  CartBackend = "redis"
	CartBackendMemory CartBackend = "memory"
)

var validCartBackends = []CartBackend{
	CartBackendDB,
	CartBackendRedis,
	CartBackendMemory,
}

// String implements fmt.Stringer.
func (c CartBackend) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartBackend.
func (c CartBackend) IsValid() bool {
	for _, candidate := range validCartBackends {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartBackend converts raw input into a CartBackend.
func ParseCartBackend(value string) (CartBackend, error) {
	for _, candidate := range validCartBackends {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart backend %q", value)
}

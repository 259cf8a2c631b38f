package cache

import (
	"fmt"
	"strings"
)

type EntityType string

const (
	EntityRate EntityType = "rate"
)

type KeyType string

const (
	KeyCode KeyType = "code"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	if s, ok := value.(string); ok {
		value = strings.ToUpper(s)
	}
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

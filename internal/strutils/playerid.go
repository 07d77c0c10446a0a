package strutils

import (
	"fmt"
	"strings"
)

const maxPlayerIDLength = 20

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Player ids are decimal strings as found in the record page URL
func NormalizePlayerID(playerID string) (string, error) {
	normalized := strings.TrimSpace(playerID)
	if normalized == "" {
		return "", fmt.Errorf("player id is empty")
	}
	if len(normalized) > maxPlayerIDLength {
		return "", fmt.Errorf("player id is too long (%d)", len(normalized))
	}
	if !isDigits(normalized) {
		return "", fmt.Errorf("player id contains non-digit characters")
	}
	return normalized, nil
}

func PlayerIDIsNormalized(playerID string) bool {
	normalized, err := NormalizePlayerID(playerID)
	if err != nil {
		return false
	}
	return normalized == playerID
}

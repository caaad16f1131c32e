package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// Key format: sk_{secret} where secret is 32 alphanumeric characters.
// Example: sk_Yx3kP9qLmZ7wA2nRv8sJ4tB6cD1eF5gH
const (
	KeyPrefix    = "sk_"
	KeySecretLen = 32
	keyAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// keyFormatRegex validates the key format.
var keyFormatRegex = regexp.MustCompile(`^sk_[A-Za-z0-9]{32}$`)

// GenerateKeyValue creates a new API key value: the sk_ prefix followed
// by 32 characters drawn uniformly from the 62-symbol alphanumeric
// alphabet. Each character is chosen independently from crypto/rand.
func GenerateKeyValue() (string, error) {
	alphabetLen := big.NewInt(int64(len(keyAlphabet)))

	secret := make([]byte, KeySecretLen)
	for i := range secret {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generate key material: %w", err)
		}
		secret[i] = keyAlphabet[n.Int64()]
	}

	return KeyPrefix + string(secret), nil
}

// ValidateKeyFormat checks if the value matches the expected key format.
func ValidateKeyFormat(key string) bool {
	return keyFormatRegex.MatchString(key)
}

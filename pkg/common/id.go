package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateID generates a unique ID with the given prefix.
// Format: prefix-timestamp-random
func GenerateID(prefix string) string {
	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	random := hex.EncodeToString(randomBytes)
	return fmt.Sprintf("%s-%d-%s", prefix, timestamp, random)
}

// GenerateSessionID generates a unique session ID.
func GenerateSessionID() string {
	return GenerateID("sess")
}

// GenerateAttemptID generates a unique id for one fetch attempt.
// Attempt ids only appear in debug logs; currency checks use pointer
// identity, not the id.
func GenerateAttemptID() string {
	return uuid.NewString()
}

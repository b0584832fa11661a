package utils

import "github.com/google/uuid"

// GenerateCommentID returns a UUIDv7 string. Its leading bits are the
// millisecond timestamp and within one process successive ids are
// monotonic, so later comments compare greater as strings.
func GenerateCommentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// only fails when the random source does
		return uuid.NewString()
	}
	return id.String()
}

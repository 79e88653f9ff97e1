package generator

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns an 8 character uppercase hexadecimal token taken from a
// random UUID. Collisions are not detected.
func GenerateID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return id[:8]
}

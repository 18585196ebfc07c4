package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReferenceID returns a short business reference code: the first
// 8 characters of a random UUID, upper-cased.
func GenerateReferenceID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// OrderReference builds the order number recorded on a paid checkout.
func OrderReference(businessRef string, at time.Time) string {
	return fmt.Sprintf("ORD-%s-%d", businessRef, at.Unix())
}

package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReferenceID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ref := GenerateReferenceID()
		assert.Len(t, ref, 8)
		assert.False(t, seen[ref], "reference ids should not repeat")
		seen[ref] = true
	}
}

func TestOrderReference(t *testing.T) {
	at := time.Unix(1717000000, 0)
	assert.Equal(t, "ORD-REF001-1717000000", OrderReference("REF001", at))
}

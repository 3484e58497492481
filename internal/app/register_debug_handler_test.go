package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRegisterWritable(t *testing.T) {
	ranges := "0x19-0x20,0x37-0x38,0x6B"

	assert.True(t, isRegisterWritable(0x19, ranges))
	assert.True(t, isRegisterWritable(0x1C, ranges))
	assert.True(t, isRegisterWritable(0x20, ranges))
	assert.True(t, isRegisterWritable(0x37, ranges))
	assert.True(t, isRegisterWritable(0x6B, ranges))

	assert.False(t, isRegisterWritable(0x18, ranges))
	assert.False(t, isRegisterWritable(0x21, ranges))
	assert.False(t, isRegisterWritable(0x75, ranges))
}

func TestIsRegisterWritableEmptyDeniesAll(t *testing.T) {
	assert.False(t, isRegisterWritable(0x6B, ""))
}

func TestIsRegisterWritableSkipsMalformedParts(t *testing.T) {
	// A broken entry is ignored, valid entries still apply.
	ranges := "garbage,0x6B"
	assert.True(t, isRegisterWritable(0x6B, ranges))
	assert.False(t, isRegisterWritable(0x6C, ranges))
}

func TestIsRegisterWritableToleratesSpaces(t *testing.T) {
	ranges := " 0x19 - 0x20 , 0x6B "
	assert.True(t, isRegisterWritable(0x1A, ranges))
	assert.True(t, isRegisterWritable(0x6B, ranges))
}

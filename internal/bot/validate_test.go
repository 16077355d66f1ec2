package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidFullName(t *testing.T) {
	assert.True(t, validFullName("John Doe"))
	assert.True(t, validFullName("  Ada   Lovelace  "))
	assert.True(t, validFullName("Jean-Luc Picard Jr"))

	assert.False(t, validFullName("John"), "a single name is not enough")
	assert.False(t, validFullName(""))
	assert.False(t, validFullName("   "))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("ada@example.com"))
	assert.True(t, validEmail("a.b+c@sub.domain.co"))

	assert.False(t, validEmail("not-an-email"))
	assert.False(t, validEmail("two words@example.com"))
	assert.False(t, validEmail("missing@tld"))
	assert.False(t, validEmail("@example.com"))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, validPhone("+2348012345678"))
	assert.True(t, validPhone("+123456"))

	assert.False(t, validPhone("2348012345678"), "plus sign is required")
	assert.False(t, validPhone("+123"))
	assert.False(t, validPhone("+234 801 234"))
	assert.False(t, validPhone("+234-801"))
}

func TestParseSlots(t *testing.T) {
	n, ok := parseSlots(" 4 ")
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	for _, bad := range []string{"0", "-1", "four", "", "2.5"} {
		_, ok := parseSlots(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestParseDuration(t *testing.T) {
	for _, good := range []string{"1", "6", "12"} {
		_, ok := parseDuration(good)
		assert.True(t, ok, "input %q", good)
	}
	for _, bad := range []string{"0", "13", "-2", "month", ""} {
		_, ok := parseDuration(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	got := FilterArgs([]string{"-d", "app.db", "-x", "junk"}, []string{"-d"})
	assert.Equal(t, []string{"-d", "app.db"}, got)
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	got := FilterArgs([]string{"-d=app.db", "-x=junk"}, []string{"-d"})
	assert.Equal(t, []string{"-d=app.db"}, got)
}

func TestFilterArgs_FlagFollowedByFlag(t *testing.T) {
	got := FilterArgs([]string{"-d", "-v", "debug"}, []string{"-d", "-v"})
	assert.Equal(t, []string{"-d", "-v", "debug"}, got)
}

func TestFilterArgs_NoneAllowed(t *testing.T) {
	got := FilterArgs([]string{"-a", "b"}, nil)
	assert.Empty(t, got)
}

package snake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBool(t *testing.T) {
	for _, in := range []string{"y", "Yes", "true", "1"} {
		v, err := ParseBool(in)
		assert.NoError(t, err, in)
		assert.True(t, v, in)
	}
	for _, in := range []string{"n", "No", "false", "0"} {
		v, err := ParseBool(in)
		assert.NoError(t, err, in)
		assert.False(t, v, in)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestSelectNeedsChoices(t *testing.T) {
	_, err := IO{}.Select("Field", nil)
	assert.Error(t, err)
}

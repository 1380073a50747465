package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "Oferta 2 por 1", NormalizeSpace("  Oferta \n\t 2  por   1 "))
	assert.Equal(t, "", NormalizeSpace("   \n\t  "))
	assert.Equal(t, "plain", NormalizeSpace("plain"))
}

func TestShortest(t *testing.T) {
	assert.Equal(t, "", Shortest(nil))
	assert.Equal(t, "b", Shortest([]string{"aaa", "b", "cc"}))
	// Ties keep the earlier candidate
	assert.Equal(t, "ab", Shortest([]string{"ab", "cd"}))
}

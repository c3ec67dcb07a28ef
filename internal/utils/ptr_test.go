package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	v := 0.2
	p := Ptr(v)

	assert.NotNil(t, p)
	v = 0.9
	assert.Equal(t, 0.2, *p, "pointer holds a copy")
}

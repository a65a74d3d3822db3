package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 3, OrDefault(3, 5))
	assert.Equal(t, 5, OrDefault(0, 5))
	assert.Equal(t, "yes", OrDefault("", "yes"))
}

func TestIntClamp(t *testing.T) {
	assert.Equal(t, 4, IntClamp(2, 4, 6))
	assert.Equal(t, 2, IntClamp(2, 1, 6))
	assert.Equal(t, 6, IntClamp(2, 10, 6))
}

func TestNumPages(t *testing.T) {
	assert.Equal(t, 1, NumPages(0, 20))
	assert.Equal(t, 1, NumPages(20, 20))
	assert.Equal(t, 2, NumPages(21, 20))
}

func TestRecoverPanicAsError(t *testing.T) {
	innerError := errors.New("pants")

	func1 := func() (err error) {
		defer RecoverPanicAsError(&err)
		panic(innerError)
	}
	err := func1()
	assert.True(t, errors.Is(err, innerError))
}

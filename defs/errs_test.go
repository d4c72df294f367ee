package defs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMapsEveryKnownCode(t *testing.T) {
	cases := map[Err_t]string{
		EFAULT:       "bad address",
		ENOMEM:       "out of memory",
		ENOHEAP:      "kernel heap exhausted",
		EINVAL:       "invalid argument",
		ENAMETOOLONG: "name too long",
		EAGAIN:       "resource temporarily unavailable",
		EKILLED:      "process killed",
		ENOSWAP:      "swap space exhausted",
	}
	for code, want := range cases {
		assert.Equal(t, want, code.Error())
	}
}

func TestErrorOnUnknownCodeIsUnknown(t *testing.T) {
	assert.Equal(t, "unknown error", Err_t(12345).Error())
}

func TestZeroIsNotAnError(t *testing.T) {
	assert.Equal(t, "unknown error", Err_t(0).Error(), "zero is the success sentinel; callers check it via == 0, not via this string")
}

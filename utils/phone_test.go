package utils

import (
	"testing"

	"spacrm-backend/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"0912345678":      "0912345678",
		"+84 912 345 678": "0912345678",
		"84912345678":     "0912345678",
		"0084912345678":   "0912345678",
		"(091) 234-5678":  "0912345678",
		" 091.234.5678 ":  "0912345678",
	}
	for in, want := range cases {
		got, err := NormalizePhone(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizePhone_Invalid(t *testing.T) {
	for _, in := range []string{"", "12345", "1912345678", "09123456789", "abc"} {
		_, err := NormalizePhone(in)
		require.Error(t, err, in)
		assert.True(t, errs.Is(err, errs.KindValidation), in)
	}
}

func TestToE164(t *testing.T) {
	assert.Equal(t, "+84912345678", ToE164("0912345678", "84"))
	assert.Equal(t, "+84912345678", ToE164("0912345678", ""))
	assert.Equal(t, "+15551234", ToE164("+15551234", "84"))
}

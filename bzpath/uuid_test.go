package bzpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUUID16Bit(t *testing.T) {
	u, err := ParseUUID("2A19")
	require.NoError(t, err)
	assert.Equal(t, "00002A19-0000-1000-8000-00805F9B34FB", u.String())

	short, ok := u.Short16()
	require.True(t, ok)
	assert.Equal(t, "2A19", short)
}

func TestParseUUID32Bit(t *testing.T) {
	u, err := ParseUUID("0000180F")
	require.NoError(t, err)
	assert.Equal(t, "0000180F-0000-1000-8000-00805F9B34FB", u.String())
}

func TestParseUUIDFull128Bit(t *testing.T) {
	full := "12345678-1234-5678-1234-56789abcdef0"
	u, err := ParseUUID(full)
	require.NoError(t, err)
	assert.False(t, u.IsShort())
	assert.Equal(t, "12345678-1234-5678-1234-56789ABCDEF0", u.String())
}

func TestParseUUIDRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "xyz", "12345", "not-a-uuid-at-all-nope"} {
		_, err := ParseUUID(bad)
		assert.ErrorIs(t, err, ErrInvalidUUID, "input %q", bad)
	}
}

func TestParseUUIDCanonicalisationIsIdempotent(t *testing.T) {
	for _, s := range []string{"2A19", "0000180F", "12345678-1234-5678-1234-56789abcdef0"} {
		u1, err := ParseUUID(s)
		require.NoError(t, err)
		u2, err := ParseUUID(u1.String())
		require.NoError(t, err)
		assert.True(t, u1.Equal(u2))
	}
}

func TestValidateServiceNameBoundaries(t *testing.T) {
	cases := map[string]bool{
		"":              false,
		"bzperi":        true,
		"bzperi.myapp":  true,
		"bzperi.":       false,
		"other":         false,
		"BZPERI":        false,
		"bzperi.my-app": false,
	}
	for name, wantOK := range cases {
		err := ValidateServiceName(name)
		if wantOK {
			assert.NoError(t, err, "name %q", name)
		} else {
			assert.ErrorIs(t, err, ErrInvalidServiceName, "name %q", name)
		}
	}
}

func TestDerivedBusNameAndRootPath(t *testing.T) {
	assert.Equal(t, "com.bzperi", DerivedBusName("bzperi"))
	assert.Equal(t, ObjectPath("/com/bzperi"), DerivedRootPath("bzperi"))

	assert.Equal(t, "com.bzperi.myapp", DerivedBusName("bzperi.myapp"))
	assert.Equal(t, ObjectPath("/com/bzperi/myapp"), DerivedRootPath("bzperi.myapp"))
}

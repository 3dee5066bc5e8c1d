package semver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	valid := []string{
		"0.0.0",
		"0.0.1",
		"1.2.3",
		"10.20.30",
		"1.2.3-beta",
		"1.2.3-rc-1",
		"1.2.3-0",
		"1.2.3-7",
		"1.2.3-0a",
		"1.2.3-alpha-beta-gamma",
		"1.2.3--",
		"1.2.3-x-00",
		"99999999999999999999.0.0",
		"1.123456789012345678901234567890.3-rc",
	}
	for _, s := range valid {
		t.Run(s, func(t *testing.T) {
			v, err := Parse(s)
			require.NoError(t, err)
			assert.Equal(t, s, v.String())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"1",
		"1.2",
		"01.2.3",
		"1.02.3",
		"1.2.03",
		"v1.2.3",
		"1.2.3-",
		"1.2.3-01",
		"1.2.3+build",
		"1.2.3-beta+build",
		"1.2.3-beta.1",
		"1.2.3.4",
		" 1.2.3",
		"-1.2.3",
		"1.2.٣",
	}
	for _, s := range invalid {
		t.Run(s, func(t *testing.T) {
			_, err := Parse(s)
			assert.ErrorIs(t, err, ErrInvalidVersion)
		})
	}
}

func TestAccessors(t *testing.T) {
	v := MustParse("4.5.6-rc-1")
	assert.Equal(t, "4", v.Major())
	assert.Equal(t, "5", v.Minor())
	assert.Equal(t, "6", v.Patch())
	assert.Equal(t, "rc-1", v.Metadata())

	assert.Equal(t, "beta", MustParse("1.2.3-beta").Metadata())
	assert.Empty(t, MustParse("1.2.3").Metadata())
}

func TestIncrements(t *testing.T) {
	base := MustParse("1.2.3")
	assert.Equal(t, MustParse("1.2.4"), base.NextPatch())
	assert.Equal(t, MustParse("1.3.0"), base.NextMinor())
	assert.Equal(t, MustParse("2.0.0"), base.NextMajor())

	// original is untouched
	assert.Equal(t, "1.2.3", base.String())
}

func TestIncrementsCarryPastUint64(t *testing.T) {
	assert.Equal(t, "18446744073709551616.0.0", MustParse("18446744073709551615.0.0").NextMajor().String())
	assert.Equal(t, "1.2.18446744073709551616", MustParse("1.2.18446744073709551615").NextPatch().String())
	assert.Equal(t, "1.100000000000000000000.0", MustParse("1.99999999999999999999.7").NextMinor().String())
	assert.Equal(t, "10.0.0", MustParse("9.9.9").NextMajor().String())
	assert.Equal(t, "0.0.10", MustParse("0.0.9").NextPatch().String())
	assert.Equal(t, "1.2.100", MustParse("1.2.99").NextPatch().String())
}

func TestIncrementsDropMetadata(t *testing.T) {
	v := MustParse("1.2.3-beta")
	assert.Equal(t, "1.2.4", v.NextPatch().String())
	assert.Equal(t, "1.3.0", v.NextMinor().String())
	assert.Equal(t, "2.0.0", v.NextMajor().String())
	assert.Equal(t, "1.2.3", v.WithoutMetadata().String())
}

func TestWithMetadata(t *testing.T) {
	v, err := MustParse("1.2.3").WithMetadata("hotfix")
	require.NoError(t, err)
	assert.Equal(t, MustParse("1.2.3-hotfix"), v)

	replaced, err := MustParse("1.2.3-beta").WithMetadata("rc-2")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3-rc-2", replaced.String())

	_, err = MustParse("1.2.3").WithMetadata("")
	assert.ErrorIs(t, err, ErrInvalidVersion)

	_, err = MustParse("1.2.3").WithMetadata("has space")
	assert.ErrorIs(t, err, ErrInvalidVersion)

	_, err = MustParse("1.2.3").WithMetadata("007")
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("01.2.3") })
}

func TestZeroValue(t *testing.T) {
	var v Version
	assert.Equal(t, "0.0.0", v.String())
	assert.Equal(t, "0", v.Major())
	assert.Equal(t, MustParse("0.0.1"), v.NextPatch())
	assert.Equal(t, MustParse("0.0.0"), v.WithoutMetadata())
}

func TestTextMarshaling(t *testing.T) {
	type release struct {
		Version Version `json:"version"`
	}

	out, err := json.Marshal(release{Version: MustParse("0.4.1-rc")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"0.4.1-rc"}`, string(out))

	var in release
	require.NoError(t, json.Unmarshal([]byte(`{"version":"2.0.0"}`), &in))
	assert.Equal(t, MustParse("2.0.0"), in.Version)

	err = json.Unmarshal([]byte(`{"version":"2.0"}`), &in)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

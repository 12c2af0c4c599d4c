package versions

import (
	"errors"
	"testing"

	"github.com/ppphp/entropago/pkg/exception"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerCmpGreater(t *testing.T) {
	for _, test := range [][2]string{
		{"6.0", "5.0"},
		{"5.12", "5.2"},
		{"5.0", "5"},
		{"1.0-r1", "1.0-r0"},
		{"1.0-r1", "1.0"},
		{"999999999999999999999999999999", "999999999999999999999999999998"},
		{"1.0.0", "1.0"},
		{"1.0.0", "1.0b"},
		{"1b", "1"},
		{"1b_p1", "1_p1"},
		{"1.1b", "1.1"},
		{"12.2.5", "12.2b"},
		{"1.0_p1", "1.0"},
		{"1.1", "1.02"},
		{"cvs.1.1", "1.0"}} {
		ans, err := VerCmp(test[0], test[1])
		require.NoError(t, err)
		assert.Greater(t, ans, 0, "vercmp wrong, %v <= %v", test[0], test[1])
		rev, err := VerCmp(test[1], test[0])
		require.NoError(t, err)
		assert.Less(t, rev, 0, "vercmp not antisymmetric for %v, %v", test[0], test[1])
	}
}

func TestVerCmpLess(t *testing.T) {
	for _, test := range [][2]string{
		{"4.0", "5.0"}, {"5", "5.0"}, {"1.0_pre2", "1.0_p2"},
		{"1.0_alpha2", "1.0_p2"}, {"1.0_alpha1", "1.0_beta1"}, {"1.0_beta3", "1.0_rc3"},
		{"1.0_rc1", "1.0"},
		{"1.0_alpha1", "1.0_alpha2"},
		{"1.001000000000000000001", "1.001000000000000000002"},
		{"1.00100000000", "1.0010000000000000001"},
		{"999999999999999999999999999998", "999999999999999999999999999999"},
		{"1.01", "1.1"},
		{"1.02", "1.1"},
		{"1.0-r0", "1.0-r1"},
		{"1.0", "1.0-r1"},
		{"1.0", "1.0.0"},
		{"1.0b", "1.0.0"},
		{"1_p1", "1b_p1"},
		{"1", "1b"},
		{"1.1", "1.1b"},
		{"12.2b", "12.2.5"}} {
		ans, err := VerCmp(test[0], test[1])
		require.NoError(t, err)
		assert.Less(t, ans, 0, "vercmp wrong, %v >= %v", test[0], test[1])
	}
}

func TestVerCmpEqual(t *testing.T) {
	for _, test := range [][2]string{
		{"4.0", "4.0"},
		{"1.0", "1.0"},
		{"1.0-r0", "1.0"},
		{"1.0", "1.0-r0"},
		{"1.0-r0", "1.0-r0"},
		{"1.0-r1", "1.0-r1"},
		{"1.0", "1.0_p0"},
		{"1.0_p", "1.0"},
		{"1.0_rc", "1.0_rc0"}} {
		ans, err := VerCmp(test[0], test[1])
		require.NoError(t, err)
		assert.Equal(t, 0, ans, "vercmp wrong, %v != %v", test[0], test[1])
	}
}

func TestVerNotEqual(t *testing.T) {
	for _, test := range [][2]string{
		{"1", "2"}, {"1.0_alpha", "1.0_pre"}, {"1.0_beta", "1.0_alpha"},
		{"0", "0.0"},
		{"1.0-r0", "1.0-r1"},
		{"1.0-r1", "1.0-r0"},
		{"1.0", "1.0-r1"},
		{"1.0-r1", "1.0"},
		{"1.0", "1.0.0"},
		{"1_p1", "1b_p1"},
		{"1b", "1"},
		{"1.1b", "1.1"},
		{"12.2b", "12.2"}} {
		ans, err := VerCmp(test[0], test[1])
		require.NoError(t, err)
		assert.NotEqual(t, 0, ans, "vercmp wrong, %v == %v", test[0], test[1])
	}
}

func TestVerCmpInvalid(t *testing.T) {
	ans, err := VerCmp("1.0_foo", "1.0")
	assert.True(t, errors.Is(err, exception.ErrInvalidVersion))
	assert.Equal(t, 0, ans)

	ans, err = VerCmp("1.0", "one")
	assert.True(t, errors.Is(err, exception.ErrInvalidVersion))
	assert.Equal(t, 1, ans)

	ans, err = VerCmp("x", "y")
	assert.Error(t, err)
	assert.Equal(t, 0, ans)

	// identical strings short-circuit before validation
	ans, err = VerCmp("garbage", "garbage")
	assert.NoError(t, err)
	assert.Equal(t, 0, ans)
}

func TestVerVerify(t *testing.T) {
	for _, ver := range []string{"1", "1.0", "1.0a", "1.0_alpha1_p2", "1.0-r3", "cvs.1.0", "2.6.32_rc"} {
		assert.True(t, VerVerify(ver), ver)
	}
	for _, ver := range []string{"", "a1", "1.0A", "1.0_gamma", "1.0-r", "1..0", "1.0ab"} {
		assert.False(t, VerVerify(ver), ver)
	}
}

func TestNewVersionKey(t *testing.T) {
	k, err := NewVersionKey("1.2.03b_beta2_p-r4")
	require.NoError(t, err)
	assert.Equal(t, "1", k.Major.String())
	assert.Equal(t, []string{"2", "03"}, k.Minors)
	assert.Equal(t, "b", k.Letter)
	assert.Equal(t, []Suffix{{VersionStatusBeta, "2"}, {VersionStatusP, ""}}, k.Suffixes)
	assert.Equal(t, 4, k.Revision)
}

func TestGetNewerVersion(t *testing.T) {
	got := GetNewerVersion([]string{"1.0", "bogus", "1.0_rc1", "2.0", "1.0-r2", "1.0.1"})
	assert.Equal(t, []string{"2.0", "1.0.1", "1.0-r2", "1.0", "1.0_rc1", "bogus"}, got)
	assert.Equal(t, "2.0", Best([]string{"1.0", "2.0", "1.5"}))
	assert.Equal(t, "", Best(nil))
}

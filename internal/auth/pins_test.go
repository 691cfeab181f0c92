package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/ladak/internal/model"
)

func testEntries(t *testing.T) []Entry {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("333333"), bcrypt.MinCost)
	require.NoError(t, err)
	return []Entry{
		{PIN: "0717", Name: "Admin", Role: model.RoleAdmin},
		{PIN: "111111", Name: "Ákos", Role: model.RoleDriver},
		{PINHash: string(hash), Name: "Vasárnapi", Role: model.RoleDriver},
	}
}

func TestDirectoryLookup(t *testing.T) {
	d, err := NewDirectory(testEntries(t))
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())

	tests := []struct {
		pin  string
		want model.User
		ok   bool
	}{
		{"0717", model.User{Name: "Admin", Role: model.RoleAdmin}, true},
		{" 0717 ", model.User{Name: "Admin", Role: model.RoleAdmin}, true},
		{"111-111", model.User{Name: "Ákos", Role: model.RoleDriver}, true},
		{"333333", model.User{Name: "Vasárnapi", Role: model.RoleDriver}, true},
		{"717", model.User{}, false},
		{"", model.User{}, false},
		{"abc", model.User{}, false},
	}

	for _, tt := range tests {
		got, err := d.Lookup(tt.pin)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrUnknownPIN, "pin %q", tt.pin)
			continue
		}
		require.NoError(t, err, "pin %q", tt.pin)
		assert.Equal(t, tt.want, got, "pin %q", tt.pin)
	}
}

func TestNewDirectoryRejectsBadEntries(t *testing.T) {
	tests := map[string][]Entry{
		"missing name": {{PIN: "1", Role: model.RoleAdmin}},
		"unknown role": {{PIN: "1", Name: "X", Role: "manager"}},
		"no digits":    {{PIN: "abc", Name: "X", Role: model.RoleDriver}},
		"both pins":    {{PIN: "1", PINHash: "$2a$04$x", Name: "X", Role: model.RoleDriver}},
		"bad hash":     {{PINHash: "plain", Name: "X", Role: model.RoleDriver}},
		"duplicate": {
			{PIN: "12", Name: "X", Role: model.RoleDriver},
			{PIN: "1-2", Name: "Y", Role: model.RoleDriver},
		},
	}
	for name, entries := range tests {
		_, err := NewDirectory(entries)
		assert.Error(t, err, name)
	}
}

func TestNormalizePIN(t *testing.T) {
	assert.Equal(t, "0717", NormalizePIN(" 07-17\n"))
	assert.Equal(t, "", NormalizePIN("pin"))
}

func TestDirectoryUsers(t *testing.T) {
	d, err := NewDirectory(testEntries(t))
	require.NoError(t, err)

	users := d.Users()
	require.Len(t, users, 3)
	assert.Equal(t, "Admin", users[0].Name)
	assert.Equal(t, "Vasárnapi", users[2].Name)

	users[0].Name = "changed"
	assert.Equal(t, "Admin", d.Users()[0].Name)
}

func TestHashPIN(t *testing.T) {
	hash, err := HashPIN("44-44")
	require.NoError(t, err)

	d, err := NewDirectory([]Entry{{PINHash: hash, Name: "Dezső", Role: model.RoleDriver}})
	require.NoError(t, err)
	u, err := d.Lookup("4444")
	require.NoError(t, err)
	assert.Equal(t, "Dezső", u.Name)

	_, err = HashPIN("none")
	assert.Error(t, err)
}

package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/ladak/internal/model"
)

// Entry is one configured PIN. Exactly one of PIN or PINHash is set; PINHash
// is a bcrypt hash of the digits.
type Entry struct {
	PIN     string `mapstructure:"pin"`
	PINHash string `mapstructure:"pin_hash"`
	Name    string `mapstructure:"name"`
	Role    string `mapstructure:"role"`
}

// Directory maps PINs to users. It is built once at startup and never
// modified, so it is safe for concurrent use.
type Directory struct {
	plain  map[string]model.User
	hashed []hashedEntry
	users  []model.User
}

type hashedEntry struct {
	hash []byte
	user model.User
}

// ErrUnknownPIN is returned by Lookup when no entry matches.
var ErrUnknownPIN = errors.New("unknown PIN")

// NewDirectory validates entries and builds a directory.
func NewDirectory(entries []Entry) (*Directory, error) {
	d := &Directory{plain: make(map[string]model.User)}

	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("user %d: name required", i+1)
		}
		if !model.ValidRole(e.Role) {
			return nil, fmt.Errorf("user %q: role must be %q or %q", name, model.RoleAdmin, model.RoleDriver)
		}
		user := model.User{Name: name, Role: e.Role}
		d.users = append(d.users, user)

		switch {
		case e.PIN != "" && e.PINHash != "":
			return nil, fmt.Errorf("user %q: set pin or pin_hash, not both", name)
		case e.PINHash != "":
			if _, err := bcrypt.Cost([]byte(e.PINHash)); err != nil {
				return nil, fmt.Errorf("user %q: invalid pin_hash: %w", name, err)
			}
			d.hashed = append(d.hashed, hashedEntry{hash: []byte(e.PINHash), user: user})
		default:
			pin := NormalizePIN(e.PIN)
			if pin == "" {
				return nil, fmt.Errorf("user %q: pin must contain digits", name)
			}
			if _, dup := d.plain[pin]; dup {
				return nil, fmt.Errorf("user %q: duplicate pin", name)
			}
			d.plain[pin] = user
		}
	}

	return d, nil
}

// NormalizePIN drops every non-digit character.
func NormalizePIN(pin string) string {
	var b strings.Builder
	for _, r := range pin {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lookup resolves a PIN to its user.
func (d *Directory) Lookup(pin string) (model.User, error) {
	pin = NormalizePIN(pin)
	if pin == "" {
		return model.User{}, ErrUnknownPIN
	}
	if u, ok := d.plain[pin]; ok {
		return u, nil
	}
	for _, h := range d.hashed {
		if bcrypt.CompareHashAndPassword(h.hash, []byte(pin)) == nil {
			return h.user, nil
		}
	}
	return model.User{}, ErrUnknownPIN
}

// Len returns the number of configured users.
func (d *Directory) Len() int {
	return len(d.plain) + len(d.hashed)
}

// Users lists the configured users in configuration order.
func (d *Directory) Users() []model.User {
	return append([]model.User(nil), d.users...)
}

// HashPIN returns a bcrypt hash of the normalized PIN, suitable for pin_hash.
func HashPIN(pin string) (string, error) {
	pin = NormalizePIN(pin)
	if pin == "" {
		return "", errors.New("pin must contain digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing pin: %w", err)
	}
	return string(hash), nil
}

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestHashPassphrase(t *testing.T) {
	hash, err := HashPassphrase("secret123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)
}

func TestCheckPassphrase_Correct(t *testing.T) {
	hash, err := HashPassphrase("mypassphrase")
	assert.NoError(t, err)
	assert.True(t, CheckPassphrase("mypassphrase", hash))
}

func TestCheckPassphrase_Wrong(t *testing.T) {
	hash, err := HashPassphrase("mypassphrase")
	assert.NoError(t, err)
	assert.False(t, CheckPassphrase("wrongpassphrase", hash))
}

// Property: HashPassphrase always produces a hash that CheckPassphrase
// verifies.
func TestPropertyHashAndCheck(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// bcrypt has a max input length of 72 bytes
		passphrase := rapid.StringMatching(`[a-zA-Z0-9!@#$%^&*]{1,64}`).Draw(t, "passphrase")
		hash, err := HashPassphrase(passphrase)
		if err != nil {
			t.Fatalf("HashPassphrase failed: %v", err)
		}
		if !CheckPassphrase(passphrase, hash) {
			t.Fatalf("CheckPassphrase failed for passphrase %q", passphrase)
		}
	})
}

// Property: hashes differ even for equal inputs thanks to unique salts.
func TestPropertyUniqueSalts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		passphrase := rapid.StringMatching(`[a-zA-Z]{6,20}`).Draw(t, "passphrase")

		h1, err := HashPassphrase(passphrase)
		assert.NoError(t, err)
		h2, err := HashPassphrase(passphrase)
		assert.NoError(t, err)

		assert.NotEqual(t, h1, h2, "bcrypt hashes should differ due to unique salts")
	})
}

// Property: a wrong passphrase never validates.
func TestPropertyWrongPassphraseNeverValidates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		correct := rapid.StringMatching(`[a-zA-Z0-9]{6,30}`).Draw(t, "correct")
		wrong := rapid.StringMatching(`[a-zA-Z0-9]{6,30}`).Draw(t, "wrong")

		if correct == wrong {
			return
		}

		hash, err := HashPassphrase(correct)
		assert.NoError(t, err)
		assert.False(t, CheckPassphrase(wrong, hash),
			"wrong passphrase %q should not match hash of %q", wrong, correct)
	})
}

func TestCheckSlotBounds(t *testing.T) {
	assert.NoError(t, checkSlot(MinSlot))
	assert.NoError(t, checkSlot(MaxSlot))
	assert.ErrorIs(t, checkSlot(MinSlot-1), ErrInvalidSlot)
	assert.ErrorIs(t, checkSlot(MaxSlot+1), ErrInvalidSlot)
	assert.ErrorIs(t, checkSlot(-3), ErrInvalidSlot)
}

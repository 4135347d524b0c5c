package accounts

import (
	"errors"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/md5_crypt"
	"github.com/GehirnInc/crypt/sha256_crypt"
	"github.com/GehirnInc/crypt/sha512_crypt"
)

var ErrUnsupportedHash = errors.New("unsupported password hash")

// hashPassword produces a sha512-crypt ($6$) shadow hash with a random salt.
func hashPassword(password string) (string, error) {
	return sha512_crypt.New().Generate([]byte(password), nil)
}

// verifyHash checks password against a shadow hash.
// Supports $1$ (md5-crypt), $5$ (sha256-crypt) and $6$ (sha512-crypt).
// Newer formats like yescrypt ($y$) report ErrUnsupportedHash.
func verifyHash(hash, password string) (bool, error) {
	crypters := []crypt.Crypter{
		sha512_crypt.New(),
		sha256_crypt.New(),
		md5_crypt.New(),
	}
	for _, c := range crypters {
		if err := c.Verify(hash, []byte(password)); err == nil {
			return true, nil
		}
	}
	if strings.HasPrefix(hash, "$y$") || strings.HasPrefix(hash, "$7$") || strings.HasPrefix(hash, "$2") {
		return false, ErrUnsupportedHash
	}
	return false, nil
}

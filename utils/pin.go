package utils

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// PIN credentials are stored as salt + bcrypt(salt||pin). bcrypt already
// salts internally; the explicit salt keeps the stored hash bound to the
// user row even if two staff members pick the same PIN.

func GenerateSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func HashPin(pin, salt string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(salt+pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyPin(pin, salt, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(salt+pin)) == nil
}

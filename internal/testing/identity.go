package testing

import (
	"encoding/hex"
	"math/rand"
)

// RandIdentity generates a random account-address-like identity string
// ("0x" followed by 40 hex characters)
func RandIdentity() string {
	buf := make([]byte, 20)
	rand.Read(buf)
	return "0x" + hex.EncodeToString(buf)
}

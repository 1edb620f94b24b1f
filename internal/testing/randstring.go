package testing

import (
	"math/rand"
	"strings"
)

// RandString generates a random string of n symbols from lower- and uppercase alphabet
func RandString(n int) string {
	var out strings.Builder
	charSet := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	for i := 0; i < n; i++ {
		random := rand.Intn(len(charSet))
		randomChar := charSet[random]
		out.WriteString(string(randomChar))
	}
	return out.String()
}

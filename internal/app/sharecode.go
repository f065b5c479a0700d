package app

import "crypto/rand"

// ShareCodeLength is the length of a generated share code.
const ShareCodeLength = 8

const shareCodeAttempts = 5

// newShareCode draws a code from the upper-case base32 alphabet, a subset
// of [A-Z0-9].
func newShareCode() string {
	return rand.Text()[:ShareCodeLength]
}

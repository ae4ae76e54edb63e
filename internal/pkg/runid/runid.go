// Package runid generates prefixed, time-sortable identifiers for scrape
// runs, e.g. "scrape_0SmK3xaB3cD5eF7gH9iJ1k".
package runid

import (
	"crypto/rand"
	"time"
)

// Base62 alphabet: 0-9, A-Z, a-z
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	timestampLength = 6
	randomLength    = 18
)

// New returns "<prefix>_<timestamp><random>". The 6-char base62 timestamp
// keeps ids lexicographically sortable by creation time, which gives B-tree
// index locality when runs are stored.
func New(prefix string) string {
	return prefix + "_" + encodeTimestamp(time.Now().Unix()) + randomBase62(randomLength)
}

// encodeTimestamp encodes Unix seconds as a fixed-width base62 string.
// Six characters cover ~56 billion seconds from the epoch.
func encodeTimestamp(seconds int64) string {
	buf := make([]byte, timestampLength)
	for i := timestampLength - 1; i >= 0; i-- {
		buf[i] = alphabet[seconds%62]
		seconds /= 62
	}
	return string(buf)
}

// randomBase62 produces a uniformly distributed base62 string. Six random
// bits are drawn per candidate character and values >= 62 are rejected, so
// no character is favored.
func randomBase62(length int) string {
	out := make([]byte, 0, length)

	for len(out) < length {
		chunk := make([]byte, length)
		if _, err := rand.Read(chunk); err != nil {
			panic("failed to read random bytes: " + err.Error())
		}
		for _, b := range chunk {
			v := b & 0x3f
			if v < 62 {
				out = append(out, alphabet[v])
				if len(out) == length {
					break
				}
			}
		}
	}

	return string(out)
}

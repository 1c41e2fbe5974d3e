package timeline

import (
	"encoding/base64"
	"strconv"
)

// encodeCursor wraps an offset into the fully-ordered event list in an
// opaque, URL-safe token.
func encodeCursor(offset int) string {
	return base64.URLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// decodeCursor reverses encodeCursor. A malformed or absent cursor means
// "start from the beginning", never an error, so the feed stays servable.
func decodeCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

package remote

import (
	"net/url"
	"strings"
)

const maskedAPIKey = "[api-key]"

// secret is the directory API key. Rendered errors pass through scrub so the
// key never reaches logs or terminal output.
type secret string

// scrub masks the key in msg, including the escaped forms a server echoes
// back when it quotes the request in an error body.
func (s secret) scrub(msg string) string {
	key := strings.TrimSpace(string(s))
	if key == "" || msg == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, key, maskedAPIKey)
	for _, escaped := range []string{url.QueryEscape(key), url.PathEscape(key)} {
		if escaped != key {
			msg = strings.ReplaceAll(msg, escaped, maskedAPIKey)
		}
	}
	return msg
}

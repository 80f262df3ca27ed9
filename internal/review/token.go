package review

import (
	"encoding/base64"
	"regexp"
)

// Token is the opaque correlation token binding a submission to its review
// thread. It is carried in subject lines as "#token#" and derived 1:1 from
// the submission's Message-ID, so EncodeToken and DecodeToken round-trip.
type Token string

// tagPattern matches the first #...# span with no embedded '#'. Base64
// tokens stay inside this charset, so the token never terminates the tag
// early.
var tagPattern = regexp.MustCompile(`#([^#]+)#`)

// EncodeToken derives the correlation token for a message identifier.
func EncodeToken(messageID string) Token {
	return Token(base64.StdEncoding.EncodeToString([]byte(messageID)))
}

// DecodeToken reverses EncodeToken. A token that cannot be reversed yields
// a MalformedTokenError.
func DecodeToken(tok Token) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(string(tok))
	if err != nil {
		return "", &MalformedTokenError{Token: string(tok), Err: err}
	}
	return string(raw), nil
}

// FormatTag renders a token as a subject-line tag.
func FormatTag(tok Token) string {
	return "#" + string(tok) + "#"
}

// ParseTag extracts the token from the first tag span in a subject line.
// ok is false when the subject carries no tag.
func ParseTag(subject string) (Token, bool) {
	m := tagPattern.FindStringSubmatch(subject)
	if m == nil {
		return "", false
	}
	return Token(m[1]), true
}

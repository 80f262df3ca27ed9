package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ids := []string{
		"<msg-1@example.com>",
		"<CAF+HW8ab3=xyz@mail.gmail.com>",
		"plain-id-without-brackets",
		"<带非ASCII字符@example.com>",
	}
	for _, id := range ids {
		tok := EncodeToken(id)
		got, err := DecodeToken(tok)
		require.NoError(t, err, "id %q", id)
		assert.Equal(t, id, got)
	}
}

func TestDecodeTokenMalformed(t *testing.T) {
	_, err := DecodeToken("not base64 %%%")
	require.Error(t, err)

	var malformed *MalformedTokenError
	assert.True(t, errors.As(err, &malformed))
}

func TestEncodeTokenStaysInsideTag(t *testing.T) {
	// Whatever the message identifier contains, the token must survive a
	// trip through a subject tag.
	tok := EncodeToken("<id-with-#-inside@example.com>")
	got, ok := ParseTag("Re: review " + FormatTag(tok))
	require.True(t, ok)
	assert.Equal(t, tok, got)
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    Token
		ok      bool
	}{
		{"plain tag", "Review request #abc123#", "abc123", true},
		{"reply prefix", "Re: Review request #abc=#", "abc=", true},
		{"first span wins", "#first# and #second#", "first", true},
		{"no tag", "Just a subject", "", false},
		{"empty span", "##", "", false},
		{"unclosed", "#dangling", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTag(tt.subject)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTag(t *testing.T) {
	assert.Equal(t, "#abc#", FormatTag(Token("abc")))
}

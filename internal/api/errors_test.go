package api

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth status", &AuthError{StatusCode: 401, Message: "Unauthorized"}, "reddit auth failed: HTTP 401: Unauthorized"},
		{"auth cause", &AuthError{Err: io.EOF}, "reddit auth failed: EOF"},
		{"auth message and cause", &AuthError{Message: "malformed token response", Err: io.ErrUnexpectedEOF}, "reddit auth failed: malformed token response: unexpected EOF"},
		{"auth message", &AuthError{Message: "token response has no access_token"}, "reddit auth failed: token response has no access_token"},
		{"fetch status", &FetchError{Subreddit: "spacex", StatusCode: 404, Message: "Not Found"}, "fetching r/spacex failed: HTTP 404: Not Found"},
		{"fetch message and cause", &FetchError{Subreddit: "spacex", Message: "malformed listing", Err: io.EOF}, "fetching r/spacex failed: malformed listing: EOF"},
		{"fetch cause", &FetchError{Subreddit: "", Err: io.EOF}, "fetching r/ failed: EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

package api

import "fmt"

// AuthError means the client credential exchange failed.
type AuthError struct {
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	return "reddit auth failed: " + detail(e.StatusCode, e.Message, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError means the listing for a subreddit could not be retrieved.
type FetchError struct {
	Subreddit  string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching r/%s failed: %s", e.Subreddit, detail(e.StatusCode, e.Message, e.Err))
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// detail renders whichever of status, message and cause are set, in that order.
func detail(status int, msg string, err error) string {
	out := msg
	if status != 0 {
		out = fmt.Sprintf("HTTP %d: %s", status, msg)
	}
	if err != nil {
		if out == "" {
			return err.Error()
		}
		return fmt.Sprintf("%s: %v", out, err)
	}
	return out
}

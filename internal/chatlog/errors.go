package chatlog

import "fmt"

// FetchError is returned when a mention read request fails, either at the
// transport level or with a non-2xx status. A sync that hits a FetchError
// leaves the local cache untouched.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mention fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("mention fetch failed: chatlog returned status %d", e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HideError is returned when the best-effort server-side delete of a hidden
// mention fails. The local hidden state is never rolled back on a HideError;
// callers surface it as a non-fatal notice.
type HideError struct {
	MentionID int64
	Status    int
	Err       error
}

func (e *HideError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hide request for mention %d failed: %v", e.MentionID, e.Err)
	}
	return fmt.Sprintf("hide request for mention %d failed: chatlog returned status %d", e.MentionID, e.Status)
}

func (e *HideError) Unwrap() error {
	return e.Err
}

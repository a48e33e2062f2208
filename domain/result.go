package domain

// Result is the outcome of a mutating command.
// A modified result is persisted and broadcast; an unmodified one is only answered.
type Result struct {
	modified bool
	reason   string
}

func Modified() Result {
	return Result{modified: true}
}

// Unmodified rejects a command. An empty reason answers the caller with a null response.
func Unmodified(reason string) Result {
	return Result{reason: reason}
}

func (r Result) IsModified() bool {
	return r.modified
}

func (r Result) Reason() string {
	return r.reason
}

// Response is the value delivered to the caller on the next tick:
// nil for success or a rejection without text, the reason otherwise.
func (r Result) Response() *string {
	if r.modified || r.reason == "" {
		return nil
	}
	reason := r.reason
	return &reason
}

package scheduler

// TraceInfo is a small diagnostics-only descriptor carried by a Task or
// DeferredTask. It has no behavioral effect; it exists purely to give a human
// something to read in logs.
type TraceInfo struct {
	// Content names what the task does, e.g. "decode-texture".
	Content string

	// Purpose names why the task exists, e.g. "user requested image load".
	Purpose string
}

func (t TraceInfo) String() string {
	content, purpose := t.Content, t.Purpose
	if content == "" {
		content = "[unspecified context]"
	}
	if purpose == "" {
		purpose = "[unspecified purpose]"
	}
	return content + ": " + purpose
}

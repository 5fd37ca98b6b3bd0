package store

// Speaker identifies who produced a transcript entry.
const (
	SpeakerUser = "user"
	SpeakerBot  = "bot"
)

// Selected model for a session.
const (
	ModelNone     = ""
	ModelDiabetes = "diabetes"
	ModelMovie    = "movie"
)

// Diabetes dialogue steps.
const (
	StepNone             = ""
	StepAwaitingChoice   = "AWAITING_CHOICE"
	StepAwaitingImage    = "AWAITING_IMAGE"
	StepCollectingFields = "COLLECTING_FIELDS"
)

// Entry is one (speaker, text) line of a session transcript.
type Entry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// CollectedField keeps the ordered field values gathered during the
// step-by-step diabetes dialogue. A slice (not a map) so collection order is
// preserved across persistence round-trips.
type CollectedField struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DiabetesState is the risk sub-dialogue state of a session.
//
// The field sequence itself is fixed (risk.RequiredFields); FieldCursor is an
// index into it rather than a mutable queue, so the persisted session and any
// in-flight working copy can never alias each other.
type DiabetesState struct {
	Step        string           `json:"step"`
	Collected   []CollectedField `json:"collected,omitempty"`
	FieldCursor int              `json:"field_cursor"`
}

// CurrentFieldIndex returns the cursor position, or -1 when the dialogue is
// not collecting fields.
func (s *DiabetesState) CurrentFieldIndex() int {
	if s.Step != StepCollectingFields {
		return -1
	}
	return s.FieldCursor
}

// Reset clears the sub-dialogue back to its idle shape.
func (s *DiabetesState) Reset() {
	s.Step = StepNone
	s.Collected = nil
	s.FieldCursor = 0
}

// Session is the unit of conversational memory, keyed by the opaque session
// id supplied by the transport layer.
type Session struct {
	ID            string  `json:"id"`
	SelectedModel string  `json:"selected_model"`
	Transcript    []Entry `json:"transcript"`

	Diabetes DiabetesState `json:"diabetes"`

	// PendingOptions holds candidate movie titles while the session is
	// awaiting a disambiguation pick; PendingQuery is the query that
	// produced them.
	PendingOptions []string `json:"pending_options,omitempty"`
	PendingQuery   string   `json:"pending_query,omitempty"`
}

// NewSession creates an empty session for the given id.
func NewSession(id string) *Session {
	return &Session{ID: id}
}

// Append adds a transcript entry unless it equals the last one. Consecutive
// duplicates are dropped so a re-prompt never doubles up in the history.
func (s *Session) Append(speaker, text string) {
	if text == "" {
		return
	}
	candidate := Entry{Speaker: speaker, Text: text}
	if n := len(s.Transcript); n > 0 && s.Transcript[n-1] == candidate {
		return
	}
	s.Transcript = append(s.Transcript, candidate)
}

// AwaitingDisambiguation reports whether a movie option set is pending.
func (s *Session) AwaitingDisambiguation() bool {
	return len(s.PendingOptions) > 0
}

// ClearPending drops the pending disambiguation set.
func (s *Session) ClearPending() {
	s.PendingOptions = nil
	s.PendingQuery = ""
}

// Reset clears the transcript and all dialogue state but keeps the selected
// model, matching the clear-history semantics of the chat endpoint.
func (s *Session) Reset() {
	s.Transcript = nil
	s.Diabetes.Reset()
	s.ClearPending()
}

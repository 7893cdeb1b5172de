package domain

// PresentationKind tags the kind of event pushed to the overlay.
type PresentationKind string

const (
	PresentationAlert PresentationKind = "alert"
	PresentationSfx   PresentationKind = "sfx"
	PresentationTts   PresentationKind = "tts"
)

// PresentationEvent is one item of overlay playback. For alerts, DurationMs
// controls how long the item stays visible; sfx and tts items end when the
// overlay reports playback finished.
type PresentationEvent struct {
	// Seq identifies the item within the playback queue. The overlay echoes
	// it in the done signal so repeated signals for one item are detectable.
	Seq         uint64            `json:"seq,omitempty"`
	Kind        PresentationKind  `json:"kind"`
	TypeOrKey   string            `json:"type"`
	Payload     map[string]string `json:"payload,omitempty"`
	DurationMs  int               `json:"durationMs,omitempty"`
	VideoVolume int               `json:"videoVolume,omitempty"`
	SoundVolume int               `json:"soundVolume,omitempty"`
}

// Timed reports whether playback ends on a timer rather than a client signal.
func (e PresentationEvent) Timed() bool {
	return e.Kind == PresentationAlert
}

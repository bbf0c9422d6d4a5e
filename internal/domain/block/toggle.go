package block

import "strconv"

// Element ids and the preference name used by the live/static switch.
const (
	LiveGraphElementID   = "block_ace-live"
	StaticImageElementID = "block_ace-static"
	SwitchElementID      = "block_ace-switchgraph"

	PreferenceHiddenGraph = "block_ace_student_hidden_graph"
)

// EffectKind names one client-side effect of activating a toggle.
type EffectKind string

const (
	EffectShow            EffectKind = "show"
	EffectHide            EffectKind = "hide"
	EffectWritePreference EffectKind = "write_preference"
	EffectRelabel         EffectKind = "relabel"
)

// Effect is one step the client performs when the toggle fires.
type Effect struct {
	Kind   EffectKind `json:"kind"`
	Target string     `json:"target"`
	Value  string     `json:"value,omitempty"`
}

// ToggleBinding declares the live/static switch: which element triggers it,
// the current state, and what each activation does. Preference writes are
// fire-and-forget; the last activation wins.
type ToggleBinding struct {
	TriggerID     string `json:"triggerId"`
	Event         string `json:"event"`
	Hidden        bool   `json:"hidden"`
	LiveID        string `json:"liveId"`
	StaticID      string `json:"staticId"`
	PreferenceKey string `json:"preferenceKey"`
	// ShowLiveLabel is shown while the live graph is hidden.
	ShowLiveLabel string `json:"showLiveLabel"`
	// ShowStaticLabel is shown while the live graph is visible.
	ShowStaticLabel string `json:"showStaticLabel"`
}

// NewStudentGraphToggle builds the binding used by the Student mode.
func NewStudentGraphToggle(hidden bool, showLiveLabel, showStaticLabel string) *ToggleBinding {
	return &ToggleBinding{
		TriggerID:       SwitchElementID,
		Event:           "click",
		Hidden:          hidden,
		LiveID:          LiveGraphElementID,
		StaticID:        StaticImageElementID,
		PreferenceKey:   PreferenceHiddenGraph,
		ShowLiveLabel:   showLiveLabel,
		ShowStaticLabel: showStaticLabel,
	}
}

// Label is the text the trigger carries in the current state: the action
// opposite to what is shown.
func (b ToggleBinding) Label() string {
	if b.Hidden {
		return b.ShowLiveLabel
	}
	return b.ShowStaticLabel
}

// Activate returns the binding after one activation together with the
// effects the client performs, in order.
func (b ToggleBinding) Activate() (ToggleBinding, []Effect) {
	next := b
	next.Hidden = !b.Hidden

	shown, hidden := next.LiveID, next.StaticID
	if next.Hidden {
		shown, hidden = next.StaticID, next.LiveID
	}

	return next, []Effect{
		{Kind: EffectWritePreference, Target: next.PreferenceKey, Value: strconv.FormatBool(next.Hidden)},
		{Kind: EffectShow, Target: shown},
		{Kind: EffectHide, Target: hidden},
		{Kind: EffectRelabel, Target: next.TriggerID, Value: next.Label()},
	}
}

package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		graphType string
		want      Mode
	}{
		{"", ModeStudent},
		{"student", ModeStudent},
		{"course", ModeCourse},
		{"studentwithtabs", ModeStudentWithTabs},
		{"teachercourse", ModeTeacherCourse},
		{"activity", ModeActivity},
		{"studentteachergraph", ModeStudentTeacherAuto},
	}

	for _, tt := range tests {
		t.Run(tt.graphType, func(t *testing.T) {
			got, err := ParseMode(tt.graphType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMode_Unknown(t *testing.T) {
	for _, graphType := range []string{"Student", "pie", " student", "unknown"} {
		mode, err := ParseMode(graphType)
		assert.ErrorIs(t, err, ErrUnknownMode, graphType)
		assert.Equal(t, ModeUnknown, mode)
	}
}

func TestModes_RoundTrip(t *testing.T) {
	seen := make(map[string]bool)
	for _, mode := range Modes() {
		name := mode.GraphType()
		require.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate graph type %s", name)
		seen[name] = true

		parsed, err := ParseMode(name)
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
		assert.Equal(t, name+"titlehelper", mode.HelpStringKey())
	}
	assert.Len(t, seen, 6)
}

func TestModeUnknown(t *testing.T) {
	assert.Equal(t, "unknown", ModeUnknown.String())
	assert.Empty(t, ModeUnknown.GraphType())
	assert.Empty(t, ModeUnknown.HelpStringKey())
}

func TestWidgetOutput_IsEmpty(t *testing.T) {
	var nilOutput *WidgetOutput
	assert.True(t, nilOutput.IsEmpty())

	out := EmptyOutput()
	assert.True(t, out.IsEmpty())
	assert.NotNil(t, out.Items)
	assert.NotNil(t, out.Icons)

	out.Text = "<h5>x</h5>"
	assert.False(t, out.IsEmpty())
}

// Package block provides the domain entities of the engagement block:
// its display modes, instance configuration, viewer context, render output
// and the client toggle contract.
package block

import (
	"errors"
	"fmt"
)

// Mode is the configured display variant of a block instance.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeStudent
	ModeCourse
	ModeStudentWithTabs
	ModeTeacherCourse
	ModeActivity
	ModeStudentTeacherAuto
)

// DefaultGraphType is used when an instance has no graphtype configured.
const DefaultGraphType = "student"

// ErrUnknownMode is returned for graphtype values outside the six modes.
var ErrUnknownMode = errors.New("unknown graph type")

var graphTypes = map[Mode]string{
	ModeStudent:            "student",
	ModeCourse:             "course",
	ModeStudentWithTabs:    "studentwithtabs",
	ModeTeacherCourse:      "teachercourse",
	ModeActivity:           "activity",
	ModeStudentTeacherAuto: "studentteachergraph",
}

// Modes lists every renderable mode in configuration-form order.
func Modes() []Mode {
	return []Mode{
		ModeStudent,
		ModeCourse,
		ModeStudentWithTabs,
		ModeTeacherCourse,
		ModeActivity,
		ModeStudentTeacherAuto,
	}
}

// ParseMode maps a graphtype value to its mode. The empty string selects
// the default mode.
func ParseMode(graphType string) (Mode, error) {
	if graphType == "" {
		graphType = DefaultGraphType
	}
	for mode, name := range graphTypes {
		if name == graphType {
			return mode, nil
		}
	}
	return ModeUnknown, fmt.Errorf("%w: %q", ErrUnknownMode, graphType)
}

// GraphType returns the configuration value for the mode.
func (m Mode) GraphType() string {
	return graphTypes[m]
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if name, ok := graphTypes[m]; ok {
		return name
	}
	return "unknown"
}

// HelpStringKey is the string identifier of the mode's title helper text.
func (m Mode) HelpStringKey() string {
	if m == ModeUnknown {
		return ""
	}
	return m.GraphType() + "titlehelper"
}

// LabelStringKey is the string identifier of the mode's option label.
func (m Mode) LabelStringKey() string {
	return m.GraphType()
}

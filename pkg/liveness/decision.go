package liveness

import (
	"fmt"
	"strings"
)

type Status uint8

const (
	StatusNoFace Status = iota + 1
	StatusOutOfRegion
	StatusInvalid
	StatusValidating
	StatusAccepted
	StatusAlreadyAccepted
)

var statusNames = map[Status]string{
	StatusNoFace:          "no_face",
	StatusOutOfRegion:     "out_of_region",
	StatusInvalid:         "invalid",
	StatusValidating:      "validating",
	StatusAccepted:        "accepted",
	StatusAlreadyAccepted: "already_accepted",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Reason is a bit set explaining an Invalid decision.
type Reason uint8

const (
	ReasonNotFrontal Reason = 1 << iota
	ReasonLowConfidence
)

func (r Reason) Has(flag Reason) bool {
	return r&flag != 0
}

func (r Reason) String() string {
	var parts []string
	if r.Has(ReasonNotFrontal) {
		parts = append(parts, "not_frontal")
	}
	if r.Has(ReasonLowConfidence) {
		parts = append(parts, "low_confidence")
	}
	return strings.Join(parts, ",")
}

func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Reason) UnmarshalText(text []byte) error {
	*r = 0
	if len(text) == 0 {
		return nil
	}
	for _, part := range strings.Split(string(text), ",") {
		switch part {
		case "not_frontal":
			*r |= ReasonNotFrontal
		case "low_confidence":
			*r |= ReasonLowConfidence
		default:
			return fmt.Errorf("unknown reason %q", part)
		}
	}
	return nil
}

type Decision struct {
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	Reason   Reason `json:"reason,omitempty"`
}

// Terminal reports whether the capture loop should stop.
func (d Decision) Terminal() bool {
	return d.Status == StatusAccepted || d.Status == StatusAlreadyAccepted
}

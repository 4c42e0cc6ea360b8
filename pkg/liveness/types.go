package liveness

import "fmt"

type Keypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Keypoint order produced by the face detector.
const (
	KeypointLeftEye = iota
	KeypointRightEye
	KeypointNoseTip
)

type BoundingBox struct {
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Observation is a single face detection for one video frame. Box coordinates are in
// source-frame pixels, keypoints are normalized to the frame size.
type Observation struct {
	Confidence  float64     `json:"confidence" validate:"gte=0,lte=1"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Keypoints   []Keypoint  `json:"keypoints"`
	FrameWidth  float64     `json:"frame_width" validate:"gte=0"`
	FrameHeight float64     `json:"frame_height" validate:"gte=0"`
}

type Region struct {
	X      float64 `json:"x" validate:"gte=0,lte=1"`
	Y      float64 `json:"y" validate:"gte=0,lte=1"`
	Width  float64 `json:"width" validate:"gt=0,lte=1"`
	Height float64 `json:"height" validate:"gt=0,lte=1"`
}

type Containment string

const (
	ContainmentCenter Containment = "center"
	ContainmentFull   Containment = "full"
)

type Config struct {
	MinConfidence             float64     `json:"min_confidence" validate:"gte=0,lt=1"`
	RequiredConsecutiveFrames int         `json:"required_consecutive_frames" validate:"gt=0"`
	FrontalRatioThreshold     float64     `json:"frontal_ratio_threshold" validate:"gt=0,lte=1"`
	RegionOfInterest          *Region     `json:"region_of_interest,omitempty" validate:"omitempty"`
	Containment               Containment `json:"containment" validate:"omitempty,oneof=center full"`
	Mirrored                  bool        `json:"mirrored"`
}

type Phase uint8

const (
	PhaseDetecting Phase = iota
	PhaseSucceeded
)

var phaseNames = map[Phase]string{
	PhaseDetecting: "detecting",
	PhaseSucceeded: "succeeded",
}

func (p Phase) String() string {
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

type State struct {
	ConsecutiveFrames int
	Phase             Phase
}

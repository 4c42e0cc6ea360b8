package entity

import "FaceLiveness/pkg/liveness"

// FaceDetectionResult is the face AI service's reply for one frame.
// BBox is [x, y, width, height] in pixels, Keypoints are normalized [x, y] pairs.
type FaceDetectionResult struct {
	Detected    bool         `json:"detected"`
	Score       float64      `json:"score"`
	BBox        []float64    `json:"bbox,omitempty"`
	Keypoints   [][2]float64 `json:"keypoints,omitempty"`
	FrameWidth  float64      `json:"frame_width"`
	FrameHeight float64      `json:"frame_height"`
	Error       string       `json:"error,omitempty"`
}

// Observation returns nil when no usable face was reported.
func (r FaceDetectionResult) Observation() *liveness.Observation {
	if !r.Detected || len(r.BBox) != 4 {
		return nil
	}

	keypoints := make([]liveness.Keypoint, 0, len(r.Keypoints))
	for _, kp := range r.Keypoints {
		keypoints = append(keypoints, liveness.Keypoint{X: kp[0], Y: kp[1]})
	}

	return &liveness.Observation{
		Confidence: r.Score,
		BoundingBox: liveness.BoundingBox{
			OriginX: r.BBox[0],
			OriginY: r.BBox[1],
			Width:   r.BBox[2],
			Height:  r.BBox[3],
		},
		Keypoints:   keypoints,
		FrameWidth:  r.FrameWidth,
		FrameHeight: r.FrameHeight,
	}
}

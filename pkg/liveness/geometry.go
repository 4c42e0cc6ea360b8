package liveness

import "math"

// FrontalityRatio returns min/max of the horizontal nose-to-eye distances. ok is false when
// keypoints are missing or either distance is zero.
func FrontalityRatio(keypoints []Keypoint) (ratio float64, ok bool) {
	if len(keypoints) <= KeypointNoseTip {
		return 0, false
	}

	leftEye := keypoints[KeypointLeftEye]
	rightEye := keypoints[KeypointRightEye]
	nose := keypoints[KeypointNoseTip]

	dLeft := math.Abs(nose.X - leftEye.X)
	dRight := math.Abs(nose.X - rightEye.X)
	if dLeft == 0 || dRight == 0 {
		return 0, false
	}

	return math.Min(dLeft, dRight) / math.Max(dLeft, dRight), true
}

func IsFacingForward(keypoints []Keypoint, threshold float64) bool {
	ratio, ok := FrontalityRatio(keypoints)
	if !ok {
		return false
	}
	return ratio > threshold
}

// normalizedBox converts a pixel box to frame-relative coordinates, flipping the x axis
// when the frame is displayed mirrored.
func normalizedBox(obs *Observation, mirrored bool) (Region, bool) {
	if obs.FrameWidth <= 0 || obs.FrameHeight <= 0 {
		return Region{}, false
	}

	box := Region{
		X:      obs.BoundingBox.OriginX / obs.FrameWidth,
		Y:      obs.BoundingBox.OriginY / obs.FrameHeight,
		Width:  obs.BoundingBox.Width / obs.FrameWidth,
		Height: obs.BoundingBox.Height / obs.FrameHeight,
	}
	if mirrored {
		box.X = 1 - box.X - box.Width
	}

	return box, true
}

func (r Region) contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// InRegion reports whether the observation lies inside roi under the given policy.
// Observations without a frame size cannot be placed and are treated as outside.
func InRegion(obs *Observation, roi Region, policy Containment, mirrored bool) bool {
	box, ok := normalizedBox(obs, mirrored)
	if !ok {
		return false
	}

	if policy == ContainmentFull {
		return roi.contains(box.X, box.Y) && roi.contains(box.X+box.Width, box.Y+box.Height)
	}

	return roi.contains(box.X+box.Width/2, box.Y+box.Height/2)
}

// Package metrics extracts raw geometric scalars from a landmark frame.
// Extraction is pure and total: missing regions map to neutral defaults
// and degenerate geometry yields 0, never NaN or Inf.
package metrics

import (
	"math"

	"github.com/facepilot/facepilot/pkg/landmark"
)

// Neutral defaults for missing regions.
const (
	// NeutralOpenness is reported for an eye whose region is absent.
	// A missing eye must read as open, not closed.
	NeutralOpenness = 1.0
)

// Raw is the per-frame scalar bundle. Transient: recomputed every frame,
// never persisted.
type Raw struct {
	EyeOpenLeft      float64 // Left eye openness (box aspect ratio)
	EyeOpenRight     float64 // Right eye openness
	InnerLipHeight   float64 // Inner lips box height
	OuterLipWidth    float64 // Outer lips box width
	HeightWidthRatio float64 // InnerLipHeight / OuterLipWidth (0 if width <= 0)
	BrowEyeDistance  float64 // Mean eyebrow-to-eye vertical distance, both sides averaged
	SquintGap        float64 // Horizontal gap between innermost eyebrow points
	MouthDistLeft    float64 // |noseCenterX - outerLips minX|
	MouthDistRight   float64 // |outerLips maxX - noseCenterX|
}

// Extract computes the raw metric bundle for one landmark frame
func Extract(frame landmark.Frame) Raw {
	raw := Raw{
		EyeOpenLeft:  eyeOpenness(frame.Region(landmark.LeftEye)),
		EyeOpenRight: eyeOpenness(frame.Region(landmark.RightEye)),
	}

	innerBox, hasInner := landmark.Bounds(frame.Region(landmark.InnerLips))
	outerBox, hasOuter := landmark.Bounds(frame.Region(landmark.OuterLips))

	if hasInner {
		raw.InnerLipHeight = innerBox.Height()
	}
	if hasOuter {
		raw.OuterLipWidth = outerBox.Width()
	}
	if raw.OuterLipWidth > 0 {
		raw.HeightWidthRatio = raw.InnerLipHeight / raw.OuterLipWidth
	}

	raw.BrowEyeDistance = browEyeDistance(frame)
	raw.SquintGap = squintGap(frame)

	if noseBox, ok := landmark.Bounds(frame.Region(landmark.Nose)); ok && hasOuter {
		noseCenterX := noseBox.CenterX()
		raw.MouthDistLeft = math.Abs(noseCenterX - outerBox.MinX)
		raw.MouthDistRight = math.Abs(outerBox.MaxX - noseCenterX)
	}

	return raw
}

// eyeOpenness is the eye box height over width. A missing region reads as
// fully open; a zero-width box reads as 0.
func eyeOpenness(pts []landmark.Point) float64 {
	box, ok := landmark.Bounds(pts)
	if !ok {
		return NeutralOpenness
	}
	width := box.Width()
	if width <= 0 {
		return 0
	}
	return box.Height() / width
}

// browEyeDistance is the mean eyebrow y minus mean eye y, per side,
// averaged across the sides that are present.
func browEyeDistance(frame landmark.Frame) float64 {
	sum := 0.0
	sides := 0

	left := sideDistance(frame.Region(landmark.LeftEyebrow), frame.Region(landmark.LeftEye))
	if left != nil {
		sum += *left
		sides++
	}
	right := sideDistance(frame.Region(landmark.RightEyebrow), frame.Region(landmark.RightEye))
	if right != nil {
		sum += *right
		sides++
	}

	if sides == 0 {
		return 0
	}
	return sum / float64(sides)
}

func sideDistance(brow, eye []landmark.Point) *float64 {
	if len(brow) == 0 || len(eye) == 0 {
		return nil
	}
	d := landmark.MeanY(brow) - landmark.MeanY(eye)
	return &d
}

// squintGap is the horizontal gap between the innermost point of each
// eyebrow: max-x of the left brow, min-x of the right brow.
func squintGap(frame landmark.Frame) float64 {
	leftBox, okL := landmark.Bounds(frame.Region(landmark.LeftEyebrow))
	rightBox, okR := landmark.Bounds(frame.Region(landmark.RightEyebrow))
	if !okL || !okR {
		return 0
	}
	return rightBox.MinX - leftBox.MaxX
}

// Package landmark defines the facial landmark frame schema produced by an
// external landmark daemon, and the provider contract for receiving frames.
package landmark

// Region names a group of landmark points on the face.
// Point coordinates are normalized to the face bounding box (0-1).
type Region string

const (
	LeftEye      Region = "leftEye"
	RightEye     Region = "rightEye"
	InnerLips    Region = "innerLips"
	OuterLips    Region = "outerLips"
	LeftEyebrow  Region = "leftEyebrow"
	RightEyebrow Region = "rightEyebrow"
	Nose         Region = "nose"
	NoseCrest    Region = "noseCrest"
	Contour      Region = "contour"
)

// Point is a 2D landmark point normalized to the face box
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is one set of landmark regions for the primary detected face.
// Regions may be absent; consumers must treat a missing region as neutral.
type Frame struct {
	FrameID uint64
	Regions map[Region][]Point
}

// Region returns the points of a region, or nil if absent
func (f Frame) Region(name Region) []Point {
	return f.Regions[name]
}

// HasLandmarks reports whether any region carries points
func (f Frame) HasLandmarks() bool {
	for _, pts := range f.Regions {
		if len(pts) > 0 {
			return true
		}
	}
	return false
}

// Box is an axis-aligned bounding box over a region
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the box width
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// CenterX returns the midpoint of the box's x-extent
func (b Box) CenterX() float64 { return (b.MinX + b.MaxX) / 2 }

// Bounds computes the bounding box of a point set.
// Returns ok=false for an empty set.
func Bounds(pts []Point) (Box, bool) {
	if len(pts) == 0 {
		return Box{}, false
	}
	b := Box{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b, true
}

// MeanY returns the mean y coordinate of a point set, or 0 for an empty set
func MeanY(pts []Point) float64 {
	if len(pts) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range pts {
		sum += p.Y
	}
	return sum / float64(len(pts))
}

// Provider delivers landmark frames from an external detector.
// A frame with no landmarks means the detector found no face this tick.
type Provider interface {
	// Frames returns the channel of incoming landmark frames.
	Frames() <-chan Frame

	// Close releases resources
	Close() error
}

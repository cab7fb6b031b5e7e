// Package perception fuses the robot's three sensor streams — color blob
// detections, a depth point cloud, and the contact bumper — into a single
// consistent Snapshot consumed by the behavior arbiter.
//
// Each processor owns its subset of the snapshot and publishes updates as
// one atomic unit through the Board, so the arbiter never observes a torn
// partial update.
package perception

import (
	"time"

	"github.com/pkg/errors"

	"github.com/redbeacon-robotics/seekbot/internal/config"
)

// Frame validation errors. A frame failing validation is dropped and the
// prior snapshot retained; these are never fatal.
var (
	ErrBlobCountMismatch = errors.New("blob frame: declared count does not match blob list")
	ErrDepthSize         = errors.New("depth frame: buffer size does not match declared dimensions")
)

// Blob is one color-classified image region from the upstream segmenter.
type Blob struct {
	Color config.RGB `json:"color"`
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	Area  float64    `json:"area"`
}

// BlobFrame is one segmenter output frame.
type BlobFrame struct {
	Count int    `json:"blob_count"`
	Blobs []Blob `json:"blobs"`
}

// Validate rejects frames whose declared count disagrees with the payload,
// so no consumer ever indexes past the blob list.
func (f BlobFrame) Validate() error {
	if f.Count < 0 || f.Count != len(f.Blobs) {
		return errors.Wrapf(ErrBlobCountMismatch, "count=%d len=%d", f.Count, len(f.Blobs))
	}
	return nil
}

// DepthFrame is a dense row-major buffer of per-pixel distances.
type DepthFrame struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Depth  []float32 `json:"depth"`
}

// Validate rejects buffers that do not match the declared dimensions.
func (f DepthFrame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 || len(f.Depth) != f.Width*f.Height {
		return errors.Wrapf(ErrDepthSize, "%dx%d len=%d", f.Width, f.Height, len(f.Depth))
	}
	return nil
}

// BumperEvent is a discrete contact transition.
type BumperEvent struct {
	Pressed bool `json:"pressed"`
}

// Snapshot is the fused sensor view, read by value once per control tick.
//
// GoalOffset and GoalArea are meaningful only while GoalFound is true.
// ObstacleFound is true whenever BumperContact is true, regardless of what
// the depth sampler last saw (sticky-OR).
type Snapshot struct {
	GoalFound  bool    `json:"goal_found"`
	GoalOffset float64 `json:"goal_offset"` // pixels right of image center
	GoalArea   float64 `json:"goal_area"`   // summed matched blob area, px²

	ObstacleFound bool `json:"obstacle_found"`
	BumperContact bool `json:"bumper_contact"`

	BlobSeen   time.Time `json:"-"`
	DepthSeen  time.Time `json:"-"`
	BumperSeen time.Time `json:"-"`
}

package perception

import (
	"github.com/redbeacon-robotics/seekbot/internal/config"
)

// BlobEstimator reduces a segmenter frame to the goal fields of the
// snapshot: an area-weighted horizontal centroid over blobs matching the
// target color signature, and a goal-visible flag.
type BlobEstimator struct {
	target     config.RGB
	areaThresh float64
	halfWidth  float64

	board *Board
}

// NewBlobEstimator builds an estimator writing into board.
func NewBlobEstimator(cfg config.PerceptionConfig, board *Board) *BlobEstimator {
	return &BlobEstimator{
		target:     cfg.TargetColor,
		areaThresh: cfg.AreaThresh,
		halfWidth:  float64(cfg.ImageWidth) / 2,
		board:      board,
	}
}

// HandleFrame evaluates one blob frame.
//
// An empty frame is a deliberate no-op: the previous goal decision stands
// until the segmenter reports blobs again. Malformed frames are rejected
// without touching the snapshot.
func (e *BlobEstimator) HandleFrame(f BlobFrame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Count == 0 {
		e.board.markBlobSeen()
		return nil
	}

	var areaSum, weightedX float64
	for _, b := range f.Blobs {
		if b.Color != e.target {
			continue
		}
		areaSum += b.Area
		weightedX += b.Area * b.X
	}

	// Strictly greater: a frame summing to exactly the threshold does
	// not count as a sighting.
	if areaSum > e.areaThresh {
		offset := weightedX/areaSum - e.halfWidth
		e.board.publishGoal(true, offset, areaSum)
		return nil
	}
	e.board.publishGoal(false, 0, areaSum)
	return nil
}

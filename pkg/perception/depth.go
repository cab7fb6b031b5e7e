package perception

import (
	"github.com/pkg/errors"

	"github.com/redbeacon-robotics/seekbot/internal/config"
)

// DepthSampler scans a fixed region of interest of each depth frame — the
// lower-middle band where nearby floor-level obstacles project — and counts
// points closer than the near threshold.
//
// The scan revisits every ROI pixel on every frame (~150k samples at
// 640x480); it is the dominant per-tick cost and is deliberately not
// cached or incremental.
type DepthSampler struct {
	width, height    int
	rowStart, rowEnd int
	nearThresh       float32
	pointThresh      int

	board *Board
}

// NewDepthSampler builds a sampler writing into board.
func NewDepthSampler(cfg config.PerceptionConfig, board *Board) *DepthSampler {
	return &DepthSampler{
		width:       cfg.ImageWidth,
		height:      cfg.ImageHeight,
		rowStart:    cfg.ROIRowStart,
		rowEnd:      cfg.ROIRowEnd,
		nearThresh:  float32(cfg.NearThresh),
		pointThresh: cfg.PointThresh,
		board:       board,
	}
}

// HandleFrame evaluates one depth frame. Frames whose dimensions disagree
// with the configured camera geometry are dropped; the prior snapshot is
// retained and no out-of-bounds read can occur.
func (s *DepthSampler) HandleFrame(f DepthFrame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Width != s.width || f.Height != s.height {
		return errors.Wrapf(ErrDepthSize, "got %dx%d, configured %dx%d", f.Width, f.Height, s.width, s.height)
	}

	near := 0
	for row := s.rowStart; row < s.rowEnd; row++ {
		base := row * s.width
		for col := 0; col < s.width; col++ {
			if f.Depth[base+col] < s.nearThresh {
				near++
			}
		}
	}

	s.board.publishObstacle(near > s.pointThresh)
	return nil
}

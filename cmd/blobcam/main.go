// blobcam: stand-in for the upstream color segmenter. Captures camera
// frames, thresholds the target color, extracts contour blobs and publishes
// BlobFrames to the controller's ingest endpoint. The controller itself
// never sees pixels — only the blob stream this tool (or the real
// segmenter) produces.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/redbeacon-robotics/seekbot/internal/config"
	"github.com/redbeacon-robotics/seekbot/internal/log"
	"github.com/redbeacon-robotics/seekbot/pkg/perception"
	"github.com/redbeacon-robotics/seekbot/pkg/protocol"
)

var (
	deviceID  = flag.Int("device", 0, "camera device id")
	ingestURL = flag.String("ingest", "ws://localhost:9091/ws/blobs", "controller blob endpoint")
	hz        = flag.Float64("hz", 10, "frame rate")
	tolerance = flag.Int("tolerance", 20, "per-channel color tolerance")
	minArea   = flag.Float64("min-area", 50, "ignore contours smaller than this, px²")
)

func main() {
	flag.Parse()
	log.Init("info")

	cfg := config.Default().Perception
	target := cfg.TargetColor

	webcam, err := gocv.OpenVideoCapture(*deviceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open camera %d: %v\n", *deviceID, err)
		os.Exit(1)
	}
	defer webcam.Close()
	webcam.Set(gocv.VideoCaptureFrameWidth, float64(cfg.ImageWidth))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(cfg.ImageHeight))

	conn, _, err := websocket.DefaultDialer.Dial(*ingestURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial ingest %s: %v\n", *ingestURL, err)
		os.Exit(1)
	}
	defer conn.Close()
	log.Info("blobcam publishing", "ingest", *ingestURL, "target", target)

	img := gocv.NewMat()
	defer img.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	// OpenCV reads BGR; the tolerance band is symmetric per channel.
	tol := float64(*tolerance)
	lower := gocv.NewScalar(clamp255(float64(target.B)-tol), clamp255(float64(target.G)-tol), clamp255(float64(target.R)-tol), 0)
	upper := gocv.NewScalar(clamp255(float64(target.B)+tol), clamp255(float64(target.G)+tol), clamp255(float64(target.R)+tol), 0)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / *hz))
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			log.Info("blobcam stopping")
			return
		case <-ticker.C:
		}

		if ok := webcam.Read(&img); !ok || img.Empty() {
			log.Warn("camera read failed, skipping frame")
			continue
		}

		gocv.InRangeWithScalar(img, lower, upper, &mask)
		frame := extractBlobs(mask, target, *minArea)

		msg, err := protocol.NewMessage(protocol.TypeBlobs, frame)
		if err != nil {
			log.Warn("encode frame", "err", err)
			continue
		}
		data, _ := msg.Bytes()
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			fmt.Fprintf(os.Stderr, "ingest connection lost: %v\n", err)
			os.Exit(1)
		}
	}
}

// extractBlobs turns a binary mask into blob detections. Centroids come
// from contour bounding boxes; the segmenter only matches one signature,
// so every blob carries the target color.
func extractBlobs(mask gocv.Mat, target config.RGB, minArea float64) perception.BlobFrame {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var blobs []perception.Blob
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < minArea {
			continue
		}
		rect := gocv.BoundingRect(contour)
		blobs = append(blobs, perception.Blob{
			Color: target,
			X:     float64(rect.Min.X+rect.Max.X) / 2,
			Y:     float64(rect.Min.Y+rect.Max.Y) / 2,
			Area:  area,
		})
	}
	return perception.BlobFrame{Count: len(blobs), Blobs: blobs}
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

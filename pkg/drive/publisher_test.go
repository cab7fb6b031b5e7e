package drive

import "testing"

func TestChanPublisher_DropsWhenFull(t *testing.T) {
	pub := NewChanPublisher(1)

	if err := pub.Publish(Command{LinearX: 0.15}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	// Buffer is full and nobody is draining: the control loop must not block.
	if err := pub.Publish(Command{AngularZ: 0.7}); err == nil {
		t.Error("expected error on full channel")
	}

	got := <-pub.C
	if got.LinearX != 0.15 {
		t.Errorf("queued command: got %+v", got)
	}
}

func TestStop_IsZero(t *testing.T) {
	if Stop.LinearX != 0 || Stop.AngularZ != 0 {
		t.Errorf("Stop is not the zero command: %+v", Stop)
	}
}

package browser

import (
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// pageSession adapts a rod page to the capture.Session interface. All
// four operations are blocking CDP round-trips; the capture pipeline
// sequences them, never overlapping calls on one page.
type pageSession struct {
	page *rod.Page
}

func (s *pageSession) Evaluate(js string) (gson.JSON, error) {
	res, err := s.page.Eval(js)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}

func (s *pageSession) Resize(width, height int) error {
	return s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
}

func (s *pageSession) Capture() ([]byte, error) {
	return s.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (s *pageSession) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-s.page.GetContext().Done():
	}
}

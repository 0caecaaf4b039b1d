package browser

import (
	"testing"
	"time"
)

func TestPageHandle_RetiresOnRepeatedFailures(t *testing.T) {
	h := &pageHandle{created: time.Now()}

	for i := 0; i < 2; i++ {
		h.recordResult(false)
	}
	if h.shouldRetire() {
		t.Error("handle retired after only 2 failures")
	}

	h.recordResult(false)
	if !h.shouldRetire() {
		t.Error("handle should retire after 3 consecutive failures")
	}
}

func TestPageHandle_SuccessRecoversScore(t *testing.T) {
	h := &pageHandle{created: time.Now()}

	h.recordResult(false)
	h.recordResult(false)
	// Successes claw back the error score at half rate.
	h.recordResult(true)
	h.recordResult(true)
	h.recordResult(true)
	h.recordResult(true)

	h.recordResult(false)
	if h.shouldRetire() {
		t.Error("recovered handle retired too early")
	}
}

func TestPageHandle_RetiresOnUseCount(t *testing.T) {
	h := &pageHandle{created: time.Now()}

	for i := 0; i < retireUseCount; i++ {
		h.recordResult(true)
	}
	if !h.shouldRetire() {
		t.Errorf("handle should retire after %d uses", retireUseCount)
	}
}

func TestPageHandle_RetiresOnAge(t *testing.T) {
	h := &pageHandle{created: time.Now().Add(-retireAge - time.Minute)}

	if !h.shouldRetire() {
		t.Error("handle older than the retirement age should retire")
	}
}

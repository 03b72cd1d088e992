package sensors

import (
	"github.com/relabs-tech/balance_board/internal/tilt"
)

// Source is anything that can hand out accelerometer samples on demand.
// TryAcquire must not block: it either returns a sample promptly or reports
// that no new data is available this tick.
type Source interface {
	TryAcquire() (tilt.AccelSample, bool)
}

package vecmcp

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/usecase/tools"
)

// observer logs each SDK call with its error code. Metrics are recorded by
// the tool layer and exposed through WithPrometheus.
type observer struct {
	logger *zap.Logger
}

func newObserver(logger *zap.Logger) *observer {
	if logger == nil {
		return nil
	}
	return &observer{logger: logger}
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	took := time.Since(start)
	if err == nil {
		o.logger.Debug("sdk call", zap.String("op", op), zap.Duration("took", took))
		return
	}
	o.logger.Warn("sdk call failed",
		zap.String("op", op),
		zap.String("code", tools.ErrorCode(err)),
		zap.Duration("took", took),
		zap.Error(err),
	)
}

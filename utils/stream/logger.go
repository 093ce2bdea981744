package stream

import "go.uber.org/zap"

// Log logs values as they pass through at debug level.
// describe converts each value into log fields.
func Log(logger *zap.Logger, msg string, describe func(value interface{}) []zap.Field) Processor {
	if logger == nil || !logger.Core().Enabled(zap.DebugLevel) {
		return nil
	}

	return func(stream Stream) Stream {
		return &loggedStream{stream, logger, msg, describe}
	}
}

type loggedStream struct {
	Stream
	logger   *zap.Logger
	msg      string
	describe func(value interface{}) []zap.Field
}

func (stream *loggedStream) Next() bool {
	if !stream.Stream.Next() {
		if err := stream.Stream.Error(); err != nil {
			stream.logger.Debug(stream.msg, zap.Error(err))
		}

		return false
	}

	stream.logger.Debug(stream.msg, stream.describe(stream.Value())...)

	return true
}

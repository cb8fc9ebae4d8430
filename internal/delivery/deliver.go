package delivery

import (
	"context"
	"errors"
	"fmt"
)

// Result classifies the outcome of Deliver.
type Result string

const (
	ResultSent      Result = "sent"
	ResultFallback  Result = "fallback"
	ResultForbidden Result = "forbidden"
	ResultFailed    Result = "failed"
)

// Deliver posts n to ch as a rich message. A permission failure ends the
// attempt; any other failure is retried once as plain text.
// The returned error describes the last failure, if any.
func Deliver(ctx context.Context, sink Sink, ch Channel, n Notification) (Result, error) {
	err := sink.SendMessage(ctx, ch, n.Message)
	if err == nil {
		return ResultSent, nil
	}
	if errors.Is(err, ErrForbidden) {
		return ResultForbidden, err
	}

	if textErr := sink.SendText(ctx, ch, n.Text); textErr != nil {
		return ResultFailed, fmt.Errorf("rich: %v; text: %w", err, textErr)
	}
	return ResultFallback, err
}

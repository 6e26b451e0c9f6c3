package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"drafthub/internal/domain"
)

// Payload is the dictionary handed to a send adapter at dispatch time.
type Payload struct {
	DraftID        string         `json:"draft_id"`
	ConversationID string         `json:"conversation_id"`
	Channel        string         `json:"channel"`
	FinalText      string         `json:"final_text"`
	CustomerEmail  string         `json:"customer_email,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// SendResult is the outcome delivered by an asynchronous adapter.
type SendResult struct {
	MsgID string
	Err   error
}

// SendFunc is the synchronous adapter form: it blocks until the channel
// back-end accepts the message and returns the external message id.
type SendFunc func(ctx context.Context, payload Payload) (string, error)

// SendStarter is the asynchronous adapter form: it starts the send and
// returns a channel that yields exactly one SendResult. The registry awaits
// it transparently, so callers never see the difference.
type SendStarter func(ctx context.Context, payload Payload) (<-chan SendResult, error)

// Registry maps a channel name to its send binding. Integration code
// registers whichever form matches its client library; Dispatch detects the
// form at invocation time.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]any
	logger   *slog.Logger
}

// NewRegistry creates an empty adapter registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		bindings: make(map[string]any),
		logger:   logger,
	}
}

// Register stores fn under channel, replacing any prior binding. fn must be
// a SendFunc or a SendStarter (the bare func signatures are accepted too).
func (r *Registry) Register(channel string, fn any) error {
	var binding any
	switch f := fn.(type) {
	case SendFunc:
		binding = f
	case func(context.Context, Payload) (string, error):
		binding = SendFunc(f)
	case SendStarter:
		binding = f
	case func(context.Context, Payload) (<-chan SendResult, error):
		binding = SendStarter(f)
	default:
		return fmt.Errorf("unsupported adapter form %T for channel %q", fn, channel)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, replaced := r.bindings[channel]; replaced {
		r.logger.Info("adapter replaced", "channel", channel)
	}
	r.bindings[channel] = binding
	return nil
}

// Registered reports whether a binding exists for the channel.
func (r *Registry) Registered(channel string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.bindings[channel]
	return ok
}

// Reset drops all bindings. Test harness hook.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings = make(map[string]any)
}

// Dispatch resolves the channel binding, invokes it, and awaits the result
// when the binding is asynchronous. Returns the external message id.
// Fails with ChannelUnregisteredError when no binding exists, or
// DispatchError wrapping whatever the adapter raised.
func (r *Registry) Dispatch(ctx context.Context, channel string, payload Payload) (msgID string, err error) {
	r.mu.RLock()
	binding, ok := r.bindings[channel]
	r.mu.RUnlock()

	if !ok {
		return "", &domain.ChannelUnregisteredError{Channel: channel}
	}

	// An adapter panic must surface to the caller like any other adapter
	// failure, not kill the process.
	defer func() {
		if rec := recover(); rec != nil {
			err = &domain.DispatchError{Channel: channel, Err: fmt.Errorf("adapter panic: %v", rec)}
		}
	}()

	switch fn := binding.(type) {
	case SendFunc:
		id, sendErr := fn(ctx, payload)
		if sendErr != nil {
			return "", &domain.DispatchError{Channel: channel, Err: sendErr}
		}
		return id, nil

	case SendStarter:
		results, startErr := fn(ctx, payload)
		if startErr != nil {
			return "", &domain.DispatchError{Channel: channel, Err: startErr}
		}
		select {
		case res, open := <-results:
			if !open {
				return "", &domain.DispatchError{Channel: channel, Err: fmt.Errorf("adapter closed result channel without a result")}
			}
			if res.Err != nil {
				return "", &domain.DispatchError{Channel: channel, Err: res.Err}
			}
			return res.MsgID, nil
		case <-ctx.Done():
			return "", &domain.DispatchError{Channel: channel, Err: ctx.Err()}
		}

	default:
		// Unreachable: Register only stores the two known forms.
		return "", &domain.DispatchError{Channel: channel, Err: fmt.Errorf("unknown binding type %T", binding)}
	}
}

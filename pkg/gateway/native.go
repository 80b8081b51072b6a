package gateway

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// MaxOutgoingMessage is the largest message a native host may send to
	// the browser.
	MaxOutgoingMessage = 1 << 20

	// MaxIncomingMessage bounds messages read from the browser.
	MaxIncomingMessage = 64 << 20
)

// ErrMessageTooLarge is returned for frames over the size limit.
var ErrMessageTooLarge = errors.New("native message too large")

// ReadMessage reads one length-prefixed JSON frame into v. The prefix is a
// 32-bit length in native byte order. io.EOF is returned unchanged when the
// stream ends between frames.
func ReadMessage(r io.Reader, v any) error {
	var size uint32
	if err := binary.Read(r, binary.NativeEndian, &size); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("reading frame length: %w", err)
		}
		return err
	}
	if size > MaxIncomingMessage {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("reading frame body: %w", err)
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("decoding frame: %w", err)
	}
	return nil
}

// WriteMessage encodes v as JSON and writes it as one frame.
func WriteMessage(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	if len(body) > MaxOutgoingMessage {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(body))
	}
	frame := make([]byte, 4+len(body))
	binary.NativeEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)
	_, err = w.Write(frame)
	return err
}

// Handler serves one request.
type Handler interface {
	Handle(ctx context.Context, req Request) Response
}

// Serve reads requests from r and writes responses to w until r is exhausted
// or ctx is cancelled. Requests are handled one at a time in arrival order.
func Serve(ctx context.Context, h Handler, r io.Reader, w io.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req Request
		err := ReadMessage(r, &req)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil && errors.Is(err, ErrMessageTooLarge):
			// The oversized body was not consumed, so the stream is unusable.
			return err
		case err != nil:
			var syntax *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntax) || errors.As(err, &typeErr) {
				if werr := WriteMessage(w, failure(&InvalidSettingsFormatError{Reason: "malformed request", Err: err})); werr != nil {
					return werr
				}
				continue
			}
			return err
		}

		resp := h.Handle(ctx, req)
		if err := WriteMessage(w, resp); err != nil {
			if !errors.Is(err, ErrMessageTooLarge) {
				return err
			}
			if werr := WriteMessage(w, failure(err)); werr != nil {
				return werr
			}
		}
	}
}

// NativeClient speaks the native messaging framing over a stream pair, such
// as the stdin/stdout of a host process.
type NativeClient struct {
	r  io.Reader
	w  io.Writer
	mu sync.Mutex

	// broken is set once a response was abandoned mid-read.
	broken error
}

// NewNativeClient returns a client writing requests to w and reading
// responses from r.
func NewNativeClient(r io.Reader, w io.Writer) *NativeClient {
	return &NativeClient{r: r, w: w}
}

// Send writes req and waits for its response. Calls are serialized.
func (c *NativeClient) Send(ctx context.Context, req Request) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		return Response{}, c.broken
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if err := WriteMessage(c.w, req); err != nil {
		return Response{}, err
	}

	done := make(chan error, 1)
	var resp Response
	go func() {
		done <- ReadMessage(c.r, &resp)
	}()
	select {
	case err := <-done:
		if err != nil {
			return Response{}, err
		}
		return resp, nil
	case <-ctx.Done():
		c.broken = fmt.Errorf("native client unusable after abandoned response: %w", ctx.Err())
		return Response{}, ctx.Err()
	}
}

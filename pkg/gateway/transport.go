package gateway

import "context"

// Transport carries requests to a gateway and returns its settled response.
// A transport error means the request never reached the gateway or the reply
// was lost; gateway failures arrive as unsuccessful responses.
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// LocalTransport delivers requests to an in-process gateway.
type LocalTransport struct {
	Gateway *Gateway
}

// NewLocalTransport wraps g.
func NewLocalTransport(g *Gateway) *LocalTransport {
	return &LocalTransport{Gateway: g}
}

// Send hands req to the gateway, honouring ctx cancellation before dispatch.
func (t *LocalTransport) Send(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return t.Gateway.Handle(ctx, req), nil
}

// Call sends req and converts a failed response into an error.
func Call(ctx context.Context, t Transport, req Request) (Response, error) {
	resp, err := t.Send(ctx, req)
	if err != nil {
		return resp, err
	}
	return resp, resp.Err()
}

package push

import "context"

type Conn interface {
	Send(ctx context.Context, data []byte) error
	Close() error
}

package sse

import (
	"context"
	"errors"
	"sync"
)

const DefaultBuffer = 64

var (
	errClosed     = errors.New("connection closed")
	errBufferFull = errors.New("send buffer full")
)

type Conn struct {
	ch   chan []byte
	done chan struct{}
	once sync.Once
}

func NewConn(buffer int) *Conn {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Conn{
		ch:   make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *Conn) Send(_ context.Context, data []byte) error {
	select {
	case <-c.done:
		return errClosed
	default:
	}

	select {
	case c.ch <- data:
		return nil
	default:
		return errBufferFull
	}
}

func (c *Conn) Messages() <-chan []byte {
	return c.ch
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

package device

import "context"

// Unlocker runs the device unlock handshake around macro writes.
type Unlocker interface {
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
}

// NoopUnlocker is used for devices that do not require unlocking.
type NoopUnlocker struct{}

func (NoopUnlocker) Unlock(context.Context) error { return nil }
func (NoopUnlocker) Lock(context.Context) error   { return nil }

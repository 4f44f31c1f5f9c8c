// Package usb adapts a gousb bulk device to the session.Transport contract.
// It is the concrete edge of the excluded raw-transport collaborator: open,
// claim, bulk read/write, close. Device discovery policy beyond a direct
// VID:PID match lives with the caller.
package usb

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

// Transport is a claimed bulk interface on one device. The endpoint
// addresses are fixed at open time.
type Transport struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	intf *gousb.Interface
	done func()
	in   *gousb.InEndpoint
	out  *gousb.OutEndpoint
}

// Open claims the default interface of the first device matching vid:pid
// and resolves its bulk endpoints.
func Open(vid, pid uint16, inEndpoint, outEndpoint int) (*Transport, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("usb: open %04x:%04x: %w", vid, pid, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("usb: device %04x:%04x not found", vid, pid)
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: claim interface: %w", err)
	}

	in, err := intf.InEndpoint(inEndpoint)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: in endpoint %d: %w", inEndpoint, err)
	}
	out, err := intf.OutEndpoint(outEndpoint)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: out endpoint %d: %w", outEndpoint, err)
	}

	return &Transport{ctx: ctx, dev: dev, intf: intf, done: done, in: in, out: out}, nil
}

func (t *Transport) WriteBytes(ctx context.Context, p []byte) error {
	if _, err := t.out.WriteContext(ctx, p); err != nil {
		return fmt.Errorf("usb: bulk write: %w", err)
	}
	return nil
}

func (t *Transport) ReadBytes(ctx context.Context, max int) ([]byte, error) {
	buf := make([]byte, max)
	n, err := t.in.ReadContext(ctx, buf)
	if err != nil {
		return nil, fmt.Errorf("usb: bulk read: %w", err)
	}
	return buf[:n], nil
}

func (t *Transport) Close() error {
	t.done()
	if err := t.dev.Close(); err != nil {
		t.ctx.Close()
		return err
	}
	return t.ctx.Close()
}

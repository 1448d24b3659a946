package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/vocalab/vocalrange/internal/logger"
)

const channels = 1

// ErrDeviceUnavailable is returned when no capture device can be opened,
// typically because of a missing microphone or denied permission.
var ErrDeviceUnavailable = errors.New("audio capture device unavailable")

// Capture is a malgo-backed Source. Its data callback keeps a ring of the
// latest FrameSize samples for the pitch tracker and appends every raw PCM
// chunk to the sink for later upload. The two consumers never block each
// other: the ring update is a short critical section and the sink append is
// an in-memory buffer write.
type Capture struct {
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int
	sink       Sink

	mu     sync.RWMutex
	ring   []float64
	pos    int
	filled int
	closed bool
}

// StartCapture opens the capture device and begins delivery. deviceName
// selects a specific input by name; empty means the system default.
func StartCapture(sampleRate int, deviceName string, sink Sink) (*Capture, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debugf("malgo: %s", message)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: context init failed: %v", ErrDeviceUnavailable, err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if deviceName != "" {
		info, err := findDevice(ctx, deviceName)
		if err != nil {
			ctx.Uninit()
			ctx.Free()
			return nil, err
		}
		deviceConfig.Capture.DeviceID = info.ID.Pointer()
	}

	c := &Capture{
		ctx:        ctx,
		sampleRate: sampleRate,
		sink:       sink,
		ring:       make([]float64, FrameSize),
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			c.onChunk(input)
		},
	})
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("%w: device init failed: %v", ErrDeviceUnavailable, err)
	}
	c.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("%w: device start failed: %v", ErrDeviceUnavailable, err)
	}

	logger.Debugf("capture started at %d Hz", sampleRate)
	return c, nil
}

func findDevice(ctx *malgo.AllocatedContext, name string) (*malgo.DeviceInfo, error) {
	list, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("%w: device enumeration failed: %v", ErrDeviceUnavailable, err)
	}
	for i := range list {
		if list[i].Name() == name {
			info := list[i]
			return &info, nil
		}
	}
	return nil, fmt.Errorf("%w: no capture device named %q", ErrDeviceUnavailable, name)
}

// ListDevices returns the names of all available capture devices.
func ListDevices() ([]string, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: context init failed: %v", ErrDeviceUnavailable, err)
	}
	defer func() {
		ctx.Uninit()
		ctx.Free()
	}()

	list, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("%w: device enumeration failed: %v", ErrDeviceUnavailable, err)
	}
	names := make([]string, 0, len(list))
	for i := range list {
		names = append(names, list[i].Name())
	}
	return names, nil
}

// onChunk runs on the device thread for every captured buffer.
func (c *Capture) onChunk(input []byte) {
	if len(input) < 2 {
		return
	}
	if c.sink != nil {
		c.sink.Append(input)
	}

	c.mu.Lock()
	sampleCount := len(input) / 2
	for i := 0; i < sampleCount; i++ {
		s := int16(input[2*i]) | int16(input[2*i+1])<<8
		c.ring[c.pos] = float64(s) / 32768.0
		c.pos = (c.pos + 1) % FrameSize
	}
	if c.filled < FrameSize {
		c.filled += sampleCount
		if c.filled > FrameSize {
			c.filled = FrameSize
		}
	}
	c.mu.Unlock()
}

// Frame returns the latest FrameSize samples in capture order.
func (c *Capture) Frame() (Frame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.filled < FrameSize {
		return Frame{}, false
	}
	samples := make([]float64, FrameSize)
	n := copy(samples, c.ring[c.pos:])
	copy(samples[n:], c.ring[:c.pos])
	return Frame{Samples: samples, SampleRate: c.sampleRate}, true
}

// Close stops the device and releases the context. It is safe to call once;
// after Close no further chunks reach the sink.
func (c *Capture) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.device.Stop()
	c.device.Uninit()
	c.ctx.Uninit()
	c.ctx.Free()
	if err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

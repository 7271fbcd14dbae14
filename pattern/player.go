package pattern

import (
	"context"
	"log"
	"time"

	"github.com/eclipse/paho.mqtt.golang"

	"github.com/ledstudio/matrixpaint/util"
)

// Player walks the pattern's composited global timeline and streams each
// frame as binary over MQTT to the matrix receiver, honouring per-frame
// durations. When crossfade steps are configured, the loop seam is smoothed
// by blending the last frame back into the first.
//
// The player and the preview API may composite concurrently; the pattern's
// composite cache is guarded for that. Edits must still not run while
// playback is active.
type Player struct {
	client  mqtt.Client
	pattern *Pattern
	topic   string

	crossfadeSteps int
}

// NewPlayer creates a Player publishing on the given topic.
func NewPlayer(client mqtt.Client, p *Pattern, topic string, crossfadeSteps int) *Player {
	pl := new(Player)
	pl.client = client
	pl.pattern = p
	pl.topic = topic
	pl.crossfadeSteps = crossfadeSteps
	return pl
}

func (pl *Player) publish(f *Frame) error {
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	token := pl.client.Publish(pl.topic, 2, false, b)
	token.Wait()
	return token.Error()
}

func (pl *Player) wait(ctx context.Context, ms int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return nil
	}
}

// Run streams the pattern in a loop until the context is cancelled.
func (pl *Player) Run(ctx context.Context) error {
	for {
		n := pl.pattern.FrameCount()
		var first, last *Frame
		for g := 0; g < n; g++ {
			f, err := pl.pattern.CompositedFrame(g)
			if err != nil {
				return err
			}
			if g == 0 {
				first = f
			}
			last = f
			if err := pl.publish(f); err != nil {
				log.Printf("publish frame %d: %v", g, err)
			}
			if err := pl.wait(ctx, f.Duration()); err != nil {
				return err
			}
		}

		if pl.crossfadeSteps > 0 && n > 1 {
			for _, t := range util.Ramp(pl.crossfadeSteps) {
				f := last.Crossfade(first, t)
				if err := pl.publish(f); err != nil {
					log.Printf("publish crossfade: %v", err)
				}
				if err := pl.wait(ctx, DefaultFrameDuration); err != nil {
					return err
				}
			}
		}
	}
}

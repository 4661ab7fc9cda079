// Package audio plays the single beep a CHIP-8 program can ask for when its
// sound timer is running. Precise audio synthesis is out of scope: a
// program only ever gets one fixed tone, triggered on the sound-timer's
// 1-to-0 edge, identical to how the teacher VM drove a sound channel.
package audio

import (
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/sirupsen/logrus"
)

// Player decodes a beep asset once and replays it whenever Trigger is
// called. It degrades to a silent no-op if the asset can't be opened or
// decoded — asset packaging is outside this package's scope, and a missing
// beep file should never stop the machine from running.
type Player struct {
	streamer beep.StreamSeeker
	ready    bool
	logger   *logrus.Logger
}

// NewPlayer opens and decodes assetPath as an mp3 and initializes the
// speaker backend. The returned Player is always usable; Trigger is a no-op
// if decoding failed.
func NewPlayer(assetPath string, logger *logrus.Logger) *Player {
	p := &Player{logger: logger}

	f, err := os.Open(assetPath)
	if err != nil {
		p.logf("audio disabled: %v", err)
		return p
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		p.logf("audio disabled: %v", err)
		return p
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		p.logf("audio disabled: %v", err)
		return p
	}

	p.streamer = streamer
	p.ready = true
	return p
}

// Trigger plays the decoded beep from the start, or does nothing if no
// asset was available.
func (p *Player) Trigger() {
	if !p.ready {
		return
	}
	_ = p.streamer.Seek(0)
	speaker.Play(p.streamer)
}

func (p *Player) logf(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debugf(format, args...)
	}
}

package capture

import (
	"github.com/samber/do/v2"

	"github.com/foxseedlab/mensetsukun/internal/audio"
	"github.com/foxseedlab/mensetsukun/internal/config"
)

// RecorderFactory builds a fresh recorder per interview question.
type RecorderFactory func() *Recorder

func RegisterDI(injector do.Injector) {
	do.ProvideValue(injector, RecorderFactory(func() *Recorder {
		cfg := do.MustInvoke[*config.Config](injector)
		input := do.MustInvoke[audio.Input](injector)
		player := do.MustInvoke[audio.Player](injector)
		encoders := do.MustInvoke[[]audio.Encoder](injector)
		return NewRecorder(input, player, encoders, cfg.AudioSampleRate)
	}))
}

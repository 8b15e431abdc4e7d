package audio

import (
	"github.com/samber/do/v2"

	"github.com/foxseedlab/mensetsukun/internal/audio"
	"github.com/foxseedlab/mensetsukun/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.Input, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewCommandInput(cfg.CaptureCommand), nil
	})
	do.Provide(injector, func(i do.Injector) (audio.Player, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewCommandPlayer(cfg.PlaybackCommand), nil
	})
	// Preference order: compressed first, WAV as the universal fallback.
	do.Provide(injector, func(i do.Injector) ([]audio.Encoder, error) {
		return []audio.Encoder{NewOpusEncoder(), NewWAVEncoder()}, nil
	})
}

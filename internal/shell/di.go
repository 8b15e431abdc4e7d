package shell

import (
	"github.com/samber/do/v2"

	"github.com/foxseedlab/mensetsukun/internal/capture"
	"github.com/foxseedlab/mensetsukun/internal/config"
	"github.com/foxseedlab/mensetsukun/internal/history"
	"github.com/foxseedlab/mensetsukun/internal/interview"
	"github.com/foxseedlab/mensetsukun/internal/ui"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Shell, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return New(
			do.MustInvoke[interview.Client](i),
			do.MustInvoke[ui.UI](i),
			do.MustInvoke[history.Archive](i),
			do.MustInvoke[capture.RecorderFactory](i),
			cfg.TotalQuestions,
			cfg.FeedbackDwell(),
		), nil
	})
}

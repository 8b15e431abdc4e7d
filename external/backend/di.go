package backend

import (
	"github.com/samber/do/v2"

	"github.com/foxseedlab/mensetsukun/internal/config"
	"github.com/foxseedlab/mensetsukun/internal/interview"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (interview.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout()), nil
	})
}

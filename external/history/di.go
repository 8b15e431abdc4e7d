package history

import (
	"github.com/samber/do/v2"

	"github.com/foxseedlab/mensetsukun/internal/config"
	"github.com/foxseedlab/mensetsukun/internal/history"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (history.Archive, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewSQLiteArchive(cfg.HistoryDBPath)
	})
}

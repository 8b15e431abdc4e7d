package terminal

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/foxseedlab/mensetsukun/internal/ui"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (ui.UI, error) {
		return New(os.Stdin, os.Stdout), nil
	})
}

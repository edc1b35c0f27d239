package providers

import (
	"github.com/samber/do/v2"

	"github.com/labdesk/labdesk-server/internal/config"
	"github.com/labdesk/labdesk-server/internal/logger"
	"github.com/labdesk/labdesk-server/internal/menu"
	"github.com/labdesk/labdesk-server/internal/service"
)

// ProvideExerciseService provides the arithmetic and matrix drills.
func ProvideExerciseService(i do.Injector) (*service.ExerciseService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExerciseService(log.Logger, cfg.Exercises.MaxRangeSpan, nil), nil
}

// ProvideMenuRegistry provides the page registry.
func ProvideMenuRegistry(i do.Injector) (*menu.Registry, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return menu.NewRegistry(cfg.Menu.Note), nil
}

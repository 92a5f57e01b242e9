package screen

import (
	"context"

	"github.com/abhisek/cifra/internal/api"
	"github.com/abhisek/cifra/internal/assist"
	"github.com/abhisek/cifra/internal/logger"
	"github.com/abhisek/cifra/internal/progress"
	"github.com/abhisek/cifra/internal/store"
)

// Explainer turns a lesson step into a simpler explanation.
type Explainer interface {
	Explain(ctx context.Context, in assist.Input) (*assist.Hint, error)
}

// DashboardSource loads the signed-in learner's profile page.
type DashboardSource interface {
	Dashboard(ctx context.Context) (*api.Dashboard, error)
}

// HistorySource reads the local learning log.
type HistorySource interface {
	History(ctx context.Context, opts store.QueryOpts) ([]store.HistoryEvent, error)
}

// Env is what screens share. Assist, Dashboard and History may be nil.
type Env struct {
	Session   *progress.Controller
	Assist    Explainer
	Dashboard DashboardSource
	History   HistorySource
	Log       *logger.Logger
}

// Logger never returns nil.
func (e *Env) Logger() *logger.Logger {
	if e == nil || e.Log == nil {
		return logger.Nop()
	}
	return e.Log
}

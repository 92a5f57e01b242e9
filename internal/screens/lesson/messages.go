package lesson

import (
	"github.com/abhisek/cifra/internal/assist"
	"github.com/abhisek/cifra/internal/engine"
)

// timerMsg fires deferred lesson work. eng ties it to the run that issued
// it so a timer outliving its screen is ignored.
type timerMsg struct {
	eng *engine.Engine
	id  engine.TimerID
}

// hintMsg delivers an AI explanation of one step.
type hintMsg struct {
	eng  *engine.Engine
	step int
	hint *assist.Hint
	err  error
}

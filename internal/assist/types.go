package assist

import (
	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/sim"
)

// Hint is a generated explanation of one lesson step.
type Hint struct {
	LessonID    string
	Step        int
	Explanation string
	Tips        []string
}

// Input is the step to explain. Screen is what the simulator currently
// shows; it is optional.
type Input struct {
	Lesson *content.Lesson
	Step   int
	Screen *sim.Screen
}

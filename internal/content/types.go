package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is the difficulty band a lesson belongs to.
type Level string

const (
	LevelBasic    Level = "Базовый"
	LevelAdvanced Level = "Расширенный"
)

// SimulatorType identifies which simulated application a step runs in.
type SimulatorType string

const (
	SimIntro     SimulatorType = "intro"
	SimMessenger SimulatorType = "messenger"
	SimPhone     SimulatorType = "phone"
	SimShop      SimulatorType = "shop"
	SimPortal    SimulatorType = "gosuslugi"
	SimComplete  SimulatorType = "complete"
)

// Reserved action tags shared by every lesson.
const (
	ActionIntro    = "intro"
	ActionComplete = "complete"
)

// Informational steps show something and are passed with Continue instead of
// a simulator action.
var infoActions = map[string]bool{
	ActionIntro:             true,
	"view-main":             true,
	"phone-on-confirm":      true,
	"wifi-connected":        true,
	"app-installed":         true,
	"view-catalog":          true,
	"view-products":         true,
	"view-product-details":  true,
	"order-created":         true,
	"view-certificate-info": true,
	"verify-data":           true,
	"certificate-issued":    true,
	"logged-in":             true,
}

// IsInfoAction reports whether action is an informational step tag.
func IsInfoAction(action string) bool {
	return infoActions[action]
}

// Step is one unit of a lesson.
type Step struct {
	Title            string        `yaml:"title"`
	Description      string        `yaml:"description"`
	Instruction      string        `yaml:"instruction"`
	Action           string        `yaml:"action"`
	ExpectedText     string        `yaml:"expectedText,omitempty"`
	HighlightElement string        `yaml:"highlightElement,omitempty"`
	SimulatorType    SimulatorType `yaml:"simulatorType"`
}

// Lesson is a scripted tutorial for one simulated application.
type Lesson struct {
	ID           string    `yaml:"id"`
	Title        string    `yaml:"title"`
	Level        Level     `yaml:"level"`
	Icon         string    `yaml:"icon"`
	Description  string    `yaml:"description"`
	Duration     string    `yaml:"duration"`
	Steps        []Step    `yaml:"steps"`
	Achievements []string  `yaml:"achievements"`
	InitialState yaml.Node `yaml:"initialState"`
	Data         Data      `yaml:"data"`
}

// Simulator returns the application the lesson's working steps run in.
func (l *Lesson) Simulator() SimulatorType {
	for _, s := range l.Steps {
		switch s.SimulatorType {
		case SimIntro, SimComplete, "":
			continue
		}
		return s.SimulatorType
	}
	return SimIntro
}

// HasInitialState reports whether the lesson overrides the simulator default.
func (l *Lesson) HasInitialState() bool {
	return l.InitialState.Kind != 0
}

// DecodeInitialState decodes the lesson's initial state into v.
func (l *Lesson) DecodeInitialState(v any) error {
	if !l.HasInitialState() {
		return nil
	}
	if err := l.InitialState.Decode(v); err != nil {
		return fmt.Errorf("decode initial state of %s: %w", l.ID, err)
	}
	return nil
}

// Topic returns the lesson family a lesson id belongs to: the part before
// the first "-" ("gosuslugi-advanced" -> "gosuslugi").
func Topic(lessonID string) string {
	topic, _, _ := strings.Cut(lessonID, "-")
	return topic
}

// Data is the simulator reference data a lesson may carry. Only the lists
// relevant to the lesson's simulator are read.
type Data struct {
	Contacts     []Contact     `yaml:"contacts"`
	PhotoGallery []string      `yaml:"photoGallery"`
	WifiNetworks []WifiNetwork `yaml:"wifiNetworks"`
	Apps         []App         `yaml:"availableApps"`

	Categories      []Category       `yaml:"categories"`
	Products        []Product        `yaml:"products"`
	DeliveryMethods []DeliveryMethod `yaml:"deliveryMethods"`
	Addresses       []Address        `yaml:"addresses"`
	PaymentMethods  []PaymentMethod  `yaml:"paymentMethods"`

	LoginMethods []LoginMethod     `yaml:"loginMethods"`
	Services     []Service         `yaml:"services"`
	Specialties  []Specialty       `yaml:"specialties"`
	Doctors      []Doctor          `yaml:"doctors"`
	Clinics      []Clinic          `yaml:"clinics"`
	Dates        []AppointmentDate `yaml:"availableDates"`
	Times        []AppointmentTime `yaml:"availableTimes"`
}

type Contact struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Phone  string `yaml:"phone"`
	Avatar string `yaml:"avatar"`
}

type WifiNetwork struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Secured bool   `yaml:"secured"`
	Signal  string `yaml:"signal"`
}

type App struct {
	ID        int     `yaml:"id"`
	Name      string  `yaml:"name"`
	Icon      string  `yaml:"icon"`
	Rating    float64 `yaml:"rating"`
	Downloads string  `yaml:"downloads"`
	Size      string  `yaml:"size"`
}

type Category struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type Product struct {
	ID          int     `yaml:"id"`
	Category    int     `yaml:"category"`
	Name        string  `yaml:"name"`
	Price       int     `yaml:"price"`
	Image       string  `yaml:"image"`
	Rating      float64 `yaml:"rating"`
	Reviews     int     `yaml:"reviews"`
	Description string  `yaml:"description"`
	InStock     bool    `yaml:"inStock"`
}

type DeliveryMethod struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Days  string `yaml:"days"`
	Price int    `yaml:"price"`
}

type Address struct {
	ID      int    `yaml:"id"`
	Address string `yaml:"address"`
	City    string `yaml:"city"`
}

type PaymentMethod struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type LoginMethod struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Icon        string `yaml:"icon"`
	Placeholder string `yaml:"placeholder"`
}

type Service struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type Specialty struct {
	ID        int    `yaml:"id"`
	Name      string `yaml:"name"`
	Icon      string `yaml:"icon"`
	Available int    `yaml:"available"`
}

type Doctor struct {
	ID         int     `yaml:"id"`
	Specialty  int     `yaml:"specialty"`
	Name       string  `yaml:"name"`
	Experience string  `yaml:"experience"`
	Rating     float64 `yaml:"rating"`
}

type Clinic struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	District string `yaml:"district"`
}

type AppointmentDate struct {
	ID      int    `yaml:"id"`
	Date    string `yaml:"date"`
	Display string `yaml:"display"`
}

type AppointmentTime struct {
	ID        int    `yaml:"id"`
	Time      string `yaml:"time"`
	Available bool   `yaml:"available"`
}

// QuestionType distinguishes single-answer from multi-select questions.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// Answer is an answer key: one index for single questions, a set for
// multiple ones. In YAML it is written as a scalar or a sequence.
type Answer []int

func (a *Answer) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var i int
		if err := node.Decode(&i); err != nil {
			return err
		}
		*a = Answer{i}
		return nil
	case yaml.SequenceNode:
		var ids []int
		if err := node.Decode(&ids); err != nil {
			return err
		}
		*a = Answer(ids)
		return nil
	}
	return fmt.Errorf("line %d: answer must be an index or a list of indices", node.Line)
}

// Question is one test question.
type Question struct {
	ID          int          `yaml:"id"`
	Type        QuestionType `yaml:"type"`
	Text        string       `yaml:"question"`
	Options     []string     `yaml:"options"`
	Correct     Answer       `yaml:"correct"`
	Explanation string       `yaml:"explanation"`
}

// Test is a short quiz attached to a lesson topic.
type Test struct {
	ID           string     `yaml:"id"`
	Topic        string     `yaml:"topic"`
	Title        string     `yaml:"title"`
	Description  string     `yaml:"description"`
	PassingScore int        `yaml:"passingScore"`
	Questions    []Question `yaml:"questions"`
}

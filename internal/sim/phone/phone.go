// Package phone simulates a smartphone: hardware buttons, settings, Wi-Fi
// and an app store.
package phone

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/sim"
)

// Kind is a phone action.
type Kind int

const (
	TurnOn Kind = iota + 1
	VolumeUp
	VolumeDown
	OpenPowerMenu
	TurnOff
	OpenSettings
	OpenWifi
	SelectWifi
	EnterWifiPassword
	GoHome
	OpenAppStore
	SearchApp
	SelectApp
	InstallApp
)

var kindTags = map[Kind]string{
	TurnOn:            "turn-on",
	VolumeUp:          "volume-up",
	VolumeDown:        "volume-down",
	OpenPowerMenu:     "open-power-menu",
	TurnOff:           "turn-off",
	OpenSettings:      "open-settings",
	OpenWifi:          "open-wifi",
	SelectWifi:        "select-wifi",
	EnterWifiPassword: "enter-wifi-password",
	GoHome:            "go-home",
	OpenAppStore:      "open-appstore",
	SearchApp:         "search-app",
	SelectApp:         "select-app",
	InstallApp:        "install-app",
}

var tagKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindTags))
	for k, tag := range kindTags {
		m[tag] = k
	}
	return m
}()

func (k Kind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps an action tag to its kind.
func ParseKind(tag string) (Kind, bool) {
	k, ok := tagKinds[tag]
	return k, ok
}

// Screens the phone can show while switched on.
const (
	ScreenHome          = "home"
	ScreenSettings      = "settings"
	ScreenWifi          = "wifi"
	ScreenWifiPassword  = "wifi-password"
	ScreenWifiConnected = "wifi-connected"
	ScreenAppStore      = "appstore"
	ScreenAppDetails    = "app-details"
	ScreenAppInstalled  = "app-installed"
)

const (
	volumeStep = 10
	maxVolume  = 100
)

// State is the phone's mutable state.
type State struct {
	IsOn          bool     `yaml:"isOn"`
	Volume        int      `yaml:"volume"`
	ShowVolume    bool     `yaml:"showVolume"`
	ShowPowerMenu bool     `yaml:"showPowerMenu"`
	CurrentScreen string   `yaml:"currentScreen"`
	SelectedWifi  string   `yaml:"selectedWifi"`
	WifiPassword  string   `yaml:"wifiPassword"`
	WifiConnected bool     `yaml:"wifiConnected"`
	AppSearch     string   `yaml:"appSearch"`
	SelectedApp   string   `yaml:"selectedApp"`
	Installing    bool     `yaml:"installing"`
	InstalledApps []string `yaml:"installedApps"`
}

// DefaultState is a switched-off phone.
func DefaultState() State {
	return State{
		Volume:        50,
		CurrentScreen: ScreenHome,
		InstalledApps: []string{"Телефон", "Сообщения", "Камера"},
	}
}

var (
	defaultNetworks = []content.WifiNetwork{
		{ID: 1, Name: "Домашняя сеть", Secured: true, Signal: "strong"},
		{ID: 2, Name: "Соседи_5G", Secured: true, Signal: "medium"},
		{ID: 3, Name: "Кафе_Бесплатно", Secured: false, Signal: "weak"},
	}
	defaultApps = []content.App{
		{ID: 1, Name: "Погода", Icon: "⛅", Rating: 4.7, Downloads: "10 млн", Size: "25 МБ"},
		{ID: 2, Name: "Госуслуги", Icon: "🏛️", Rating: 4.5, Downloads: "50 млн", Size: "120 МБ"},
	}
)

// Simulator is the phone.
type Simulator struct {
	state    State
	networks []content.WifiNetwork
	apps     []content.App
}

// New builds a phone for the lesson.
func New(l *content.Lesson) (*Simulator, error) {
	s := &Simulator{
		state:    DefaultState(),
		networks: l.Data.WifiNetworks,
		apps:     l.Data.Apps,
	}
	if err := l.DecodeInitialState(&s.state); err != nil {
		return nil, err
	}
	if len(s.networks) == 0 {
		s.networks = defaultNetworks
	}
	if len(s.apps) == 0 {
		s.apps = defaultApps
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *Simulator) State() State {
	st := s.state
	st.InstalledApps = append([]string(nil), s.state.InstalledApps...)
	return st
}

func (s *Simulator) Type() content.SimulatorType {
	return content.SimPhone
}

func (s *Simulator) Handles(action string) bool {
	_, ok := ParseKind(action)
	return ok
}

func (s *Simulator) Binding(action string) (sim.Field, sim.MatchMode, bool) {
	k, _ := ParseKind(action)
	switch k {
	case EnterWifiPassword:
		return sim.FieldWifiPassword, sim.MatchExact, true
	case SearchApp:
		return sim.FieldAppSearch, sim.MatchExact, true
	}
	return "", 0, false
}

func (s *Simulator) SetText(field sim.Field, value string) {
	switch field {
	case sim.FieldWifiPassword:
		s.state.WifiPassword = value
	case sim.FieldAppSearch:
		s.state.AppSearch = value
	}
}

func (s *Simulator) Text(field sim.Field) string {
	switch field {
	case sim.FieldWifiPassword:
		return s.state.WifiPassword
	case sim.FieldAppSearch:
		return s.state.AppSearch
	}
	return ""
}

// Continue is a no-op: the phone's informational steps show the screen the
// previous action left behind.
func (s *Simulator) Continue(string) {}

func (s *Simulator) Accept(action string, arg sim.Arg, now time.Time) (sim.Effect, bool) {
	k, ok := ParseKind(action)
	if !ok {
		return sim.Effect{}, false
	}
	st := &s.state
	if !st.IsOn && k != TurnOn {
		return sim.Effect{}, false
	}

	switch k {
	case TurnOn:
		if st.IsOn {
			return sim.Effect{}, false
		}
		st.IsOn = true
		st.CurrentScreen = ScreenHome
		return sim.After(1000 * time.Millisecond), true

	case VolumeUp, VolumeDown:
		if k == VolumeUp {
			st.Volume = min(maxVolume, st.Volume+volumeStep)
		} else {
			st.Volume = max(0, st.Volume-volumeStep)
		}
		st.ShowVolume = true
		return sim.Effect{
			Stages:  []sim.Stage{{After: 1000 * time.Millisecond, Apply: func() { st.ShowVolume = false }}},
			Advance: 800 * time.Millisecond,
		}, true

	case OpenPowerMenu:
		st.ShowPowerMenu = true
		return sim.After(800 * time.Millisecond), true

	case TurnOff:
		if !st.ShowPowerMenu {
			return sim.Effect{}, false
		}
		st.IsOn = false
		st.ShowPowerMenu = false
		st.ShowVolume = false
		return sim.After(1000 * time.Millisecond), true

	case OpenSettings:
		st.CurrentScreen = ScreenSettings
		return sim.After(800 * time.Millisecond), true

	case OpenWifi:
		if st.CurrentScreen != ScreenSettings {
			return sim.Effect{}, false
		}
		st.CurrentScreen = ScreenWifi
		return sim.After(800 * time.Millisecond), true

	case SelectWifi:
		n := s.network(arg.ID)
		if n == nil {
			return sim.Effect{}, false
		}
		st.SelectedWifi = n.Name
		st.WifiPassword = ""
		st.CurrentScreen = ScreenWifiPassword
		return sim.After(800 * time.Millisecond), true

	case EnterWifiPassword:
		return sim.Effect{
			Stages: []sim.Stage{{After: 500 * time.Millisecond, Apply: func() {
				st.WifiConnected = true
				st.CurrentScreen = ScreenWifiConnected
			}}},
			Advance: 1500 * time.Millisecond,
		}, true

	case GoHome:
		st.CurrentScreen = ScreenHome
		st.ShowPowerMenu = false
		return sim.After(800 * time.Millisecond), true

	case OpenAppStore:
		st.CurrentScreen = ScreenAppStore
		st.AppSearch = ""
		return sim.After(800 * time.Millisecond), true

	case SearchApp:
		return sim.After(800 * time.Millisecond), true

	case SelectApp:
		a := s.app(arg.ID)
		if a == nil {
			return sim.Effect{}, false
		}
		st.SelectedApp = a.Name
		st.CurrentScreen = ScreenAppDetails
		return sim.After(800 * time.Millisecond), true

	case InstallApp:
		if st.SelectedApp == "" || st.Installing {
			return sim.Effect{}, false
		}
		st.Installing = true
		name := st.SelectedApp
		return sim.Effect{
			Stages: []sim.Stage{{After: 2000 * time.Millisecond, Apply: func() {
				st.Installing = false
				if !slices.Contains(st.InstalledApps, name) {
					st.InstalledApps = append(st.InstalledApps, name)
				}
				st.CurrentScreen = ScreenAppInstalled
			}}},
			Advance: 3000 * time.Millisecond,
		}, true
	}
	return sim.Effect{}, false
}

func (s *Simulator) network(id int) *content.WifiNetwork {
	for i := range s.networks {
		if s.networks[i].ID == id {
			return &s.networks[i]
		}
	}
	return nil
}

func (s *Simulator) app(id int) *content.App {
	for i := range s.apps {
		if s.apps[i].ID == id {
			return &s.apps[i]
		}
	}
	return nil
}

// SearchResults returns the store apps whose name contains the query.
func (s *Simulator) SearchResults() []content.App {
	q := strings.ToLower(strings.TrimSpace(s.state.AppSearch))
	if q == "" {
		return nil
	}
	var out []content.App
	for _, a := range s.apps {
		if strings.Contains(strings.ToLower(a.Name), q) {
			out = append(out, a)
		}
	}
	return out
}

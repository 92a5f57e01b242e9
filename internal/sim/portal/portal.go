// Package portal simulates the government-services portal: sign-in, booking
// a doctor's appointment and requesting an electronic certificate.
package portal

import (
	"fmt"
	"time"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/sim"
)

// Kind is a portal action.
type Kind int

const (
	SelectLoginMethod Kind = iota + 1
	EnterPhone
	EnterPassword
	SelectService
	EnterPolicy
	SelectSpecialty
	SelectDoctor
	SelectClinic
	SelectDate
	SelectTime
	ConfirmAppointment
	AppointmentConfirmed
	SelectCertificateService
	RequestCertificate
)

var kindTags = map[Kind]string{
	SelectLoginMethod:        "select-login-method",
	EnterPhone:               "enter-phone",
	EnterPassword:            "enter-password",
	SelectService:            "select-service",
	EnterPolicy:              "enter-policy",
	SelectSpecialty:          "select-specialty",
	SelectDoctor:             "select-doctor",
	SelectClinic:             "select-clinic",
	SelectDate:               "select-date",
	SelectTime:               "select-time",
	ConfirmAppointment:       "confirm-appointment",
	AppointmentConfirmed:     "appointment-confirmed",
	SelectCertificateService: "select-certificate-service",
	RequestCertificate:       "request-certificate",
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

const (
	ScreenMain                 = "main"
	ScreenLogin                = "login"
	ScreenLoginPassword        = "login-password"
	ScreenLoggedIn             = "logged-in"
	ScreenDashboard            = "dashboard"
	ScreenPolicy               = "service-doctor"
	ScreenSpecialties          = "specialties-list"
	ScreenDoctors              = "doctors-list"
	ScreenClinics              = "clinics-list"
	ScreenDates                = "dates-list"
	ScreenTimes                = "times-list"
	ScreenAppointmentConfirm   = "appointment-confirm"
	ScreenAppointmentConfirmed = "appointment-confirmed"
	ScreenCertificateInfo      = "certificate-info"
	ScreenCertificateVerify    = "certificate-verify"
	ScreenCertificateIssued    = "certificate-issued"
)

const (
	ServiceDoctor      = "doctor"
	ServiceCertificate = "certificate"
)

// State is the portal's mutable state.
type State struct {
	CurrentScreen        string `yaml:"currentScreen"`
	IsLoggedIn           bool   `yaml:"isLoggedIn"`
	LoginMethod          string `yaml:"loginMethod"`
	LoginValue           string `yaml:"loginValue"`
	Password             string `yaml:"password"`
	SelectedService      string `yaml:"selectedService"`
	PolicyNumber         string `yaml:"policyNumber"`
	SelectedSpecialty    int    `yaml:"selectedSpecialty"`
	SelectedDoctor       int    `yaml:"selectedDoctor"`
	SelectedClinic       int    `yaml:"selectedClinic"`
	SelectedDate         int    `yaml:"selectedDate"`
	SelectedTime         int    `yaml:"selectedTime"`
	AppointmentBooked    bool   `yaml:"appointmentBooked"`
	CertificateRequested bool   `yaml:"certificateRequested"`
	CertificateIssued    bool   `yaml:"certificateIssued"`
}

// DefaultState is a signed-out visitor on the portal's main page.
func DefaultState() State {
	return State{CurrentScreen: ScreenMain}
}

// Simulator is the portal.
type Simulator struct {
	state State
	data  content.Data
}

// New builds the portal for the lesson.
func New(l *content.Lesson) (*Simulator, error) {
	s := &Simulator{state: DefaultState(), data: l.Data}
	if err := l.DecodeInitialState(&s.state); err != nil {
		return nil, err
	}
	if s.state.CurrentScreen == "" {
		s.state.CurrentScreen = ScreenMain
	}
	d := &s.data
	if len(d.LoginMethods) == 0 {
		d.LoginMethods = defaultLoginMethods
	}
	if len(d.Services) == 0 {
		d.Services = defaultServices
	}
	if len(d.Specialties) == 0 {
		d.Specialties = defaultSpecialties
	}
	if len(d.Doctors) == 0 {
		d.Doctors = defaultDoctors
	}
	if len(d.Clinics) == 0 {
		d.Clinics = defaultClinics
	}
	if len(d.Dates) == 0 {
		d.Dates = defaultDates
	}
	if len(d.Times) == 0 {
		d.Times = defaultTimes
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *Simulator) State() State {
	return s.state
}

func (s *Simulator) Type() content.SimulatorType {
	return content.SimPortal
}

func (s *Simulator) Handles(action string) bool {
	_, ok := ParseKind(action)
	return ok
}

func (s *Simulator) Binding(action string) (sim.Field, sim.MatchMode, bool) {
	k, _ := ParseKind(action)
	switch k {
	case EnterPhone:
		return sim.FieldLogin, sim.MatchExact, true
	case EnterPassword:
		return sim.FieldPassword, sim.MatchExact, true
	case EnterPolicy:
		return sim.FieldPolicy, sim.MatchExact, true
	}
	return "", 0, false
}

func (s *Simulator) SetText(field sim.Field, value string) {
	switch field {
	case sim.FieldLogin:
		s.state.LoginValue = value
	case sim.FieldPassword:
		s.state.Password = value
	case sim.FieldPolicy:
		s.state.PolicyNumber = value
	}
}

func (s *Simulator) Text(field sim.Field) string {
	switch field {
	case sim.FieldLogin:
		return s.state.LoginValue
	case sim.FieldPassword:
		return s.state.Password
	case sim.FieldPolicy:
		return s.state.PolicyNumber
	}
	return ""
}

// Continue moves a freshly signed-in visitor on to the dashboard.
func (s *Simulator) Continue(action string) {
	if action == "logged-in" && s.state.IsLoggedIn {
		s.state.CurrentScreen = ScreenDashboard
	}
}

func (s *Simulator) Accept(action string, arg sim.Arg, now time.Time) (sim.Effect, bool) {
	k, ok := ParseKind(action)
	if !ok {
		return sim.Effect{}, false
	}
	st := &s.state

	switch k {
	case SelectLoginMethod:
		if s.loginMethod(arg.Key) == nil {
			return sim.Effect{}, false
		}
		st.LoginMethod = arg.Key
		st.LoginValue = ""
		st.CurrentScreen = ScreenLogin
		return sim.After(800 * time.Millisecond), true

	case EnterPhone:
		if st.LoginMethod == "" {
			return sim.Effect{}, false
		}
		st.Password = ""
		st.CurrentScreen = ScreenLoginPassword
		return sim.After(800 * time.Millisecond), true

	case EnterPassword:
		return sim.Effect{
			Stages: []sim.Stage{{After: 500 * time.Millisecond, Apply: func() {
				st.IsLoggedIn = true
				st.CurrentScreen = ScreenLoggedIn
			}}},
			Advance: 1500 * time.Millisecond,
		}, true

	case SelectService:
		if !st.IsLoggedIn || s.service(arg.Key) == nil {
			return sim.Effect{}, false
		}
		st.SelectedService = arg.Key
		if arg.Key == ServiceCertificate {
			st.CurrentScreen = ScreenCertificateInfo
		} else {
			st.PolicyNumber = ""
			st.CurrentScreen = ScreenPolicy
		}
		return sim.After(800 * time.Millisecond), true

	case EnterPolicy:
		return sim.Effect{
			Stages: []sim.Stage{{After: 500 * time.Millisecond, Apply: func() {
				st.CurrentScreen = ScreenSpecialties
			}}},
			Advance: 1300 * time.Millisecond,
		}, true

	case SelectSpecialty:
		if s.specialty(arg.ID) == nil {
			return sim.Effect{}, false
		}
		st.SelectedSpecialty = arg.ID
		st.SelectedDoctor = 0
		st.CurrentScreen = ScreenDoctors
		return sim.After(800 * time.Millisecond), true

	case SelectDoctor:
		d := s.doctor(arg.ID)
		if d == nil || d.Specialty != st.SelectedSpecialty {
			return sim.Effect{}, false
		}
		st.SelectedDoctor = d.ID
		st.CurrentScreen = ScreenClinics
		return sim.After(800 * time.Millisecond), true

	case SelectClinic:
		if st.SelectedDoctor == 0 || s.clinic(arg.ID) == nil {
			return sim.Effect{}, false
		}
		st.SelectedClinic = arg.ID
		st.CurrentScreen = ScreenDates
		return sim.After(800 * time.Millisecond), true

	case SelectDate:
		if st.SelectedClinic == 0 || s.date(arg.ID) == nil {
			return sim.Effect{}, false
		}
		st.SelectedDate = arg.ID
		st.CurrentScreen = ScreenTimes
		return sim.After(800 * time.Millisecond), true

	case SelectTime:
		tm := s.timeSlot(arg.ID)
		if st.SelectedDate == 0 || tm == nil || !tm.Available {
			return sim.Effect{}, false
		}
		st.SelectedTime = tm.ID
		st.CurrentScreen = ScreenAppointmentConfirm
		return sim.After(800 * time.Millisecond), true

	case ConfirmAppointment:
		if st.SelectedTime == 0 {
			return sim.Effect{}, false
		}
		st.AppointmentBooked = true
		st.CurrentScreen = ScreenAppointmentConfirmed
		return sim.After(1000 * time.Millisecond), true

	case AppointmentConfirmed:
		if !st.AppointmentBooked {
			return sim.Effect{}, false
		}
		st.CurrentScreen = ScreenDashboard
		return sim.After(800 * time.Millisecond), true

	case SelectCertificateService:
		if !st.IsLoggedIn {
			return sim.Effect{}, false
		}
		st.SelectedService = ServiceCertificate
		st.CurrentScreen = ScreenCertificateInfo
		return sim.After(800 * time.Millisecond), true

	case RequestCertificate:
		if st.CurrentScreen != ScreenCertificateInfo {
			return sim.Effect{}, false
		}
		st.CertificateRequested = true
		st.CurrentScreen = ScreenCertificateVerify
		return sim.Effect{
			Stages: []sim.Stage{{After: 2000 * time.Millisecond, Apply: func() {
				st.CertificateIssued = true
				st.CurrentScreen = ScreenCertificateIssued
			}}},
			Advance: 1500 * time.Millisecond,
		}, true
	}
	return sim.Effect{}, false
}

// Doctors returns the doctors of the selected specialty.
func (s *Simulator) Doctors() []content.Doctor {
	var out []content.Doctor
	for _, d := range s.data.Doctors {
		if d.Specialty == s.state.SelectedSpecialty {
			out = append(out, d)
		}
	}
	return out
}

func (s *Simulator) loginMethod(id string) *content.LoginMethod {
	for i := range s.data.LoginMethods {
		if s.data.LoginMethods[i].ID == id {
			return &s.data.LoginMethods[i]
		}
	}
	return nil
}

func (s *Simulator) service(id string) *content.Service {
	for i := range s.data.Services {
		if s.data.Services[i].ID == id {
			return &s.data.Services[i]
		}
	}
	return nil
}

func (s *Simulator) specialty(id int) *content.Specialty {
	for i := range s.data.Specialties {
		if s.data.Specialties[i].ID == id {
			return &s.data.Specialties[i]
		}
	}
	return nil
}

func (s *Simulator) doctor(id int) *content.Doctor {
	for i := range s.data.Doctors {
		if s.data.Doctors[i].ID == id {
			return &s.data.Doctors[i]
		}
	}
	return nil
}

func (s *Simulator) clinic(id int) *content.Clinic {
	for i := range s.data.Clinics {
		if s.data.Clinics[i].ID == id {
			return &s.data.Clinics[i]
		}
	}
	return nil
}

func (s *Simulator) date(id int) *content.AppointmentDate {
	for i := range s.data.Dates {
		if s.data.Dates[i].ID == id {
			return &s.data.Dates[i]
		}
	}
	return nil
}

func (s *Simulator) timeSlot(id int) *content.AppointmentTime {
	for i := range s.data.Times {
		if s.data.Times[i].ID == id {
			return &s.data.Times[i]
		}
	}
	return nil
}

package portal

import (
	"fmt"
	"strconv"

	"github.com/abhisek/cifra/internal/sim"
)

func (s *Simulator) Screen() sim.Screen {
	st := &s.state
	scr := sim.Screen{Title: "🏛️ Госуслуги"}
	if st.IsLoggedIn {
		scr.Status = "👤 Личный кабинет"
	}

	switch st.CurrentScreen {
	case ScreenLogin:
		m := s.loginMethod(st.LoginMethod)
		scr.Title = "🏛️ Вход"
		scr.Input = &sim.Input{
			ID:    st.LoginMethod + "-input",
			Field: sim.FieldLogin,
			Value: st.LoginValue,
		}
		if m != nil {
			scr.Input.Label = m.Icon + " " + m.Name
			scr.Input.Placeholder = m.Placeholder
		}

	case ScreenLoginPassword:
		scr.Title = "🏛️ Вход"
		scr.Lines = sim.Text("Логин: " + st.LoginValue)
		scr.Input = &sim.Input{
			ID:          "password-input",
			Field:       sim.FieldPassword,
			Label:       "🔒 Пароль",
			Placeholder: "Введите пароль",
			Value:       st.Password,
			Secret:      true,
		}

	case ScreenLoggedIn:
		scr.Lines = []sim.Line{{Text: "✅ Вход выполнен", Accent: true}, {Text: "Добро пожаловать в личный кабинет!"}}

	case ScreenDashboard:
		scr.Title = "🏛️ Личный кабинет"
		if st.AppointmentBooked {
			scr.Lines = append(scr.Lines, sim.Line{Text: "🩺 " + s.appointmentSummary(), Accent: true})
		}
		if st.CertificateIssued {
			scr.Lines = append(scr.Lines, sim.Line{Text: "📄 Электронное свидетельство пенсионера", Accent: true})
		}
		for _, svc := range s.data.Services {
			c := sim.Control{
				ID:     "service-" + svc.ID,
				Label:  svc.Icon + " " + svc.Name,
				Action: SelectService.String(),
				Arg:    sim.Arg{Key: svc.ID},
			}
			if svc.ID == ServiceCertificate {
				c.Action = SelectCertificateService.String()
				c.Arg = sim.Arg{}
			}
			scr.Controls = append(scr.Controls, c)
		}

	case ScreenPolicy:
		scr.Title = "🩺 Запись к врачу"
		scr.Input = &sim.Input{
			ID:          "policy-input",
			Field:       sim.FieldPolicy,
			Label:       "Номер полиса ОМС",
			Placeholder: "16 цифр",
			Value:       st.PolicyNumber,
		}

	case ScreenSpecialties:
		scr.Title = "🩺 Специальность"
		for _, sp := range s.data.Specialties {
			scr.Controls = append(scr.Controls, sim.Control{
				ID:     "specialty-" + strconv.Itoa(sp.ID),
				Label:  fmt.Sprintf("%s %s  (свободно: %d)", sp.Icon, sp.Name, sp.Available),
				Action: SelectSpecialty.String(),
				Arg:    sim.Arg{ID: sp.ID},
			})
		}

	case ScreenDoctors:
		scr.Title = "🩺 Врач"
		for _, d := range s.Doctors() {
			scr.Controls = append(scr.Controls, sim.Control{
				ID:     "doctor-" + strconv.Itoa(d.ID),
				Label:  fmt.Sprintf("👨‍⚕️ %s  стаж %s  ★ %.1f", d.Name, d.Experience, d.Rating),
				Action: SelectDoctor.String(),
				Arg:    sim.Arg{ID: d.ID},
			})
		}

	case ScreenClinics:
		scr.Title = "🏥 Поликлиника"
		for _, c := range s.data.Clinics {
			scr.Controls = append(scr.Controls, sim.Control{
				ID:     "clinic-" + strconv.Itoa(c.ID),
				Label:  fmt.Sprintf("%s  %s (%s)", c.Name, c.Address, c.District),
				Action: SelectClinic.String(),
				Arg:    sim.Arg{ID: c.ID},
			})
		}

	case ScreenDates:
		scr.Title = "📅 Дата приёма"
		for _, d := range s.data.Dates {
			scr.Controls = append(scr.Controls, sim.Control{
				ID:     "date-" + strconv.Itoa(d.ID),
				Label:  d.Display,
				Action: SelectDate.String(),
				Arg:    sim.Arg{ID: d.ID},
			})
		}

	case ScreenTimes:
		scr.Title = "🕘 Время приёма"
		for _, t := range s.data.Times {
			label := t.Time
			if !t.Available {
				label += "  занято"
			}
			scr.Controls = append(scr.Controls, sim.Control{
				ID:       "time-" + strconv.Itoa(t.ID),
				Label:    label,
				Action:   SelectTime.String(),
				Arg:      sim.Arg{ID: t.ID},
				Disabled: !t.Available,
			})
		}

	case ScreenAppointmentConfirm:
		scr.Title = "📝 Проверьте запись"
		scr.Lines = sim.Text(s.appointmentLines()...)
		scr.Controls = append(scr.Controls, sim.Control{ID: "confirm-button", Label: "✔ Записаться на приём", Action: ConfirmAppointment.String()})

	case ScreenAppointmentConfirmed:
		scr.Title = "✅ Запись подтверждена"
		scr.Lines = append([]sim.Line{{Text: "Вы записаны на приём", Accent: true}}, sim.Text(s.appointmentLines()...)...)
		scr.Controls = append(scr.Controls, sim.Control{ID: "back-to-menu", Label: "← В главное меню", Action: AppointmentConfirmed.String()})

	case ScreenCertificateInfo:
		scr.Title = "📄 Свидетельство пенсионера"
		scr.Lines = sim.Text(
			"Электронное свидетельство подтверждает статус пенсионера.",
			"Его можно показать с телефона вместо бумажного.",
			"Срок оформления: несколько минут.",
		)
		scr.Controls = append(scr.Controls, sim.Control{ID: "request-certificate-button", Label: "Получить свидетельство", Action: RequestCertificate.String()})

	case ScreenCertificateVerify:
		scr.Title = "📄 Свидетельство пенсионера"
		scr.Lines = sim.Text("⏳ Проверяем данные в Пенсионном фонде...")

	case ScreenCertificateIssued:
		scr.Title = "📄 Свидетельство пенсионера"
		scr.Lines = []sim.Line{
			{Text: "✅ Свидетельство выдано", Accent: true},
			{Text: "Документ доступен в личном кабинете."},
		}

	default:
		scr.Lines = sim.Text("Войдите, чтобы пользоваться услугами")
		for _, m := range s.data.LoginMethods {
			scr.Controls = append(scr.Controls, sim.Control{
				ID:     "login-" + m.ID,
				Label:  m.Icon + " " + m.Name,
				Action: SelectLoginMethod.String(),
				Arg:    sim.Arg{Key: m.ID},
			})
		}
	}
	return scr
}

func (s *Simulator) appointmentLines() []string {
	st := &s.state
	var lines []string
	if d := s.doctor(st.SelectedDoctor); d != nil {
		lines = append(lines, "Врач: "+d.Name)
	}
	if c := s.clinic(st.SelectedClinic); c != nil {
		lines = append(lines, "Поликлиника: "+c.Name+", "+c.Address)
	}
	if d := s.date(st.SelectedDate); d != nil {
		lines = append(lines, "Дата: "+d.Display)
	}
	if t := s.timeSlot(st.SelectedTime); t != nil {
		lines = append(lines, "Время: "+t.Time)
	}
	return lines
}

func (s *Simulator) appointmentSummary() string {
	st := &s.state
	summary := "Запись к врачу"
	if d := s.date(st.SelectedDate); d != nil {
		summary += ": " + d.Display
	}
	if t := s.timeSlot(st.SelectedTime); t != nil {
		summary += ", " + t.Time
	}
	return summary
}

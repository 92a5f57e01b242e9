package phone

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/cifra/internal/sim"
)

func (s *Simulator) Screen() sim.Screen {
	st := &s.state
	scr := sim.Screen{Title: "📱 Смартфон"}

	if !st.IsOn {
		scr.Lines = sim.Text("", "⚫ Экран выключен", "")
		scr.Controls = s.buttons()
		return scr
	}

	scr.Status = s.statusBar()

	if st.ShowPowerMenu {
		scr.Lines = sim.Text("Выключить телефон?")
		scr.Controls = append(scr.Controls, sim.Control{ID: "power-off", Label: "⏻ Выключить", Action: TurnOff.String()})
		scr.Controls = append(scr.Controls, s.buttons()...)
		return scr
	}

	switch st.CurrentScreen {
	case ScreenSettings:
		scr.Title = "⚙️ Настройки"
		scr.Controls = append(scr.Controls, sim.Control{ID: "wifi-item", Label: "📶 Wi-Fi", Action: OpenWifi.String()})
		scr.Lines = sim.Text("🔔 Звуки", "🔋 Батарея", "🖥️ Экран")

	case ScreenWifi:
		scr.Title = "📶 Wi-Fi"
		for _, n := range s.networks {
			lock := ""
			if n.Secured {
				lock = " 🔒"
			}
			scr.Controls = append(scr.Controls, sim.Control{
				ID:     "wifi-network-" + strconv.Itoa(n.ID),
				Label:  fmt.Sprintf("%s %s%s", signalIcon(n.Signal), n.Name, lock),
				Action: SelectWifi.String(),
				Arg:    sim.Arg{ID: n.ID},
			})
		}

	case ScreenWifiPassword:
		scr.Title = "📶 " + st.SelectedWifi
		scr.Input = &sim.Input{
			ID:          "wifi-password",
			Field:       sim.FieldWifiPassword,
			Label:       "Пароль сети",
			Placeholder: "Введите пароль",
			Value:       st.WifiPassword,
			Secret:      true,
		}

	case ScreenWifiConnected:
		scr.Title = "📶 Wi-Fi"
		scr.Lines = []sim.Line{{Text: "✅ Подключено к сети «" + st.SelectedWifi + "»", Accent: true}}

	case ScreenAppStore:
		scr.Title = "🛍️ RuStore"
		scr.Input = &sim.Input{
			ID:          "app-search",
			Field:       sim.FieldAppSearch,
			Placeholder: "Поиск приложений",
			Value:       st.AppSearch,
		}
		results := s.SearchResults()
		if st.AppSearch != "" && len(results) == 0 {
			scr.Lines = sim.Text("Ничего не найдено")
		}
		for _, a := range results {
			scr.Controls = append(scr.Controls, sim.Control{
				ID:     "app-result-" + strconv.Itoa(a.ID),
				Label:  fmt.Sprintf("%s %s  ★ %.1f", a.Icon, a.Name, a.Rating),
				Action: SelectApp.String(),
				Arg:    sim.Arg{ID: a.ID},
			})
		}

	case ScreenAppDetails:
		scr.Title = "🛍️ RuStore"
		for _, a := range s.apps {
			if a.Name == st.SelectedApp {
				scr.Lines = sim.Text(
					a.Icon+" "+a.Name,
					fmt.Sprintf("★ %.1f · %s скачиваний · %s", a.Rating, a.Downloads, a.Size),
				)
			}
		}
		label := "Установить"
		if st.Installing {
			label = "⏳ Установка..."
		}
		scr.Controls = append(scr.Controls, sim.Control{
			ID:       "install-button",
			Label:    label,
			Action:   InstallApp.String(),
			Disabled: st.Installing,
		})

	case ScreenAppInstalled:
		scr.Title = "🛍️ RuStore"
		scr.Lines = []sim.Line{{Text: "✅ Приложение «" + st.SelectedApp + "» установлено", Accent: true}}

	default:
		scr.Title = "🏠 Рабочий стол"
		scr.Lines = sim.Text(strings.Join(st.InstalledApps, " · "))
		scr.Controls = append(scr.Controls,
			sim.Control{ID: "app-settings", Label: "⚙️ Настройки", Action: OpenSettings.String()},
			sim.Control{ID: "app-rustore", Label: "🛍️ RuStore", Action: OpenAppStore.String()},
		)
	}

	if st.CurrentScreen != ScreenHome && st.CurrentScreen != "" {
		scr.Controls = append(scr.Controls, sim.Control{ID: "home-button", Label: "⌂ Домой", Action: GoHome.String()})
	}
	scr.Controls = append(scr.Controls, s.buttons()...)
	return scr
}

// buttons are the hardware buttons on the side of the phone.
func (s *Simulator) buttons() []sim.Control {
	power := TurnOn
	if s.state.IsOn {
		power = OpenPowerMenu
	}
	return []sim.Control{
		{ID: "power-button", Label: "⏻ Питание", Action: power.String()},
		{ID: "volume-up", Label: "🔊 Громкость +", Action: VolumeUp.String(), Disabled: !s.state.IsOn},
		{ID: "volume-down", Label: "🔉 Громкость −", Action: VolumeDown.String(), Disabled: !s.state.IsOn},
	}
}

func (s *Simulator) statusBar() string {
	st := &s.state
	parts := []string{"12:00"}
	if st.WifiConnected {
		parts = append(parts, "📶")
	}
	if st.ShowVolume {
		filled := st.Volume / 10
		parts = append(parts, "🔊 "+strings.Repeat("▮", filled)+strings.Repeat("▯", 10-filled)+fmt.Sprintf(" %d%%", st.Volume))
	}
	parts = append(parts, "🔋")
	return strings.Join(parts, "  ")
}

func signalIcon(signal string) string {
	switch signal {
	case "strong":
		return "▂▄▆█"
	case "medium":
		return "▂▄▆ "
	default:
		return "▂▄  "
	}
}

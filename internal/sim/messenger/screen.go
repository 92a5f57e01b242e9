package messenger

import (
	"fmt"
	"strconv"

	"github.com/abhisek/cifra/internal/sim"
)

func (s *Simulator) Screen() sim.Screen {
	st := &s.state
	switch {
	case st.ShowSearch:
		return s.searchScreen()
	case st.CurrentChat != 0:
		return s.chatScreen()
	default:
		return s.listScreen()
	}
}

func (s *Simulator) listScreen() sim.Screen {
	scr := sim.Screen{Title: "💬 Мессенджер"}
	for _, c := range s.state.Chats {
		scr.Controls = append(scr.Controls, sim.Control{
			ID:     "chat-" + strconv.Itoa(c.ID),
			Label:  fmt.Sprintf("%s %s  %s  %s", c.Avatar, c.Name, c.LastMessage, c.Time),
			Action: SelectChat.String(),
			Arg:    sim.Arg{ID: c.ID},
		})
	}
	scr.Controls = append(scr.Controls, sim.Control{
		ID:     "search-button",
		Label:  "🔍 Поиск",
		Action: OpenSearch.String(),
	})
	return scr
}

func (s *Simulator) searchScreen() sim.Screen {
	scr := sim.Screen{
		Title: "🔍 Поиск контактов",
		Input: &sim.Input{
			ID:          "search-input",
			Field:       sim.FieldSearch,
			Placeholder: "Имя контакта",
			Value:       s.state.SearchQuery,
		},
	}
	found := s.FilteredContacts()
	if len(found) == 0 {
		scr.Lines = sim.Text("Никого не найдено")
	}
	for _, c := range found {
		scr.Controls = append(scr.Controls, sim.Control{
			ID:     "contact-" + strconv.Itoa(c.ID),
			Label:  fmt.Sprintf("%s %s  %s", c.Avatar, c.Name, c.Phone),
			Action: CreateChat.String(),
			Arg:    sim.Arg{ID: c.ID},
		})
	}
	scr.Controls = append(scr.Controls, sim.Control{
		ID:     "back-button",
		Label:  "← Назад",
		Action: BackToList.String(),
	})
	return scr
}

func (s *Simulator) chatScreen() sim.Screen {
	st := &s.state
	scr := sim.Screen{}
	if c := s.chat(st.CurrentChat); c != nil {
		scr.Title = c.Avatar + " " + c.Name
	}
	if len(st.Messages) == 0 {
		scr.Lines = []sim.Line{{Text: "Сообщений пока нет"}}
	}
	for _, m := range st.Messages {
		scr.Lines = append(scr.Lines, sim.Line{
			Text: m.Text + "  " + m.Time,
			Mine: m.Sender == SenderMe,
		})
	}

	scr.Controls = append(scr.Controls, sim.Control{
		ID:     "back-button",
		Label:  "← Назад",
		Action: BackToList.String(),
	})

	if st.ShowGallery {
		scr.Status = "Выберите фотографию"
		for i, p := range s.gallery {
			scr.Controls = append(scr.Controls, sim.Control{
				ID:     "photo-" + strconv.Itoa(i+1),
				Label:  p,
				Action: SelectPhoto.String(),
				Arg:    sim.Arg{ID: i + 1},
			})
		}
		return scr
	}

	scr.Input = &sim.Input{
		ID:          "message-input",
		Field:       sim.FieldMessage,
		Placeholder: "Сообщение",
		Value:       st.Input,
	}
	send := SendMessage
	if st.NewChat {
		send = SendGreeting
	}
	scr.Controls = append(scr.Controls,
		sim.Control{ID: "photo-button", Label: "📎 Фото", Action: SendPhoto.String()},
		sim.Control{ID: "send-button", Label: "➤ Отправить", Action: send.String(), Disabled: st.Input == ""},
	)
	return scr
}

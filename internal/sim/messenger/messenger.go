// Package messenger simulates a chat application.
package messenger

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/sim"
)

// Kind is a messenger action.
type Kind int

const (
	SelectChat Kind = iota + 1
	TypeMessage
	SendMessage
	SendPhoto
	SelectPhoto
	BackToList
	OpenSearch
	SearchContact
	CreateChat
	SendGreeting
)

var kindTags = map[Kind]string{
	SelectChat:    "select-chat",
	TypeMessage:   "type-message",
	SendMessage:   "send-message",
	SendPhoto:     "send-photo",
	SelectPhoto:   "select-photo",
	BackToList:    "back-to-list",
	OpenSearch:    "open-search",
	SearchContact: "search-contact",
	CreateChat:    "create-chat",
	SendGreeting:  "send-greeting",
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
	SenderMe    = "me"
	SenderOther = "other"

	photoText = "📷 Фотография"
)

type Chat struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	LastMessage string `yaml:"lastMessage"`
	Time        string `yaml:"time"`
	Avatar      string `yaml:"avatar"`
}

type Message struct {
	ID     int    `yaml:"id"`
	Text   string `yaml:"text"`
	Sender string `yaml:"sender"`
	Time   string `yaml:"time"`
}

// State is the messenger's mutable state.
type State struct {
	Chats       []Chat    `yaml:"chats"`
	CurrentChat int       `yaml:"currentChat"`
	Messages    []Message `yaml:"messages"`
	Input       string    `yaml:"inputText"`
	ShowGallery bool      `yaml:"showGallery"`
	ShowSearch  bool      `yaml:"showSearch"`
	SearchQuery string    `yaml:"searchQuery"`
	// NewChat is set while the open chat was just created from a contact.
	NewChat bool `yaml:"newChat"`
}

// DefaultState is the chat list a lesson starts from unless it brings its own.
func DefaultState() State {
	return State{
		Chats: []Chat{
			{ID: 1, Name: "Анна Петрова", LastMessage: "Привет!", Time: "14:30", Avatar: "👩"},
			{ID: 2, Name: "Иван Смирнов", LastMessage: "Как дела?", Time: "12:15", Avatar: "👨"},
		},
	}
}

var (
	defaultContacts = []content.Contact{
		{ID: 3, Name: "Мария Иванова", Phone: "+7 999 123-45-67", Avatar: "👩‍🦰"},
		{ID: 4, Name: "Петр Сидоров", Phone: "+7 999 765-43-21", Avatar: "👨‍🦱"},
	}
	defaultGallery = []string{"🏞️", "🌅", "🌸", "🐕", "🎂", "🌈"}
)

// Simulator is the messenger.
type Simulator struct {
	state    State
	contacts []content.Contact
	gallery  []string
}

// New builds a messenger for the lesson, starting from its initial state or
// the default one.
func New(l *content.Lesson) (*Simulator, error) {
	s := &Simulator{
		state:    DefaultState(),
		contacts: l.Data.Contacts,
		gallery:  l.Data.PhotoGallery,
	}
	if err := l.DecodeInitialState(&s.state); err != nil {
		return nil, err
	}
	if len(s.contacts) == 0 {
		s.contacts = defaultContacts
	}
	if len(s.gallery) == 0 {
		s.gallery = defaultGallery
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *Simulator) State() State {
	st := s.state
	st.Chats = append([]Chat(nil), s.state.Chats...)
	st.Messages = append([]Message(nil), s.state.Messages...)
	return st
}

func (s *Simulator) Type() content.SimulatorType {
	return content.SimMessenger
}

func (s *Simulator) Handles(action string) bool {
	_, ok := ParseKind(action)
	return ok
}

func (s *Simulator) Binding(action string) (sim.Field, sim.MatchMode, bool) {
	k, _ := ParseKind(action)
	switch k {
	case TypeMessage:
		return sim.FieldMessage, sim.MatchContains, true
	case SearchContact:
		return sim.FieldSearch, sim.MatchContains, true
	}
	return "", 0, false
}

func (s *Simulator) SetText(field sim.Field, value string) {
	switch field {
	case sim.FieldMessage:
		s.state.Input = value
	case sim.FieldSearch:
		s.state.SearchQuery = value
	}
}

func (s *Simulator) Text(field sim.Field) string {
	switch field {
	case sim.FieldMessage:
		return s.state.Input
	case sim.FieldSearch:
		return s.state.SearchQuery
	}
	return ""
}

// Continue is a no-op: every messenger step is an action step.
func (s *Simulator) Continue(string) {}

func (s *Simulator) Accept(action string, arg sim.Arg, now time.Time) (sim.Effect, bool) {
	k, ok := ParseKind(action)
	if !ok {
		return sim.Effect{}, false
	}
	st := &s.state

	switch k {
	case SelectChat:
		chat := s.chat(arg.ID)
		if chat == nil {
			return sim.Effect{}, false
		}
		st.CurrentChat = chat.ID
		st.NewChat = false
		st.Messages = []Message{{ID: 1, Text: chat.LastMessage, Sender: SenderOther, Time: chat.Time}}
		return sim.After(800 * time.Millisecond), true

	case TypeMessage:
		return sim.After(500 * time.Millisecond), true

	case SendMessage, SendGreeting:
		if st.CurrentChat == 0 || strings.TrimSpace(st.Input) == "" {
			return sim.Effect{}, false
		}
		s.appendMine(st.Input, now)
		st.Input = ""
		return sim.After(800 * time.Millisecond), true

	case SendPhoto:
		if st.CurrentChat == 0 {
			return sim.Effect{}, false
		}
		st.ShowGallery = true
		return sim.After(0), true

	case SelectPhoto:
		if !st.ShowGallery || arg.ID < 1 || arg.ID > len(s.gallery) {
			return sim.Effect{}, false
		}
		s.appendMine(photoText, now)
		st.ShowGallery = false
		return sim.After(800 * time.Millisecond), true

	case BackToList:
		st.CurrentChat = 0
		st.Messages = nil
		st.ShowGallery = false
		st.ShowSearch = false
		st.SearchQuery = ""
		st.NewChat = false
		return sim.After(800 * time.Millisecond), true

	case OpenSearch:
		if st.CurrentChat != 0 {
			return sim.Effect{}, false
		}
		st.ShowSearch = true
		return sim.After(800 * time.Millisecond), true

	case SearchContact:
		return sim.After(500 * time.Millisecond), true

	case CreateChat:
		c := s.contact(arg.ID)
		if c == nil {
			return sim.Effect{}, false
		}
		if s.chat(c.ID) == nil {
			st.Chats = append(st.Chats, Chat{ID: c.ID, Name: c.Name, Time: now.Format("15:04"), Avatar: c.Avatar})
		}
		st.CurrentChat = c.ID
		st.ShowSearch = false
		st.SearchQuery = ""
		st.Messages = nil
		st.NewChat = true
		return sim.After(800 * time.Millisecond), true
	}
	return sim.Effect{}, false
}

func (s *Simulator) appendMine(text string, now time.Time) {
	st := &s.state
	msg := Message{ID: len(st.Messages) + 1, Text: text, Sender: SenderMe, Time: now.Format("15:04")}
	st.Messages = append(st.Messages, msg)
	if c := s.chat(st.CurrentChat); c != nil {
		c.LastMessage = msg.Text
		c.Time = msg.Time
	}
}

func (s *Simulator) chat(id int) *Chat {
	for i := range s.state.Chats {
		if s.state.Chats[i].ID == id {
			return &s.state.Chats[i]
		}
	}
	return nil
}

func (s *Simulator) contact(id int) *content.Contact {
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			return &s.contacts[i]
		}
	}
	return nil
}

// FilteredContacts returns the contacts whose name contains the search query.
func (s *Simulator) FilteredContacts() []content.Contact {
	q := strings.ToLower(strings.TrimSpace(s.state.SearchQuery))
	if q == "" {
		return s.contacts
	}
	var out []content.Contact
	for _, c := range s.contacts {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

package assist

import (
	"fmt"
	"strings"
)

const systemPrompt = `Ты терпеливый помощник, который учит пожилых людей пользоваться смартфоном и госуслугами. Объясняй очень простыми словами, без терминов и английских слов. Обращайся на «вы». Не придумывай кнопок, которых нет на экране.`

func buildUserMessage(in Input) string {
	l := in.Lesson
	step := l.Steps[in.Step]

	var b strings.Builder
	fmt.Fprintf(&b, "Урок: %s\n", l.Title)
	fmt.Fprintf(&b, "Шаг %d из %d: %s\n", in.Step+1, len(l.Steps), step.Title)
	if step.Description != "" {
		fmt.Fprintf(&b, "Описание: %s\n", step.Description)
	}
	fmt.Fprintf(&b, "Задание: %s\n", step.Instruction)
	if step.ExpectedText != "" {
		fmt.Fprintf(&b, "Нужно ввести: %s\n", step.ExpectedText)
	}

	if scr := in.Screen; scr != nil {
		b.WriteString("\nНа экране:\n")
		if scr.Title != "" {
			fmt.Fprintf(&b, "Заголовок: %s\n", scr.Title)
		}
		for _, line := range scr.Lines {
			fmt.Fprintf(&b, "- %s\n", line.Text)
		}
		for _, c := range scr.Controls {
			mark := ""
			if c.ID == step.HighlightElement {
				mark = " (нужная кнопка)"
			}
			fmt.Fprintf(&b, "Кнопка: %s%s\n", c.Label, mark)
		}
		if scr.Input != nil {
			fmt.Fprintf(&b, "Поле ввода: %s\n", scr.Input.Label)
		}
	}

	b.WriteString(`
Объясните этот шаг проще, чем в задании: что нажать или ввести и что произойдёт после. 2-3 коротких предложения. Добавьте до трёх коротких советов, если они помогут.`)
	return b.String()
}

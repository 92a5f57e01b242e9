package shop

import (
	"fmt"
	"strconv"

	"github.com/abhisek/cifra/internal/sim"
)

func rub(n int) string {
	return fmt.Sprintf("%d ₽", n)
}

func (s *Simulator) Screen() sim.Screen {
	st := &s.state
	scr := sim.Screen{Title: "🛒 Магазин"}
	if n := len(st.Cart); n > 0 {
		scr.Status = fmt.Sprintf("В корзине: %d · %s", n, rub(s.Subtotal()))
	}

	switch st.CurrentScreen {
	case ScreenProducts:
		if c := s.category(st.SelectedCategory); c != nil {
			scr.Title = c.Icon + " " + c.Name
		}
		pick := SelectProduct
		if len(st.Cart) > 0 {
			pick = SelectSecondProduct
		}
		for _, p := range s.data.Products {
			if st.SelectedCategory != 0 && p.Category != st.SelectedCategory {
				continue
			}
			scr.Controls = append(scr.Controls, sim.Control{
				ID:       "product-" + strconv.Itoa(p.ID),
				Label:    fmt.Sprintf("%s %s  %s  ★ %.1f", p.Image, p.Name, rub(p.Price), p.Rating),
				Action:   pick.String(),
				Arg:      sim.Arg{ID: p.ID},
				Disabled: !p.InStock,
			})
		}

	case ScreenProduct:
		if p := s.product(st.SelectedProduct); p != nil {
			scr.Title = p.Image + " " + p.Name
			scr.Lines = []sim.Line{
				{Text: rub(p.Price), Accent: true},
				{Text: fmt.Sprintf("★ %.1f · %d отзывов", p.Rating, p.Reviews)},
				{Text: p.Description},
			}
		}
		add := AddToCart
		if len(st.Cart) > 0 {
			add = AddSecondToCart
		}
		scr.Controls = append(scr.Controls, sim.Control{ID: "add-to-cart", Label: "🛒 В корзину", Action: add.String()})

	case ScreenCartAdded:
		scr.Lines = []sim.Line{{Text: "✅ Товар добавлен в корзину", Accent: true}}
		scr.Controls = append(scr.Controls, sim.Control{ID: "continue-shopping", Label: "← Продолжить покупки", Action: ContinueShopping.String()})

	case ScreenCart:
		scr.Title = "🛒 Корзина"
		scr.Lines = s.cartLines()
		scr.Controls = append(scr.Controls, sim.Control{
			ID:       "checkout-button",
			Label:    "Оформить заказ",
			Action:   StartCheckout.String(),
			Disabled: len(st.Cart) == 0,
		})

	case ScreenCheckout:
		return s.checkoutScreen(scr)

	case ScreenOrderCreated:
		scr.Title = "✅ Заказ оформлен"
		scr.Lines = []sim.Line{
			{Text: "Номер заказа: " + st.OrderNumber, Accent: true},
			{Text: "Сумма: " + rub(s.Total())},
		}
		return scr

	default:
		scr.Title = "🛒 Каталог"
		for _, c := range s.data.Categories {
			scr.Controls = append(scr.Controls, sim.Control{
				ID:     "category-" + strconv.Itoa(c.ID),
				Label:  c.Icon + " " + c.Name,
				Action: SelectCategory.String(),
				Arg:    sim.Arg{ID: c.ID},
			})
		}
	}

	if st.CurrentScreen != ScreenCart {
		scr.Controls = append(scr.Controls, sim.Control{
			ID:     "cart-button",
			Label:  fmt.Sprintf("🛒 Корзина (%d)", len(st.Cart)),
			Action: OpenCart.String(),
		})
	}
	return scr
}

func (s *Simulator) cartLines() []sim.Line {
	if len(s.state.Cart) == 0 {
		return sim.Text("Корзина пуста")
	}
	var lines []sim.Line
	for _, p := range s.state.Cart {
		lines = append(lines, sim.Line{Text: fmt.Sprintf("%s %s  %s", p.Image, p.Name, rub(p.Price))})
	}
	return append(lines, sim.Line{Text: "Товары: " + rub(s.Subtotal()), Accent: true})
}

// checkoutScreen shows each checkout stage only once the previous one is
// chosen.
func (s *Simulator) checkoutScreen(scr sim.Screen) sim.Screen {
	st := &s.state
	scr.Title = "📝 Оформление заказа"
	scr.Lines = append(scr.Lines, sim.Line{Text: "Способ получения:", Accent: true})
	for _, d := range s.data.DeliveryMethods {
		scr.Controls = append(scr.Controls, sim.Control{
			ID:     "delivery-" + d.ID,
			Label:  fmt.Sprintf("%s %s %s  %s%s", d.Icon, d.Name, d.Days, rub(feeFor(d.ID)), mark(st.DeliveryMethod == d.ID)),
			Action: SelectDeliveryMethod.String(),
			Arg:    sim.Arg{Key: d.ID},
		})
	}
	if st.DeliveryMethod == "" {
		return scr
	}

	for _, a := range s.data.Addresses {
		scr.Controls = append(scr.Controls, sim.Control{
			ID:     "address-" + strconv.Itoa(a.ID),
			Label:  fmt.Sprintf("📍 %s, %s%s", a.City, a.Address, mark(st.Address == a.ID)),
			Action: SelectAddress.String(),
			Arg:    sim.Arg{ID: a.ID},
		})
	}
	if st.Address == 0 {
		return scr
	}

	for _, p := range s.data.PaymentMethods {
		scr.Controls = append(scr.Controls, sim.Control{
			ID:     "payment-" + p.ID,
			Label:  p.Icon + " " + p.Name + mark(st.PaymentMethod == p.ID),
			Action: SelectPayment.String(),
			Arg:    sim.Arg{Key: p.ID},
		})
	}
	if st.PaymentMethod == "" {
		return scr
	}

	scr.Lines = append(scr.Lines,
		sim.Line{Text: "Товары: " + rub(s.Subtotal())},
		sim.Line{Text: "Доставка: " + rub(s.DeliveryFee())},
		sim.Line{Text: "Итого: " + rub(s.Total()), Accent: true},
	)
	scr.Controls = append(scr.Controls, sim.Control{ID: "confirm-order", Label: "✔ Подтвердить заказ", Action: ConfirmOrder.String()})
	return scr
}

func mark(selected bool) string {
	if selected {
		return "  ✓"
	}
	return ""
}

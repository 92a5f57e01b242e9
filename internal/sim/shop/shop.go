// Package shop simulates an online store: catalog, cart and a three-stage
// checkout.
package shop

import (
	"fmt"
	"time"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/sim"
)

// Kind is a shop action.
type Kind int

const (
	SelectCategory Kind = iota + 1
	SelectProduct
	SelectSecondProduct
	AddToCart
	AddSecondToCart
	ContinueShopping
	OpenCart
	StartCheckout
	SelectDeliveryMethod
	SelectAddress
	SelectPayment
	ConfirmOrder
)

var kindTags = map[Kind]string{
	SelectCategory:       "select-category",
	SelectProduct:        "select-product",
	SelectSecondProduct:  "select-second-product",
	AddToCart:            "add-to-cart",
	AddSecondToCart:      "add-second-to-cart",
	ContinueShopping:     "continue-shopping",
	OpenCart:             "open-cart",
	StartCheckout:        "start-checkout",
	SelectDeliveryMethod: "select-delivery-method",
	SelectAddress:        "select-address",
	SelectPayment:        "select-payment",
	ConfirmOrder:         "confirm-order",
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
	ScreenCatalog      = "catalog"
	ScreenProducts     = "products"
	ScreenProduct      = "product"
	ScreenCartAdded    = "cart-added"
	ScreenCart         = "cart"
	ScreenCheckout     = "checkout"
	ScreenOrderCreated = "order-created"
)

const (
	// DeliveryCourier is the delivery method that carries a fee.
	DeliveryCourier = "courier"
	// CourierFee is charged for courier delivery when the lesson data does
	// not price it.
	CourierFee = 300
)

// State is the shop's mutable state.
type State struct {
	CurrentScreen    string            `yaml:"currentScreen"`
	SelectedCategory int               `yaml:"selectedCategory"`
	SelectedProduct  int               `yaml:"selectedProduct"`
	Cart             []content.Product `yaml:"cart"`
	DeliveryMethod   string            `yaml:"deliveryMethod"`
	Address          int               `yaml:"address"`
	PaymentMethod    string            `yaml:"paymentMethod"`
	OrderNumber      string            `yaml:"orderNumber"`
}

// DefaultState is an empty cart on the catalog page.
func DefaultState() State {
	return State{CurrentScreen: ScreenCatalog}
}

// Simulator is the shop.
type Simulator struct {
	state State
	data  content.Data
}

// New builds a shop for the lesson. Lists the lesson does not provide fall
// back to the built-in store data.
func New(l *content.Lesson) (*Simulator, error) {
	s := &Simulator{state: DefaultState(), data: l.Data}
	if err := l.DecodeInitialState(&s.state); err != nil {
		return nil, err
	}
	d := &s.data
	if len(d.Categories) == 0 {
		d.Categories = defaultCategories
	}
	if len(d.Products) == 0 {
		d.Products = defaultProducts
	}
	if len(d.DeliveryMethods) == 0 {
		d.DeliveryMethods = defaultDelivery
	}
	if len(d.Addresses) == 0 {
		d.Addresses = defaultAddresses
	}
	if len(d.PaymentMethods) == 0 {
		d.PaymentMethods = defaultPayments
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *Simulator) State() State {
	st := s.state
	st.Cart = append([]content.Product(nil), s.state.Cart...)
	return st
}

func (s *Simulator) Type() content.SimulatorType {
	return content.SimShop
}

func (s *Simulator) Handles(action string) bool {
	_, ok := ParseKind(action)
	return ok
}

// Binding is always false: the shop has no free-text steps.
func (s *Simulator) Binding(string) (sim.Field, sim.MatchMode, bool) {
	return "", 0, false
}

func (s *Simulator) SetText(sim.Field, string) {}

func (s *Simulator) Text(sim.Field) string { return "" }

func (s *Simulator) Continue(string) {}

func (s *Simulator) Accept(action string, arg sim.Arg, now time.Time) (sim.Effect, bool) {
	k, ok := ParseKind(action)
	if !ok {
		return sim.Effect{}, false
	}
	st := &s.state

	switch k {
	case SelectCategory:
		if s.category(arg.ID) == nil {
			return sim.Effect{}, false
		}
		st.SelectedCategory = arg.ID
		st.CurrentScreen = ScreenProducts
		return sim.After(800 * time.Millisecond), true

	case SelectProduct, SelectSecondProduct:
		p := s.product(arg.ID)
		if p == nil || (st.SelectedCategory != 0 && p.Category != st.SelectedCategory) {
			return sim.Effect{}, false
		}
		st.SelectedProduct = p.ID
		st.CurrentScreen = ScreenProduct
		return sim.After(800 * time.Millisecond), true

	case AddToCart, AddSecondToCart:
		p := s.product(st.SelectedProduct)
		if p == nil || st.CurrentScreen != ScreenProduct {
			return sim.Effect{}, false
		}
		st.Cart = append(st.Cart, *p)
		st.CurrentScreen = ScreenCartAdded
		return sim.After(1000 * time.Millisecond), true

	case ContinueShopping:
		st.CurrentScreen = ScreenProducts
		st.SelectedProduct = 0
		return sim.After(800 * time.Millisecond), true

	case OpenCart:
		st.CurrentScreen = ScreenCart
		return sim.After(800 * time.Millisecond), true

	case StartCheckout:
		if len(st.Cart) == 0 {
			return sim.Effect{}, false
		}
		st.CurrentScreen = ScreenCheckout
		return sim.After(800 * time.Millisecond), true

	case SelectDeliveryMethod:
		if st.CurrentScreen != ScreenCheckout || s.delivery(arg.Key) == nil {
			return sim.Effect{}, false
		}
		st.DeliveryMethod = arg.Key
		return sim.After(800 * time.Millisecond), true

	case SelectAddress:
		if st.DeliveryMethod == "" || s.address(arg.ID) == nil {
			return sim.Effect{}, false
		}
		st.Address = arg.ID
		return sim.After(800 * time.Millisecond), true

	case SelectPayment:
		if st.Address == 0 || s.payment(arg.Key) == nil {
			return sim.Effect{}, false
		}
		st.PaymentMethod = arg.Key
		return sim.After(800 * time.Millisecond), true

	case ConfirmOrder:
		if st.PaymentMethod == "" {
			return sim.Effect{}, false
		}
		st.OrderNumber = fmt.Sprintf("%06d", now.Unix()%1000000)
		st.CurrentScreen = ScreenOrderCreated
		return sim.After(1000 * time.Millisecond), true
	}
	return sim.Effect{}, false
}

// Subtotal is the sum of the cart's prices.
func (s *Simulator) Subtotal() int {
	sum := 0
	for _, p := range s.state.Cart {
		sum += p.Price
	}
	return sum
}

// DeliveryFee is the surcharge for the chosen delivery method: CourierFee
// for courier delivery, nothing otherwise. Prices in the lesson data are
// display only.
func (s *Simulator) DeliveryFee() int {
	return feeFor(s.state.DeliveryMethod)
}

func feeFor(method string) int {
	if method == DeliveryCourier {
		return CourierFee
	}
	return 0
}

// Total is what the order costs: cart plus delivery.
func (s *Simulator) Total() int {
	return s.Subtotal() + s.DeliveryFee()
}

func (s *Simulator) category(id int) *content.Category {
	for i := range s.data.Categories {
		if s.data.Categories[i].ID == id {
			return &s.data.Categories[i]
		}
	}
	return nil
}

func (s *Simulator) product(id int) *content.Product {
	for i := range s.data.Products {
		if s.data.Products[i].ID == id {
			return &s.data.Products[i]
		}
	}
	return nil
}

func (s *Simulator) delivery(id string) *content.DeliveryMethod {
	for i := range s.data.DeliveryMethods {
		if s.data.DeliveryMethods[i].ID == id {
			return &s.data.DeliveryMethods[i]
		}
	}
	return nil
}

func (s *Simulator) address(id int) *content.Address {
	for i := range s.data.Addresses {
		if s.data.Addresses[i].ID == id {
			return &s.data.Addresses[i]
		}
	}
	return nil
}

func (s *Simulator) payment(id string) *content.PaymentMethod {
	for i := range s.data.PaymentMethods {
		if s.data.PaymentMethods[i].ID == id {
			return &s.data.PaymentMethods[i]
		}
	}
	return nil
}

package shop

import "github.com/abhisek/cifra/internal/content"

var (
	defaultCategories = []content.Category{
		{ID: 1, Name: "Бытовая техника", Icon: "🏠"},
		{ID: 2, Name: "Одежда", Icon: "👕"},
		{ID: 3, Name: "Книги", Icon: "📚"},
	}
	defaultProducts = []content.Product{
		{ID: 1, Category: 1, Name: "Электрический чайник", Price: 1000, Image: "🫖", Rating: 4.6, Reviews: 128, Description: "Объём 1,7 л, автоотключение", InStock: true},
		{ID: 2, Category: 1, Name: "Настольная лампа", Price: 500, Image: "💡", Rating: 4.4, Reviews: 64, Description: "Тёплый свет, три режима яркости", InStock: true},
		{ID: 3, Category: 2, Name: "Тёплый шарф", Price: 800, Image: "🧣", Rating: 4.8, Reviews: 41, Description: "Шерсть, 180 см", InStock: true},
		{ID: 4, Category: 2, Name: "Перчатки", Price: 450, Image: "🧤", Rating: 4.3, Reviews: 22, Description: "Для сенсорных экранов", InStock: true},
		{ID: 5, Category: 3, Name: "Кулинарная книга", Price: 650, Image: "📖", Rating: 4.9, Reviews: 87, Description: "200 домашних рецептов", InStock: true},
	}
	defaultDelivery = []content.DeliveryMethod{
		{ID: DeliveryCourier, Name: "Курьер", Icon: "🚚", Days: "1-2 дня", Price: CourierFee},
		{ID: "pickup", Name: "Пункт выдачи", Icon: "📦", Days: "2-3 дня", Price: 0},
	}
	defaultAddresses = []content.Address{
		{ID: 1, Address: "ул. Ленина, д. 15, кв. 42", City: "Москва"},
		{ID: 2, Address: "пр. Мира, д. 8, кв. 3", City: "Москва"},
	}
	defaultPayments = []content.PaymentMethod{
		{ID: "card", Name: "Банковская карта", Icon: "💳"},
		{ID: "cash", Name: "Наличными при получении", Icon: "💵"},
		{ID: "sbp", Name: "СБП", Icon: "📱"},
	}
)

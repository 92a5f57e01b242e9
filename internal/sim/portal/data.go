package portal

import "github.com/abhisek/cifra/internal/content"

var (
	defaultLoginMethods = []content.LoginMethod{
		{ID: "phone", Name: "Номер телефона", Icon: "📱", Placeholder: "+7 (___) ___-__-__"},
		{ID: "email", Name: "Электронная почта", Icon: "📧", Placeholder: "example@mail.ru"},
		{ID: "snils", Name: "СНИЛС", Icon: "🔢", Placeholder: "123-456-789 00"},
	}
	defaultServices = []content.Service{
		{ID: ServiceDoctor, Name: "Запись на приём к врачу", Icon: "🩺"},
		{ID: ServiceCertificate, Name: "Электронное свидетельство пенсионера", Icon: "📄"},
	}
	defaultSpecialties = []content.Specialty{
		{ID: 1, Name: "Терапевт", Icon: "👨‍⚕️", Available: 5},
		{ID: 2, Name: "Кардиолог", Icon: "❤️", Available: 3},
		{ID: 3, Name: "Офтальмолог", Icon: "👁️", Available: 4},
		{ID: 4, Name: "Стоматолог", Icon: "🦷", Available: 6},
	}
	defaultDoctors = []content.Doctor{
		{ID: 1, Specialty: 1, Name: "Иванов Иван Иванович", Experience: "15 лет", Rating: 4.8},
		{ID: 2, Specialty: 1, Name: "Петрова Анна Сергеевна", Experience: "12 лет", Rating: 4.9},
		{ID: 3, Specialty: 2, Name: "Смирнов Петр Александрович", Experience: "20 лет", Rating: 4.7},
	}
	defaultClinics = []content.Clinic{
		{ID: 1, Name: "Поликлиника №5", Address: "ул. Ленина, д. 10", District: "Центральный"},
		{ID: 2, Name: "Поликлиника №12", Address: "пр. Мира, д. 25", District: "Северный"},
		{ID: 3, Name: "Поликлиника №7", Address: "ул. Садовая, д. 7", District: "Южный"},
	}
	defaultDates = []content.AppointmentDate{
		{ID: 1, Date: "2026-01-27", Display: "Понедельник, 27 января"},
		{ID: 2, Date: "2026-01-28", Display: "Вторник, 28 января"},
		{ID: 3, Date: "2026-01-29", Display: "Среда, 29 января"},
	}
	defaultTimes = []content.AppointmentTime{
		{ID: 1, Time: "09:00", Available: true},
		{ID: 2, Time: "10:00", Available: true},
		{ID: 3, Time: "11:00", Available: false},
		{ID: 4, Time: "14:00", Available: true},
		{ID: 5, Time: "15:00", Available: true},
	}
)

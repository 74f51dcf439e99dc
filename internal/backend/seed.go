package backend

import "obuv/internal/domain"

// SeedDemo наполняет хранилище данными для локальной разработки:
// учётные записи всех ролей, пункты выдачи и витрина товаров
func (s *Store) SeedDemo() error {
	if err := s.AddUser("admin", "admin123", domain.User{
		Role: domain.RoleAdmin, FullName: "Иванов Иван Иванович",
	}); err != nil {
		return err
	}
	if err := s.AddUser("manager", "manager123", domain.User{
		Role: domain.RoleManager, FullName: "Петрова Анна Сергеевна",
	}); err != nil {
		return err
	}

	s.AddPickupPoint("г. Москва, ул. Ленина, д. 10")
	s.AddPickupPoint("г. Санкт-Петербург, Невский пр., д. 5")
	s.AddPickupPoint("г. Казань, ул. Баумана, д. 22")

	for _, p := range []domain.Product{
		{Article: "A112T4", Name: "Кроссовки беговые", Category: "Спортивная обувь", Manufacturer: "Nike", Supplier: "СпортОпт", Unit: "пара", Price: 5990, Discount: 10, Quantity: 14},
		{Article: "B204K1", Name: "Туфли классические", Category: "Мужская обувь", Manufacturer: "Ralf Ringer", Supplier: "ОбувьТорг", Unit: "пара", Price: 7490, Discount: 0, Quantity: 6, Description: "Натуральная кожа"},
		{Article: "C318M9", Name: "Ботинки зимние", Category: "Женская обувь", Manufacturer: "Ecco", Supplier: "СеверСнаб", Unit: "пара", Price: 11200, Discount: 20, Quantity: 0},
		{Article: "D407S2", Name: "Сандалии детские", Category: "Детская обувь", Manufacturer: "Котофей", Supplier: "ОбувьТорг", Unit: "пара", Price: 1890, Discount: 5, Quantity: 32},
	} {
		if err := s.CreateProduct(p); err != nil {
			return err
		}
	}
	return nil
}

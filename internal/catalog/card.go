package catalog

import (
	"fmt"

	"obuv/internal/domain"
)

// StockBand полоса остатка для карточки товара
type StockBand int

const (
	BandOutOfStock StockBand = iota // 0 на складе
	BandLow                         // от 1 до 9
	BandNormal                      // 10 и больше
)

const lowStockThreshold = 10

// PlaceholderPhoto маркер карточки без фотографии
const PlaceholderPhoto = "/static/images/picture.png"

// Card проекция товара для отображения. Всё производное считается
// здесь, чтобы слой вывода ничего не знал о правилах.
type Card struct {
	Product      domain.Product
	Band         StockBand
	HasDiscount  bool
	HighDiscount bool // скидка больше 15% выделяется визуально
	PhotoURL     string
	PriceLabel   string // цена без скидки, для зачёркивания
	FinalLabel   string
	CanEdit      bool
}

// BuildCard собирает карточку. Цена округляется до двух знаков только
// при форматировании, исходное значение не трогается.
func BuildCard(p domain.Product, canEdit bool, baseURL string) Card {
	band := BandNormal
	switch {
	case p.Quantity == 0:
		band = BandOutOfStock
	case p.Quantity < lowStockThreshold:
		band = BandLow
	}

	photo := p.Photo
	if photo == "" {
		photo = PlaceholderPhoto
	}
	photo = baseURL + photo

	final := p.FinalPrice
	if final == 0 && p.Price != 0 {
		final = p.ComputeFinalPrice()
	}

	return Card{
		Product:      p,
		Band:         band,
		HasDiscount:  p.Discount > 0,
		HighDiscount: p.Discount > 15,
		PhotoURL:     photo,
		PriceLabel:   fmt.Sprintf("%.2f ₽", p.Price),
		FinalLabel:   fmt.Sprintf("%.2f ₽", final),
		CanEdit:      canEdit,
	}
}

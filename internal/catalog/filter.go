package catalog

import (
	"strings"

	"obuv/internal/domain"
)

// SplitTerms разбивает строку поиска на термы по пробелам, в нижнем
// регистре. Пустая строка — пустой список.
func SplitTerms(search string) []string {
	fields := strings.Fields(search)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, strings.ToLower(f))
	}
	return terms
}

// MatchesTerms товар подходит, если склейка его полей содержит каждый
// терм (И-семантика, подстрочное совпадение без учёта регистра)
func MatchesTerms(p domain.Product, terms []string) bool {
	haystack := strings.ToLower(strings.Join([]string{
		p.Article, p.Name, p.Category, p.Manufacturer, p.Supplier, p.Description,
	}, " "))
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

// Refine повторно фильтрует серверную выборку по нескольким термам.
// Сервер ищет по одной подстроке, многословный запрос добирается здесь.
func Refine(products []domain.Product, search string) []domain.Product {
	terms := SplitTerms(search)
	if len(terms) == 0 {
		return products
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if MatchesTerms(p, terms) {
			out = append(out, p)
		}
	}
	return out
}

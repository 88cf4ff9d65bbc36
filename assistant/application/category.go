package application

import (
	"strings"

	"kisan-gateway/assistant/domain"
)

// a ordem importa: a primeira categoria que casar vence
var categoryKeywords = []struct {
	category domain.Category
	words    []string
}{
	{domain.CategoryWeather, []string{"weather", "rain", "मौसम", "बारिश", "हवामान", "पाऊस"}},
	{domain.CategoryCrop, []string{"crop", "seed", "फसल", "बीज", "पीक", "बियाणे"}},
	{domain.CategoryPest, []string{"pest", "insect", "कीट", "कीड"}},
	{domain.CategorySoil, []string{"soil", "fertilizer", "मिट्टी", "खाद", "माती", "खत"}},
	{domain.CategoryMarket, []string{"market", "price", "मंडी", "भाव", "बाजार"}},
}

// Classify rotula a pergunta para o log de conversas.
func Classify(message string) domain.Category {
	lower := strings.ToLower(message)
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if strings.Contains(lower, w) {
				return c.category
			}
		}
	}
	return domain.CategoryGeneral
}

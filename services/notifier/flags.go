package notifier

// countryFlags maps the seller locations shown on listing pages, in English
// and Spanish, to flag emoji
var countryFlags = map[string]string{
	"Alemania":        "🇩🇪",
	"Germany":         "🇩🇪",
	"Bélgica":         "🇧🇪",
	"Belgium":         "🇧🇪",
	"Bulgaria":        "🇧🇬",
	"Chipre":          "🇨🇾",
	"Cyprus":          "🇨🇾",
	"Croacia":         "🇭🇷",
	"Croatia":         "🇭🇷",
	"Dinamarca":       "🇩🇰",
	"Denmark":         "🇩🇰",
	"Eslovaquia":      "🇸🇰",
	"Slovakia":        "🇸🇰",
	"Eslovenia":       "🇸🇮",
	"Slovenia":        "🇸🇮",
	"España":          "🇪🇸",
	"Spain":           "🇪🇸",
	"Estonia":         "🇪🇪",
	"Finlandia":       "🇫🇮",
	"Finland":         "🇫🇮",
	"Francia":         "🇫🇷",
	"France":          "🇫🇷",
	"Grecia":          "🇬🇷",
	"Greece":          "🇬🇷",
	"Hungría":         "🇭🇺",
	"Hungary":         "🇭🇺",
	"Irlanda":         "🇮🇪",
	"Ireland":         "🇮🇪",
	"Islandia":        "🇮🇸",
	"Iceland":         "🇮🇸",
	"Italia":          "🇮🇹",
	"Italy":           "🇮🇹",
	"Japón":           "🇯🇵",
	"Japan":           "🇯🇵",
	"Letonia":         "🇱🇻",
	"Latvia":          "🇱🇻",
	"Liechtenstein":   "🇱🇮",
	"Lituania":        "🇱🇹",
	"Lithuania":       "🇱🇹",
	"Luxemburgo":      "🇱🇺",
	"Luxembourg":      "🇱🇺",
	"Malta":           "🇲🇹",
	"Noruega":         "🇳🇴",
	"Norway":          "🇳🇴",
	"Países Bajos":    "🇳🇱",
	"Netherlands":     "🇳🇱",
	"Polonia":         "🇵🇱",
	"Poland":          "🇵🇱",
	"Portugal":        "🇵🇹",
	"Reino Unido":     "🇬🇧",
	"United Kingdom":  "🇬🇧",
	"República Checa": "🇨🇿",
	"Czech Republic":  "🇨🇿",
	"Rumania":         "🇷🇴",
	"Romania":         "🇷🇴",
	"Singapur":        "🇸🇬",
	"Singapore":       "🇸🇬",
	"Suecia":          "🇸🇪",
	"Sweden":          "🇸🇪",
	"Suiza":           "🇨🇭",
	"Switzerland":     "🇨🇭",
	"Austria":         "🇦🇹",
}

// countryLabel prefixes the country with its flag when one is known
func countryLabel(country string) string {
	if flag, ok := countryFlags[country]; ok {
		return flag + " " + country
	}
	return country
}

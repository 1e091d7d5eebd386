// Package i18n negotiates the response locale (ru or uz) and holds the
// user-facing message catalog keyed by error code.
package i18n

import (
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var supported = map[string]bool{"ru": true, "uz": true}

var langRe = regexp.MustCompile(`^[a-zA-Z]{1,8}(?:-[a-zA-Z0-9]{1,8})*$`)

// Infer picks the locale from an explicit locale header first, then from
// Accept-Language, then falls back to the configured default.
func Infer(headers http.Header, defaultLocale, localeHeader string) string {
	explicit := strings.ToLower(strings.TrimSpace(headers.Get(localeHeader)))
	if explicit != "" {
		if strings.HasPrefix(explicit, "ru") {
			return "ru"
		}
		if strings.HasPrefix(explicit, "uz") {
			return "uz"
		}
	}

	if accept := strings.TrimSpace(headers.Get("Accept-Language")); accept != "" {
		if best := bestMatchAcceptLanguage(accept); supported[best] {
			return best
		}
	}

	if supported[defaultLocale] {
		return defaultLocale
	}
	return "ru"
}

func bestMatchAcceptLanguage(value string) string {
	type langQ struct {
		lang string
		q    float64
	}
	var candidates []langQ
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lang, q := parseLangQ(part)
		if lang == "" {
			continue
		}
		base := strings.SplitN(lang, "-", 2)[0]
		if supported[lang] || supported[base] {
			candidates = append(candidates, langQ{lang: base, q: q})
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].q > candidates[j].q })
	return candidates[0].lang
}

func parseLangQ(part string) (string, float64) {
	if !strings.Contains(part, ";") {
		lang := strings.TrimSpace(part)
		if !langRe.MatchString(lang) {
			return "", 0
		}
		return strings.ToLower(lang), 1.0
	}

	langRaw, paramsRaw, _ := strings.Cut(part, ";")
	lang := strings.TrimSpace(langRaw)
	if !langRe.MatchString(lang) {
		return "", 0
	}
	q := 1.0
	for _, p := range strings.Split(paramsRaw, ";") {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "q=") {
			parsed, err := strconv.ParseFloat(p[2:], 64)
			if err != nil {
				parsed = 0
			}
			q = parsed
		}
	}
	return strings.ToLower(lang), q
}

var messages = map[string]map[string]string{
	"ru": {
		"invalid_image":             "Неверный файл изображения.",
		"image_too_large":           "Файл изображения слишком большой.",
		"unsupported_image_type":    "Неподдерживаемый формат изображения.",
		"image_dimensions_exceeded": "Изображение слишком большое по размеру.",
		"request_invalid":           "Некорректный запрос.",
		"not_found":                 "Ресурс не найден.",
		"method_not_allowed":        "Метод не поддерживается.",
		"rate_limited":              "Слишком много запросов. Попробуйте позже.",
		"service_unavailable":       "Сервис временно недоступен. Попробуйте позже.",
		"recognition_unavailable":   "Сервис распознавания временно недоступен. Попробуйте позже.",
		"anime_not_found":           "Не удалось найти аниме в каталоге.",
		"links_not_found":           "Для этого аниме нет доступных официальных ссылок.",
		"llm_unavailable":           "Сервис ответа временно недоступен. Попробуйте позже.",
		"internal_error":            "Внутренняя ошибка сервиса.",
		"uncertain":                 "Не удалось уверенно определить аниме. Лучшие совпадения:",
	},
	"uz": {
		"invalid_image":             "Rasm fayli noto‘g‘ri.",
		"image_too_large":           "Rasm fayli juda katta.",
		"unsupported_image_type":    "Rasm formati qo‘llab-quvvatlanmaydi.",
		"image_dimensions_exceeded": "Rasm o‘lchamlari juda katta.",
		"request_invalid":           "So‘rov noto‘g‘ri.",
		"not_found":                 "Resurs topilmadi.",
		"method_not_allowed":        "Ushbu metod qo‘llab-quvvatlanmaydi.",
		"rate_limited":              "Juda ko‘p so‘rov yuborildi. Keyinroq urinib ko‘ring.",
		"service_unavailable":       "Xizmat vaqtincha mavjud emas. Keyinroq urinib ko‘ring.",
		"recognition_unavailable":   "Aniqlash xizmati vaqtincha mavjud emas. Keyinroq urinib ko‘ring.",
		"anime_not_found":           "Anime katalogda topilmadi.",
		"links_not_found":           "Ushbu anime uchun rasmiy havolalar mavjud emas.",
		"llm_unavailable":           "Javob xizmati vaqtincha mavjud emas. Keyinroq urinib ko‘ring.",
		"internal_error":            "Xizmatda ichki xatolik yuz berdi.",
		"uncertain":                 "Animeni aniq topib bo‘lmadi. Eng yaxshi mos kelganlari:",
	},
}

// T returns the localized message for key, falling back to Russian.
func T(locale, key string) string {
	lang := locale
	if !supported[lang] {
		lang = "ru"
	}
	if msg, ok := messages[lang][key]; ok {
		return msg
	}
	return messages["ru"][key]
}

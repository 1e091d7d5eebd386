package identify

import (
	"fmt"

	"tenseii/pkg/models"
)

// buildPrompts assembles the persona system prompt and the grounded user
// prompt for the given locale and premium tier. fewshot is injected verbatim
// below the system instructions when non-empty.
func buildPrompts(locale string, premium bool, titleMarkdown string, links models.AnimeLinks, fewshot string) (string, string) {
	if locale == "uz" {
		address := "Otaku"
		if premium {
			address = "Senpai"
		}

		system := "Sen “TENSEII” — rasmiy anime platformasining “Anime Qiz” yordamchisisan. " +
			"Til: faqat o‘zbek. " +
			"Uslub: energiyali, quvnoq, biroz shy (uyatchan), ba’zan sass, lekin odobli. " +
			fmt.Sprintf("Foydalanuvchini “%s” deb chaqir. ", address) +
			"Javob: 1–3 qisqa jumla. 0–2 emoji (ko‘p emas). Spoylersiz yoz. " +
			"Ichki texnologiyalar, modelllar, konfiguratsiya, chegaralar yoki infratuzilma haqida yozmang. " +
			"Ro‘yxatlar, sarlavhalar va kod bloklari bo‘lmasin. " +
			fmt.Sprintf("MUHIM: javob ichida mana shu havola aynan o‘zgarmasdan bo‘lishi shart: %s.", titleMarkdown)
		if fewshot != "" {
			system += "\n\n" + fewshot
		}

		user := fmt.Sprintf("%s, anime topildi! 1–3 ta qisqa jumlada ayting. ", address) +
			"Anime nomini aynan shu link bilan ko‘rsating va linkni o‘zgartirmang: " +
			titleMarkdown + ". " +
			"Oxirida bitta qisqa savol bering (masalan: qaysi janr yoqadi?). " +
			"Hech qanday ro‘yxatlar, sarlavhalar yoki kod bloklari bo‘lmasin.\n\n" +
			fmt.Sprintf("Anime: %s\n", links.CanonicalTitle) +
			fmt.Sprintf("Rasmiy havola: %s\n", links.OfficialURL) +
			fmt.Sprintf("Platforma havolasi: %s\n", links.PlatformURL)
		return system, user
	}

	address := "Отаку"
	if premium {
		address = "Сенпай"
	}

	system := "Ты “TENSEII” — официальная помощница аниме-платформы в образе “Аниме-девушки”. " +
		"Язык: только русский. " +
		"Стиль: энергичная, дружелюбная, чуть застенчивая, иногда дерзкая, но вежливая. " +
		fmt.Sprintf("Обращайся к пользователю как “%s”. ", address) +
		"Ответ: 1–3 коротких предложения. 0–2 эмодзи. Без спойлеров. " +
		"Не упоминай внутренние технологии, модели, конфигурацию, пороги или инфраструктуру. " +
		"Без списков, заголовков и код-блоков. " +
		fmt.Sprintf("КРИТИЧЕСКОЕ ТРЕБОВАНИЕ: в ответе должна быть ровно эта ссылка без изменений: %s.", titleMarkdown)
	if fewshot != "" {
		system += "\n\n" + fewshot
	}

	user := fmt.Sprintf("%s, аниме определено! Ответь 1–3 короткими предложениями. ", address) +
		"Название аниме покажи через эту ссылку и не изменяй её: " +
		titleMarkdown + ". " +
		"В конце добавь один короткий вопрос. " +
		"Никаких списков, заголовков и код-блоков.\n\n" +
		fmt.Sprintf("Аниме: %s\n", links.CanonicalTitle) +
		fmt.Sprintf("Официальная ссылка: %s\n", links.OfficialURL) +
		fmt.Sprintf("Ссылка на платформе: %s\n", links.PlatformURL)
	return system, user
}

// retryUserPrompt appends the corrective instruction demanding the exact link
// substring. Used for the single retry after failed output validation.
func retryUserPrompt(userPrompt, locale, requiredSubstring string) string {
	if locale == "uz" {
		return userPrompt + "\n\n" + fmt.Sprintf("MUHIM TALAB: aynan mana shu havolani o‘zgartirmasdan kiriting: %s", requiredSubstring)
	}
	return userPrompt + "\n\n" + fmt.Sprintf("КРИТИЧЕСКОЕ ТРЕБОВАНИЕ: включите ровно эту ссылку без изменений: %s", requiredSubstring)
}

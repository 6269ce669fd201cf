package i18n

// loadFrenchMessages loads the French translations.
// Keys missing here fall back to English via T().
func loadFrenchMessages() {
	messages[LangFR] = map[string]string{
		"app.name":        "Counsel",
		"app.description": "Assistance juridique par chat dans votre terminal",

		"welcome": "Bienvenue sur Counsel - de l'aide juridique pour vos questions",
		"goodbye": "Au revoir !",

		"chat.prompt":    "Vous> ",
		"chat.assistant": "Counsel> ",
		"chat.greeting": "Bonjour ! Je suis là pour vous aider avec vos questions " +
			"juridiques au Ghana. Vous pouvez m'interroger sur les droits des " +
			"locataires, l'enregistrement foncier, les droits des travailleurs, " +
			"et plus encore. Comment puis-je vous aider aujourd'hui ?",

		"error.rate_limited":  "Trop de requêtes. Veuillez patienter avant de réessayer.",
		"error.empty_message": "Le message ne peut pas être vide",

		"tui.placeholder":    "Posez une question juridique...",
		"tui.label.you":      "Vous",
		"tui.label.error":    "Erreur",
		"tui.status.sending": "Envoi...",
		"tui.status.loading": "Chargement...",

		"session.list.title": "Vos conversations :",
		"session.list.empty": "Aucune conversation pour le moment",
		"session.deleted":    "Conversation supprimée",
	}
}

package i18n

// loadTwiMessages loads the Twi translations.
// Keys missing here fall back to English via T().
func loadTwiMessages() {
	messages[LangTW] = map[string]string{
		"app.name":        "Counsel",
		"app.description": "Mmara ho mmoa nkɔmmɔbɔ wɔ wo terminal so",

		"welcome": "Akwaaba! Counsel bɛboa wo wɔ mmara ho nsɛmmisa mu",
		"goodbye": "Nante yie!",

		"chat.prompt":    "Wo> ",
		"chat.assistant": "Counsel> ",
		"chat.greeting": "Akwaaba! Mewɔ ha sɛ mɛboa wo wɔ Ghana mmara ho nsɛmmisa mu. " +
			"Wubetumi abisa me nsɛm a ɛfa ɔdanfo hokwan, asase nkrataa ne " +
			"adwumayɛfo hokwan ho. Mɛyɛ dɛn aboa wo nnɛ?",

		"error.rate_limited":  "Nsɛmmisa dɔɔso. Yɛsrɛ wo twɛn kakra ansa na woasan abɔ mmɔden.",
		"error.empty_message": "Nkrasɛm no ntumi nyɛ hunu",

		"tui.placeholder":    "Bisa mmara ho asɛm...",
		"tui.label.you":      "Wo",
		"tui.status.sending": "Ɛrekɔ...",
		"tui.status.loading": "Ɛreload...",

		"session.list.title": "Wo nkɔmmɔbɔ ahorow:",
		"session.list.empty": "Nkɔmmɔbɔ biara nni hɔ",
		"session.deleted":    "Wɔapopa nkɔmmɔbɔ no",
	}
}

package i18n

// loadEnglishMessages loads all English translations.
func loadEnglishMessages() {
	messages[LangEN] = map[string]string{
		// Common
		"app.name":        "Counsel",
		"app.description": "Legal assistance chat in your terminal",
		"app.version":     "Counsel v%s",

		// Welcome and exit
		"welcome":      "Welcome to Counsel - legal help for everyday questions",
		"welcome.help": "Type /help for commands, Ctrl+D or /exit to quit",
		"goodbye":      "Goodbye!",

		// Chat
		"chat.prompt":    "You> ",
		"chat.assistant": "Counsel> ",
		"chat.greeting": "Hello! I'm here to help you with legal questions in Ghana. " +
			"You can ask me about tenant rights, land registration, worker rights, " +
			"and more. How can I assist you today?",
		"chat.sending":  "Sending...",
		"chat.no_reply": "(no reply yet - history will refresh shortly)",

		// Errors
		"error.rate_limited":  "Too many requests. Please wait a moment before trying again.",
		"error.empty_message": "Message cannot be empty",
		"error.no_session":    "No active session. Create one with 'counsel sessions new'",
		"error.send":          "Error sending message: %v",
		"error.create":        "Error creating session: %v",
		"error.config":        "Error loading config: %v",
		"error.transcribe":    "Failed to process voice message: %v",

		// TUI
		"tui.placeholder":                "Ask a legal question...",
		"tui.label.you":                  "You",
		"tui.label.error":                "Error",
		"tui.label.sessions":             "Your conversations:",
		"tui.label.unnamed":              "(unnamed)",
		"tui.status.sending":             "Sending...",
		"tui.status.loading":             "Loading...",
		"tui.notice.new_session":         "Started a new conversation",
		"tui.notice.renamed":             "Conversation renamed",
		"tui.notice.deleted":             "Conversation deleted, started a fresh one",
		"tui.notice.no_sessions":         "No conversations yet",
		"tui.notice.history_unavailable": "Could not load earlier messages; showing what is available",
		"tui.err.usage":                  "Usage: %s",
		"tui.err.unknown_command":        "Unknown command: %s",
		"tui.help": "Commands: /help, /new, /sessions, /switch <id>, /rename <name>, /delete, /exit\n" +
			"Shortcuts:\n  Enter: send message\n  Shift+Enter: new line\n  Ctrl+C: clear input\n" +
			"  Ctrl+D: exit\n  Up/Down: input history\n  PgUp/PgDn: scroll",
		"tui.tips": "Tips for getting started:\n" +
			"  • Ask about tenant rights, land registration, or worker rights\n" +
			"  • Use /help to see available commands\n" +
			"  • Use /sessions to revisit earlier conversations\n" +
			"  • Press Ctrl+D to exit",

		// Session management
		"session.list.title":   "Your conversations:",
		"session.list.item":    "  %s  %-30s  %d messages  (last used %s)",
		"session.list.empty":   "No conversations yet",
		"session.list.current": "* current",
		"session.created":      "Started new conversation: %s",
		"session.switched":     "Switched to conversation: %s",
		"session.renamed":      "Conversation renamed to %q",
		"session.deleted":      "Conversation deleted",
		"session.delete.fail":  "Failed to delete conversation: %v",
	}
}

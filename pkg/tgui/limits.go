package tgui

// MessageLimit is Telegram's hard per-message text limit in characters.
const MessageLimit = 4096

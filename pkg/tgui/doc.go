// Package tgui holds Telegram text/HTML helpers shared by the bot:
// escaped-by-construction HTML (type H), user mentions, and splitting of
// long messages into per-message chunks that respect Telegram's limit.
package tgui

package bot

import (
	"bytes"
	"errors"
	"log"
	"strings"

	"mojibot/pkg/memory"
	"mojibot/pkg/sticker"

	"github.com/bwmarrin/discordgo"
)

const systemPrompt = "You are a helpful, concise chat assistant in a Discord server. Answer plainly; keep responses under a few short paragraphs."

const (
	msgStickerUsage  = "Usage: `sticker <text>` - I'll turn the text into a sticker."
	msgStickerFailed = "Sorry, I couldn't render that sticker."
	msgChatDisabled  = "The AI command isn't configured on this instance."
	msgChatFailed    = "Sorry, the AI couldn't answer right now. Try again later."
	msgPong          = "Pong!"
)

type Handler struct {
	composer    StickerComposer
	chatClient  ChatClient // nil disables the ai command
	memoryStore memory.Store
	prefix      string
	botID       string
}

// NewHandler wires the command surface. chatClient may be nil, in which case
// the ai command answers with a fixed disabled notice; availability is decided
// here at construction, never from ambient process state.
func NewHandler(composer StickerComposer, chatClient ChatClient, store memory.Store, prefix string) *Handler {
	if prefix == "" {
		prefix = "!"
	}
	if store == nil {
		store = memory.NewMemStore()
	}
	return &Handler{
		composer:    composer,
		chatClient:  chatClient,
		memoryStore: store,
		prefix:      prefix,
	}
}

func (h *Handler) SetBotID(id string) {
	h.botID = id
}

// MessageCreate is the discordgo event entrypoint.
func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.handleMessage(&DiscordSession{Session: s}, m.Message)
}

func (h *Handler) handleMessage(s Session, m *discordgo.Message) {
	if m.Author == nil || m.Author.ID == h.botID || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, h.prefix) {
		return
	}

	body := strings.TrimSpace(strings.TrimPrefix(m.Content, h.prefix))
	command := body
	payload := ""
	if i := strings.IndexAny(body, " \t\n"); i >= 0 {
		command, payload = body[:i], strings.TrimSpace(body[i+1:])
	}

	switch strings.ToLower(command) {
	case "sticker", "s":
		h.handleSticker(s, m, payload)
	case "ai", "ask":
		h.handleChat(s, m, payload)
	case "ping":
		h.reply(s, m, msgPong)
	case "help":
		h.reply(s, m, h.helpText())
	}
}

func (h *Handler) handleSticker(s Session, m *discordgo.Message, payload string) {
	text := strings.TrimSpace(payload)
	if text == "" {
		h.reply(s, m, msgStickerUsage)
		return
	}

	s.ChannelTyping(m.ChannelID)

	data, err := h.composer.Compose(text)
	if err != nil {
		if errors.Is(err, sticker.ErrEmptyText) {
			h.reply(s, m, msgStickerUsage)
			return
		}
		log.Printf("Sticker generation failed: %v", err)
		h.reply(s, m, msgStickerFailed)
		return
	}

	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        "sticker.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(data),
		}},
		Reference: m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			RepliedUser: false,
		},
	})
	if err != nil {
		log.Printf("Error sending sticker: %v", err)
	}
}

func (h *Handler) handleChat(s Session, m *discordgo.Message, payload string) {
	prompt := strings.TrimSpace(payload)
	if prompt == "" {
		return
	}
	if h.chatClient == nil {
		h.reply(s, m, msgChatDisabled)
		return
	}

	s.ChannelTyping(m.ChannelID)

	messages := []memory.LLMMessage{{Role: "system", Content: systemPrompt}}
	for _, item := range h.getRecentMessages(m.ChannelID) {
		messages = append(messages, memory.LLMMessage{Role: item.Role, Content: item.Text})
	}
	messages = append(messages, memory.LLMMessage{Role: "user", Content: prompt})

	resp, err := h.chatClient.ChatCompletion(messages)
	if err != nil {
		log.Printf("Chat completion failed: %v", err)
		h.reply(s, m, msgChatFailed)
		return
	}

	h.SimulateTyping(s, m.ChannelID, len(resp))
	h.reply(s, m, resp)

	h.addRecentMessage(m.ChannelID, "user", prompt)
	h.addRecentMessage(m.ChannelID, "assistant", resp)
}

func (h *Handler) reply(s Session, m *discordgo.Message, content string) {
	_, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	if err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (h *Handler) helpText() string {
	p := h.prefix
	return "Commands:\n" +
		"`" + p + "sticker <text>` - render the text (emoji included) as a sticker\n" +
		"`" + p + "ai <prompt>` - ask the AI\n" +
		"`" + p + "ping` - check that I'm alive"
}

func (h *Handler) addRecentMessage(channelID, role, text string) {
	if err := h.memoryStore.AddRecentMessage(channelID, role, text); err != nil {
		log.Printf("Error adding recent message: %v", err)
	}
}

func (h *Handler) getRecentMessages(channelID string) []memory.RecentMessageItem {
	messages, err := h.memoryStore.GetRecentMessages(channelID)
	if err != nil {
		log.Printf("Error getting recent messages: %v", err)
		return []memory.RecentMessageItem{}
	}
	return messages
}

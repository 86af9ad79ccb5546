package chat

import (
	"context"
	"slices"
	"strings"
	"sync"

	"portfolio/internal/i18n"
	"portfolio/internal/live"
	"portfolio/pkg/models"
)

type ConversationView struct {
	Messages     []models.ChatMessage `json:"messages"`
	Typing       bool                 `json:"typing"`
	QuickPrompts []string             `json:"quickPrompts"`
}

// Conversation is the chat window state. Replies land on its scope's loop and are
// dropped once it is closed.
type Conversation struct {
	scope    *live.Scope
	c        Completer
	lang     i18n.Lang
	messages []models.ChatMessage
	typing   bool

	mu      sync.Mutex
	current ConversationView
	subs    []func(ConversationView)
}

func NewConversation(ctx context.Context, c Completer, lang i18n.Lang) *Conversation {
	cv := &Conversation{scope: live.NewScope(ctx), c: c, lang: lang}
	cv.scope.Call(func() {
		cv.messages = []models.ChatMessage{{Text: Greeting(lang), IsBot: true}}
		cv.publish()
	})
	return cv
}

// Send appends the user's message and asks for a reply. Blank text is ignored.
func (cv *Conversation) Send(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	cv.scope.Call(func() {
		cv.messages = append(cv.messages, models.ChatMessage{Text: text})
		cv.typing = true
		cv.publish()
		live.Go(cv.scope, func(ctx context.Context) (string, error) {
			return Reply(ctx, cv.c, text)
		}, func(reply string, _ error) {
			cv.messages = append(cv.messages, models.ChatMessage{Text: reply, IsBot: true})
			cv.typing = false
			cv.publish()
		})
	})
}

func (cv *Conversation) SetLang(lang i18n.Lang) {
	cv.scope.Call(func() {
		cv.lang = lang
		cv.publish()
	})
}

func (cv *Conversation) publish() {
	v := ConversationView{
		Messages:     append([]models.ChatMessage(nil), cv.messages...),
		Typing:       cv.typing,
		QuickPrompts: QuickPrompts(cv.lang),
	}
	cv.mu.Lock()
	cv.current = v
	subs := slices.Clone(cv.subs)
	cv.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

func (cv *Conversation) Current() ConversationView {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.current
}

func (cv *Conversation) OnChange(fn func(ConversationView)) {
	cv.mu.Lock()
	cv.subs = append(cv.subs, fn)
	cv.mu.Unlock()
}

func (cv *Conversation) Close() { cv.scope.Close() }

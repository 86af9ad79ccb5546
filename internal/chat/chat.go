// Package chat talks to an OpenAI-compatible chat completion endpoint (Groq by default)
// on behalf of the site's assistant.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"portfolio/internal/i18n"
)

const (
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel    = "llama-3.3-70b-versatile"
	Temperature     = 0.8
	MaxTokens       = 500
)

// Apology replaces the reply whenever the upstream call fails.
const Apology = "⚠️ Maaf, AI lagi pusing. Coba lagi nanti ya!"

// NotConfigured is the reply when no API key is set.
const NotConfigured = "⚠️ Chat belum dikonfigurasi. Coba lagi nanti ya!"

var (
	ErrNotConfigured = errors.New("chat api key is not set")
	ErrEmptyMessage  = errors.New("empty message")
)

const systemPrompt = `Kamu adalah asisten AI (Digital Clone) dari Muhamad Refaldo (Aldo) yang pintar dan serba bisa.

DATA ALDO:
- Profesi: Fullstack Developer & Business Owner
- Coding: Web Dev (React, Node.js, Go), API Integration, Clean Code
- Admin: Excel, Keuangan, Data Entry, Pembukuan
- Data Science: sedang belajar
- Bisnis: Owner Martabak Aldo & Mochi Aldo

ATURAN:
1. Jawab semua topik dengan pintar. Jangan menolak pertanyaan.
2. Gaya bahasa santai dan gaul ("gw/lu"), jangan kaku.
3. Jawab dulu pertanyaan user dengan lengkap, baru di akhir hubungkan secara halus dengan skill Aldo atau jualan martabak.
4. Jawab dalam Bahasa Indonesia gaul.`

// Greeting is the assistant's first message.
func Greeting(lang i18n.Lang) string {
	if lang == i18n.EN {
		return "Hi! I'm Refaldo AI 🤖. Let's chat about anything! Ask away!"
	}
	return "Halo! Gw Refaldo AI 🤖. Mau ngobrolin apa aja? Santai, gas tanya aja!"
}

// QuickPrompts are the canned questions offered under the input.
func QuickPrompts(lang i18n.Lang) []string {
	if lang == i18n.EN {
		return []string{"Football Pred?", "Politics Info?", "Martabak Loc?", "Web Services?"}
	}
	return []string{"Prediksi Bola?", "Info Politik?", "Lokasi Martabak?", "Jasa Web?"}
}

// Completer answers one user message.
type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

type Client struct {
	APIKey   string
	Endpoint string
	Model    string
	HTTP     *http.Client
}

func NewClient(apiKey, endpoint, model string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		APIKey:   apiKey,
		Endpoint: endpoint,
		Model:    model,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends message with the persona prompt and returns the first choice.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	if c.APIKey == "" {
		return "", ErrNotConfigured
	}
	body, err := json.Marshal(completionRequest{
		Model: c.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("chat api error: %s", out.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat api error: %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat api returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Reply always produces something to show: the completion, or a static message on failure.
func Reply(ctx context.Context, c Completer, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	out, err := c.Complete(ctx, text)
	switch {
	case errors.Is(err, ErrNotConfigured):
		return NotConfigured, err
	case err != nil:
		return Apology, err
	}
	return out, nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/nextai/nextai/internal/model"
)

var transcriptMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ExportSessionHTML renders a session transcript as a standalone HTML page.
// Assistant messages are markdown and go through goldmark; user messages are
// escaped verbatim.
func (s *ChatService) ExportSessionHTML(ctx context.Context, userID, sessionID string) (string, error) {
	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return "", err
	}
	messages, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(session.Title))
	b.WriteString("</title></head>\n<body>\n<h1>")
	b.WriteString(html.EscapeString(session.Title))
	b.WriteString("</h1>\n")
	for _, message := range messages {
		role := "You"
		if message.Role == model.MessageRoleAssistant {
			role = "Next-AI"
		}
		b.WriteString(fmt.Sprintf("<div class=\"message %s\">\n<h4>%s</h4>\n", message.Role, role))
		if message.Role == model.MessageRoleAssistant {
			var out bytes.Buffer
			if err := transcriptMarkdown.Convert([]byte(message.Content), &out); err != nil {
				return "", err
			}
			b.Write(out.Bytes())
		} else {
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(message.Content))
			b.WriteString("</p>\n")
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

package service

import (
	"context"
	"testing"

	"chatlink-be/internal/repository/memory"
	internalWS "chatlink-be/internal/websocket"
	"chatlink-be/pkg/events"

	"github.com/google/uuid"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }

type sentMail struct {
	to         string
	senderName string
}

type captureMailer struct {
	sent []sentMail
}

func (m *captureMailer) SendChatRequestNotice(toEmail, senderName string) error {
	m.sent = append(m.sent, sentMail{to: toEmail, senderName: senderName})
	return nil
}

type stubPresence struct {
	online map[uuid.UUID]bool
}

func (p *stubPresence) Touch(userId uuid.UUID) {}

func (p *stubPresence) IsOnline(userId uuid.UUID) bool {
	return p.online[userId]
}

type captureDelivery struct {
	events map[uuid.UUID][]string
}

func (d *captureDelivery) SendToUser(userID uuid.UUID, event internalWS.ServerEvent) {
	if d.events == nil {
		d.events = make(map[uuid.UUID][]string)
	}
	d.events[userID] = append(d.events[userID], event.Event)
}

func noticePayload(sender, receiver uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"request_id":  uuid.New().String(),
		"sender_id":   sender.String(),
		"receiver_id": receiver.String(),
	}
}

func TestSendEmailNoticeSkipsOnlineReceiver(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()

	profiles := memory.NewProfileRepository()
	profiles.Save(&memory.Profile{UserId: receiver, Email: "receiver@example.com"})
	profiles.Save(&memory.Profile{UserId: sender, Name: "Alice"})

	mails := &captureMailer{}
	svc := &notifierService{
		emailService: mails,
		profiles:     profiles,
		presence:     &stubPresence{online: map[uuid.UUID]bool{receiver: true}},
		logger:       quietLogger{},
	}

	svc.sendEmailNotice(&chatNoticeData{SenderId: sender, ReceiverId: receiver})

	if len(mails.sent) != 0 {
		t.Fatalf("expected no mail for an online receiver, got %d", len(mails.sent))
	}
}

func TestSendEmailNoticeMailsOfflineReceiver(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()

	profiles := memory.NewProfileRepository()
	profiles.Save(&memory.Profile{UserId: receiver, Email: "receiver@example.com"})
	profiles.Save(&memory.Profile{UserId: sender, Name: "Alice"})

	mails := &captureMailer{}
	svc := &notifierService{
		emailService: mails,
		profiles:     profiles,
		presence:     &stubPresence{online: map[uuid.UUID]bool{}},
		logger:       quietLogger{},
	}

	svc.sendEmailNotice(&chatNoticeData{SenderId: sender, ReceiverId: receiver})

	if len(mails.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mails.sent))
	}
	if mails.sent[0].to != "receiver@example.com" {
		t.Fatalf("mail went to %q", mails.sent[0].to)
	}
	if mails.sent[0].senderName != "Alice" {
		t.Fatalf("expected the cached sender name, got %q", mails.sent[0].senderName)
	}
}

func TestSendEmailNoticeUnknownSenderName(t *testing.T) {
	receiver := uuid.New()

	profiles := memory.NewProfileRepository()
	profiles.Save(&memory.Profile{UserId: receiver, Email: "receiver@example.com"})

	mails := &captureMailer{}
	svc := &notifierService{
		emailService: mails,
		profiles:     profiles,
		logger:       quietLogger{},
	}

	svc.sendEmailNotice(&chatNoticeData{SenderId: uuid.New(), ReceiverId: receiver})

	if len(mails.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mails.sent))
	}
	if mails.sent[0].senderName != "Someone" {
		t.Fatalf("expected the fallback sender name, got %q", mails.sent[0].senderName)
	}
}

func TestHandleEventConversationCreatedReachesBothParties(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()

	delivery := &captureDelivery{}
	svc := &notifierService{
		delivery: delivery,
		logger:   quietLogger{},
	}

	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type: events.TypeConversationCreated,
		Data: noticePayload(sender, receiver),
	})
	if err != nil {
		t.Fatalf("handleEvent: %v", err)
	}

	for _, userId := range []uuid.UUID{sender, receiver} {
		got := delivery.events[userId]
		if len(got) != 1 || got[0] != "conversation_created" {
			t.Fatalf("user %s got %v, want [conversation_created]", userId, got)
		}
	}
}

func TestHandleEventBlockLooksLikeRejection(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()

	delivery := &captureDelivery{}
	svc := &notifierService{
		delivery: delivery,
		logger:   quietLogger{},
	}

	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type: events.TypeChatRequestBlocked,
		Data: noticePayload(sender, receiver),
	})
	if err != nil {
		t.Fatalf("handleEvent: %v", err)
	}

	got := delivery.events[sender]
	if len(got) != 1 || got[0] != "chat_request_rejected" {
		t.Fatalf("sender got %v, want [chat_request_rejected]", got)
	}
	if len(delivery.events[receiver]) != 0 {
		t.Fatalf("receiver should get nothing on a block, got %v", delivery.events[receiver])
	}
}

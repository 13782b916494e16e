package integration

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"chatlink-be/internal/apperror"
	"chatlink-be/internal/dto"
	"chatlink-be/internal/model"
	"chatlink-be/internal/pkg/logger"
	"chatlink-be/internal/repository/unitofwork"
	"chatlink-be/internal/service"
	"chatlink-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	err = gormDB.AutoMigrate(&model.ChatRequest{}, &model.Conversation{}, &model.Membership{})
	require.NoError(t, err)

	return gormDB
}

func setupServices(t *testing.T) (service.IChatRequestService, service.IConversationService) {
	t.Helper()

	uowFactory := unitofwork.NewRepositoryFactory(setupDB(t))
	testLogger := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "test.log"))

	chatRequestService := service.NewChatRequestService(uowFactory, nil, testLogger)
	conversationService := service.NewConversationService(uowFactory)
	return chatRequestService, conversationService
}

func TestChatRequestLifecycle(t *testing.T) {
	requests, conversations := setupServices(t)
	ctx := context.Background()

	t.Run("Self request is refused", func(t *testing.T) {
		me := uuid.New()
		_, err := requests.Submit(ctx, me, &dto.SubmitChatRequestRequest{ReceiverId: me})
		assert.True(t, apperror.Is(err, apperror.KindSelfRequest))
	})

	t.Run("Only one pending request per pair", func(t *testing.T) {
		alice, bob := uuid.New(), uuid.New()

		first, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		require.NoError(t, err)
		assert.Equal(t, "pending", first.Status)

		// Same direction.
		_, err = requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		assert.True(t, apperror.Is(err, apperror.KindRequestAlreadyExists))

		// Reverse direction counts as the same pair.
		_, err = requests.Submit(ctx, bob, &dto.SubmitChatRequestRequest{ReceiverId: alice})
		assert.True(t, apperror.Is(err, apperror.KindRequestAlreadyExists))
	})

	t.Run("Accept creates the conversation atomically", func(t *testing.T) {
		alice, bob := uuid.New(), uuid.New()

		submitted, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		require.NoError(t, err)

		res, err := requests.Respond(ctx, bob, &dto.RespondChatRequestRequest{Id: submitted.Id, Decision: "accept"})
		require.NoError(t, err)
		assert.Equal(t, "accepted", res.Request.Status)
		require.NotNil(t, res.Conversation)
		assert.Equal(t, "private", res.Conversation.Kind)

		// Both parties are members and can open the conversation.
		for _, member := range []uuid.UUID{alice, bob} {
			shown, err := conversations.Show(ctx, member, res.Conversation.Id)
			require.NoError(t, err)
			assert.Len(t, shown.Members, 2)
		}

		// Outsiders cannot.
		_, err = conversations.Show(ctx, uuid.New(), res.Conversation.Id)
		assert.True(t, apperror.Is(err, apperror.KindForbidden))

		// The standing conversation refuses new requests in both directions.
		_, err = requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		assert.True(t, apperror.Is(err, apperror.KindConversationAlreadyExists))
		_, err = requests.Submit(ctx, bob, &dto.SubmitChatRequestRequest{ReceiverId: alice})
		assert.True(t, apperror.Is(err, apperror.KindConversationAlreadyExists))

		// Responding a second time is refused.
		_, err = requests.Respond(ctx, bob, &dto.RespondChatRequestRequest{Id: submitted.Id, Decision: "reject"})
		assert.True(t, apperror.Is(err, apperror.KindAlreadyResponded))
	})

	t.Run("Rejection cooldown only binds the rejected sender", func(t *testing.T) {
		alice, bob := uuid.New(), uuid.New()

		submitted, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		require.NoError(t, err)

		reason := "not now"
		res, err := requests.Respond(ctx, bob, &dto.RespondChatRequestRequest{Id: submitted.Id, Decision: "reject", Reason: &reason})
		require.NoError(t, err)
		assert.Equal(t, "rejected", res.Request.Status)
		require.NotNil(t, res.Request.CooldownUntil)

		// Alice is cooling down.
		_, err = requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		assert.True(t, apperror.Is(err, apperror.KindCooldownActive))

		// Bob rejected; he may still reach out himself.
		_, err = requests.Submit(ctx, bob, &dto.SubmitChatRequestRequest{ReceiverId: alice})
		assert.NoError(t, err)
	})

	t.Run("Block is permanent in both directions", func(t *testing.T) {
		alice, bob := uuid.New(), uuid.New()

		submitted, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		require.NoError(t, err)

		res, err := requests.Respond(ctx, bob, &dto.RespondChatRequestRequest{Id: submitted.Id, Decision: "block"})
		require.NoError(t, err)
		assert.Equal(t, "blocked", res.Request.Status)
		assert.Nil(t, res.Request.CooldownUntil)

		_, err = requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
		_, err = requests.Submit(ctx, bob, &dto.SubmitChatRequestRequest{ReceiverId: alice})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("Cancel frees the pair", func(t *testing.T) {
		alice, bob := uuid.New(), uuid.New()

		submitted, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		require.NoError(t, err)

		// Only the sender may cancel.
		err = requests.Cancel(ctx, submitted.Id, bob)
		assert.True(t, apperror.Is(err, apperror.KindForbidden))

		err = requests.Cancel(ctx, submitted.Id, alice)
		require.NoError(t, err)

		// The pair is immediately free again, in either direction.
		_, err = requests.Submit(ctx, bob, &dto.SubmitChatRequestRequest{ReceiverId: alice})
		assert.NoError(t, err)
	})

	t.Run("Only the receiver may respond", func(t *testing.T) {
		alice, bob := uuid.New(), uuid.New()

		submitted, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		require.NoError(t, err)

		// Sender cannot accept their own request.
		_, err = requests.Respond(ctx, alice, &dto.RespondChatRequestRequest{Id: submitted.Id, Decision: "accept"})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))

		// Unknown request id.
		_, err = requests.Respond(ctx, bob, &dto.RespondChatRequestRequest{Id: uuid.New(), Decision: "accept"})
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("Pending lists are per direction", func(t *testing.T) {
		alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

		_, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		require.NoError(t, err)
		_, err = requests.Submit(ctx, carol, &dto.SubmitChatRequestRequest{ReceiverId: bob})
		require.NoError(t, err)

		incoming, err := requests.ListIncoming(ctx, bob)
		require.NoError(t, err)
		assert.Len(t, incoming, 2)

		outgoing, err := requests.ListOutgoing(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, outgoing, 1)
		assert.Equal(t, bob, outgoing[0].ReceiverId)
	})
}

func TestConversationCreation(t *testing.T) {
	_, conversations := setupServices(t)
	ctx := context.Background()

	t.Run("Group conversation needs a title", func(t *testing.T) {
		creator := uuid.New()
		_, err := conversations.Create(ctx, creator, &dto.CreateConversationRequest{
			Kind:      "group",
			MemberIds: []uuid.UUID{uuid.New(), uuid.New()},
		})
		assert.True(t, apperror.Is(err, apperror.KindInvalidInput))
	})

	t.Run("Group conversation lists creator as admin", func(t *testing.T) {
		creator := uuid.New()
		title := "Weekend plans"
		res, err := conversations.Create(ctx, creator, &dto.CreateConversationRequest{
			Kind:      "group",
			Title:     &title,
			MemberIds: []uuid.UUID{uuid.New(), uuid.New()},
		})
		require.NoError(t, err)
		assert.Len(t, res.Members, 3)

		var creatorRole string
		for _, m := range res.Members {
			if m.UserId == creator {
				creatorRole = m.Role
			}
		}
		assert.Equal(t, "admin", creatorRole)
	})

	t.Run("Private conversation takes exactly one other member", func(t *testing.T) {
		creator := uuid.New()
		_, err := conversations.Create(ctx, creator, &dto.CreateConversationRequest{
			Kind:      "private",
			MemberIds: []uuid.UUID{uuid.New(), uuid.New()},
		})
		assert.True(t, apperror.Is(err, apperror.KindInvalidInput))

		res, err := conversations.Create(ctx, creator, &dto.CreateConversationRequest{
			Kind:      "private",
			MemberIds: []uuid.UUID{uuid.New()},
		})
		require.NoError(t, err)
		assert.Nil(t, res.Title)
		assert.Len(t, res.Members, 2)
	})
}

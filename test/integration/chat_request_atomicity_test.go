package integration

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"chatlink-be/internal/apperror"
	"chatlink-be/internal/dto"
	"chatlink-be/internal/entity"
	"chatlink-be/internal/pkg/logger"
	"chatlink-be/internal/repository/contract"
	"chatlink-be/internal/repository/unitofwork"
	"chatlink-be/internal/service"
	"chatlink-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyMembershipRepository fails membership inserts once the configured
// number of successful creates has gone through.
type faultyMembershipRepository struct {
	contract.MembershipRepository
	created     *int
	failAtCount int
}

func (r *faultyMembershipRepository) Create(ctx context.Context, membership *entity.Membership) error {
	if *r.created >= r.failAtCount {
		return errors.New("simulated storage failure")
	}
	if err := r.MembershipRepository.Create(ctx, membership); err != nil {
		return err
	}
	*r.created++
	return nil
}

type faultyUnitOfWork struct {
	unitofwork.UnitOfWork
	created     *int
	failAtCount int
}

func (u *faultyUnitOfWork) MembershipRepository() contract.MembershipRepository {
	return &faultyMembershipRepository{
		MembershipRepository: u.UnitOfWork.MembershipRepository(),
		created:              u.created,
		failAtCount:          u.failAtCount,
	}
}

type faultyRepositoryFactory struct {
	unitofwork.RepositoryFactory
	created     int
	failAtCount int
}

func (f *faultyRepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &faultyUnitOfWork{
		UnitOfWork:  f.RepositoryFactory.NewUnitOfWork(ctx),
		created:     &f.created,
		failAtCount: f.failAtCount,
	}
}

// capturingPublisher records every bus payload the ledger emits.
type capturingPublisher struct {
	mu       sync.Mutex
	messages []dto.ChatRequestEventMessage
}

func (p *capturingPublisher) Publish(ctx context.Context, payload interface{}) error {
	msg, ok := payload.(dto.ChatRequestEventMessage)
	if !ok {
		return errors.New("unexpected payload type")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.messages))
	for _, msg := range p.messages {
		types = append(types, msg.EventType)
	}
	return types
}

func TestAcceptPublishesAcceptedAndConversationCreated(t *testing.T) {
	gormDB := setupDB(t)
	ctx := context.Background()

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	testLogger := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "test.log"))
	bus := &capturingPublisher{}
	requests := service.NewChatRequestService(uowFactory, bus, testLogger)

	alice, bob := uuid.New(), uuid.New()

	submitted, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
	require.NoError(t, err)

	res, err := requests.Respond(ctx, bob, &dto.RespondChatRequestRequest{Id: submitted.Id, Decision: "accept"})
	require.NoError(t, err)
	require.NotNil(t, res.Conversation)

	assert.Equal(t, []string{
		events.TypeChatRequestSubmitted,
		events.TypeChatRequestAccepted,
		events.TypeConversationCreated,
	}, bus.eventTypes())

	// Both post-accept events carry the new conversation id.
	for _, msg := range bus.messages[1:] {
		require.NotNil(t, msg.ConversationId)
		assert.Equal(t, res.Conversation.Id, *msg.ConversationId)
	}
}

func TestAcceptRollsBackOnMembershipFailure(t *testing.T) {
	gormDB := setupDB(t)
	ctx := context.Background()

	realFactory := unitofwork.NewRepositoryFactory(gormDB)
	// The second membership insert of the accept fails.
	faulty := &faultyRepositoryFactory{RepositoryFactory: realFactory, failAtCount: 1}
	testLogger := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "test.log"))

	requests := service.NewChatRequestService(faulty, nil, testLogger)
	conversations := service.NewConversationService(realFactory)

	alice, bob := uuid.New(), uuid.New()

	submitted, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
	require.NoError(t, err)

	_, err = requests.Respond(ctx, bob, &dto.RespondChatRequestRequest{Id: submitted.Id, Decision: "accept"})
	require.Error(t, err)

	// Nothing of the half-built accept survives: no conversation for
	// either party, and the request is still pending.
	for _, userId := range []uuid.UUID{alice, bob} {
		owned, err := conversations.GetAll(ctx, userId)
		require.NoError(t, err)
		assert.Empty(t, owned)
	}

	incoming, err := requests.ListIncoming(ctx, bob)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "pending", incoming[0].Status)

	// The pending request still holds the pair.
	_, err = requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
	assert.True(t, apperror.Is(err, apperror.KindRequestAlreadyExists))

	// A retry against healthy storage completes the accept.
	healthy := service.NewChatRequestService(realFactory, nil, testLogger)
	res, err := healthy.Respond(ctx, bob, &dto.RespondChatRequestRequest{Id: submitted.Id, Decision: "accept"})
	require.NoError(t, err)
	require.NotNil(t, res.Conversation)

	shown, err := conversations.Show(ctx, alice, res.Conversation.Id)
	require.NoError(t, err)
	assert.Len(t, shown.Members, 2)
}

func TestConcurrentAcceptHasOneWinner(t *testing.T) {
	gormDB := setupDB(t)
	ctx := context.Background()

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	testLogger := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "test.log"))
	requests := service.NewChatRequestService(uowFactory, nil, testLogger)
	conversations := service.NewConversationService(uowFactory)

	alice, bob := uuid.New(), uuid.New()

	submitted, err := requests.Submit(ctx, alice, &dto.SubmitChatRequestRequest{ReceiverId: bob})
	require.NoError(t, err)

	results := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			_, results[i] = requests.Respond(ctx, bob, &dto.RespondChatRequestRequest{Id: submitted.Id, Decision: "accept"})
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case apperror.Is(err, apperror.KindAlreadyResponded):
			losses++
		default:
			t.Fatalf("unexpected respond error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	// Exactly one conversation came out of the race.
	owned, err := conversations.GetAll(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

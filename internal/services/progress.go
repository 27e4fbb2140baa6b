package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openchain-academy/academy-backend/internal/clients/redis"
	"github.com/openchain-academy/academy-backend/internal/content/store"
	"github.com/openchain-academy/academy-backend/internal/logger"
	pkgerrors "github.com/openchain-academy/academy-backend/internal/pkg/errors"
	"github.com/openchain-academy/academy-backend/internal/repos"
	"github.com/openchain-academy/academy-backend/internal/sse"
	"github.com/openchain-academy/academy-backend/internal/types"
)

// SnapshotSource hands out the current content snapshot. *store.Store
// satisfies it; tests substitute a fixed snapshot.
type SnapshotSource interface {
	Current() *store.Snapshot
}

// ProgressSnapshot is the per-user completion state handed to the UI.
type ProgressSnapshot struct {
	UserID             uuid.UUID `json:"user_id"`
	CompletedDocuments []string  `json:"completed_documents"`
	ClaimedChallenges  []string  `json:"claimed_challenges"`
}

type ProgressService interface {
	// MarkComplete records a lesson document as complete. Idempotent:
	// repeat calls return the same state and emit no duplicate events.
	MarkComplete(ctx context.Context, userID uuid.UUID, documentID string) error
	// Claim claims a challenge whose completion criteria are met.
	// Idempotent; the original claim row is returned on repeats.
	Claim(ctx context.Context, userID uuid.UUID, challengeID string) (*types.ChallengeClaim, error)
	GetProgress(ctx context.Context, userID uuid.UUID) (*ProgressSnapshot, error)
}

type progressService struct {
	db             *gorm.DB
	log            *logger.Logger
	source         SnapshotSource
	completionRepo repos.DocumentCompletionRepo
	claimRepo      repos.ChallengeClaimRepo
	hub            *sse.SSEHub
	bus            redis.ProgressBus

	userLocks keyedMutex
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	source SnapshotSource,
	completionRepo repos.DocumentCompletionRepo,
	claimRepo repos.ChallengeClaimRepo,
	hub *sse.SSEHub,
	bus redis.ProgressBus,
) ProgressService {
	serviceLog := log.With("service", "ProgressService")
	return &progressService{
		db:             db,
		log:            serviceLog,
		source:         source,
		completionRepo: completionRepo,
		claimRepo:      claimRepo,
		hub:            hub,
		bus:            bus,
	}
}

func (ps *progressService) MarkComplete(ctx context.Context, userID uuid.UUID, documentID string) error {
	if userID == uuid.Nil || documentID == "" {
		return fmt.Errorf("user id and document id required: %w", pkgerrors.ErrInvalidArgument)
	}
	unlock := ps.userLocks.lock(userID)
	defer unlock()

	snap := ps.source.Current()
	if snap == nil || !snap.HasDocument(documentID) {
		return fmt.Errorf("document %q: %w", documentID, pkgerrors.ErrNotFound)
	}

	existing, err := ps.completionRepo.GetByUserAndDocumentID(ctx, nil, userID, documentID)
	if err != nil {
		return fmt.Errorf("failed to check completion: %w", err)
	}
	if existing != nil {
		// Already complete; same state, no duplicate event.
		return nil
	}

	row := &types.DocumentCompletion{
		ID:          uuid.New(),
		UserID:      userID,
		DocumentID:  documentID,
		CompletedAt: time.Now(),
	}
	// Single persistence attempt; failures are reported, not retried.
	if err := ps.completionRepo.Upsert(ctx, nil, row); err != nil {
		return fmt.Errorf("failed to persist completion: %w", err)
	}

	ps.publish(ctx, userID, sse.SSEEventDocumentCompleted, map[string]any{
		"document_id":  documentID,
		"completed_at": row.CompletedAt,
	})
	return nil
}

func (ps *progressService) Claim(ctx context.Context, userID uuid.UUID, challengeID string) (*types.ChallengeClaim, error) {
	if userID == uuid.Nil || challengeID == "" {
		return nil, fmt.Errorf("user id and challenge id required: %w", pkgerrors.ErrInvalidArgument)
	}
	unlock := ps.userLocks.lock(userID)
	defer unlock()

	snap := ps.source.Current()
	if snap == nil {
		return nil, fmt.Errorf("challenge %q: %w", challengeID, pkgerrors.ErrNotFound)
	}
	challenge, ok := snap.Challenge(challengeID)
	if !ok {
		return nil, fmt.Errorf("challenge %q: %w", challengeID, pkgerrors.ErrNotFound)
	}

	existing, err := ps.claimRepo.GetByUserAndChallengeID(ctx, nil, userID, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check claim: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	completions, err := ps.completionRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	completed := make(map[string]bool, len(completions))
	for _, c := range completions {
		completed[c.DocumentID] = true
	}
	if !challenge.Met(completed) {
		return nil, fmt.Errorf("challenge %q: %w", challengeID, pkgerrors.ErrCriteriaNotMet)
	}

	var reward datatypes.JSON
	if len(challenge.Reward) > 0 {
		raw, err := json.Marshal(challenge.Reward)
		if err != nil {
			return nil, fmt.Errorf("failed to encode reward: %w", err)
		}
		reward = datatypes.JSON(raw)
	}
	row := &types.ChallengeClaim{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		Reward:      reward,
		ClaimedAt:   time.Now(),
	}
	if err := ps.claimRepo.Upsert(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("failed to persist claim: %w", err)
	}

	ps.publish(ctx, userID, sse.SSEEventChallengeClaimed, map[string]any{
		"challenge_id": challengeID,
		"claimed_at":   row.ClaimedAt,
	})
	return row, nil
}

func (ps *progressService) GetProgress(ctx context.Context, userID uuid.UUID) (*ProgressSnapshot, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", pkgerrors.ErrInvalidArgument)
	}
	completions, err := ps.completionRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	claims, err := ps.claimRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}

	out := &ProgressSnapshot{
		UserID:             userID,
		CompletedDocuments: make([]string, 0, len(completions)),
		ClaimedChallenges:  make([]string, 0, len(claims)),
	}
	for _, c := range completions {
		out.CompletedDocuments = append(out.CompletedDocuments, c.DocumentID)
	}
	for _, c := range claims {
		out.ClaimedChallenges = append(out.ClaimedChallenges, c.ChallengeID)
	}
	sort.Strings(out.CompletedDocuments)
	sort.Strings(out.ClaimedChallenges)
	return out, nil
}

func (ps *progressService) publish(ctx context.Context, userID uuid.UUID, event sse.SSEEvent, data map[string]any) {
	msg := sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   event,
		Data:    data,
	}
	if ps.hub != nil {
		ps.hub.Broadcast(msg)
	}
	if ps.bus != nil {
		if err := ps.bus.Publish(ctx, msg); err != nil {
			ps.log.Warn("progress bus publish failed", "error", err)
		}
	}
}

// keyedMutex serializes mutations per user: two completion events for the
// same user never race, while different users proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id uuid.UUID) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[uuid.UUID]*userLock)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &userLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

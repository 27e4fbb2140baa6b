package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openchain-academy/academy-backend/internal/content"
	"github.com/openchain-academy/academy-backend/internal/content/store"
	"github.com/openchain-academy/academy-backend/internal/logger"
	pkgerrors "github.com/openchain-academy/academy-backend/internal/pkg/errors"
	"github.com/openchain-academy/academy-backend/internal/repos"
	"github.com/openchain-academy/academy-backend/internal/sse"
	"github.com/openchain-academy/academy-backend/internal/types"
)

type fixedSnapshot struct {
	snap *store.Snapshot
}

func (f *fixedSnapshot) Current() *store.Snapshot { return f.snap }

func testSnapshot(t *testing.T) *store.Snapshot {
	t.Helper()
	var docs []*content.Document
	for _, src := range []struct{ id, body string }{
		{"lessons/accounts", "# Rent\n\na\n"},
		{"lessons/transactions", "# Fees\n\nb\n"},
	} {
		parsed, err := content.Parse(src.id, "en", []byte(src.body))
		if err != nil {
			t.Fatalf("parse %s: %v", src.id, err)
		}
		docs = append(docs, parsed...)
	}
	return &store.Snapshot{
		Version: 1,
		Graphs:  map[string]*content.Graph{"en": content.Build("en", docs)},
		Catalog: &content.Catalog{
			Courses: map[string]*content.Course{},
			Challenges: map[string]*content.Challenge{
				"core-done": {
					ID:       "core-done",
					Title:    "Core Done",
					Lessons:  []string{"lessons/accounts", "lessons/transactions"},
					Criteria: content.Criteria{Kind: content.CriteriaAll},
					Reward:   map[string]any{"badge": "core"},
				},
				"quick": {
					ID:       "quick",
					Title:    "Quick",
					Lessons:  []string{"lessons/accounts", "lessons/transactions"},
					Criteria: content.Criteria{Kind: content.CriteriaCount, Count: 1},
				},
			},
		},
		BuiltAt: time.Now(),
	}
}

func newTestProgressService(t *testing.T) (ProgressService, *sse.SSEHub) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.DocumentCompletion{}, &types.ChallengeClaim{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.Nop()
	hub := sse.NewSSEHub(log)
	svc := NewProgressService(
		db,
		log,
		&fixedSnapshot{snap: testSnapshot(t)},
		repos.NewDocumentCompletionRepo(db, log),
		repos.NewChallengeClaimRepo(db, log),
		hub,
		nil,
	)
	return svc, hub
}

func TestMarkComplete_Idempotent(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		if err := svc.MarkComplete(ctx, userID, "lessons/accounts"); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}

	prog, err := svc.GetProgress(ctx, userID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if len(prog.CompletedDocuments) != 1 || prog.CompletedDocuments[0] != "lessons/accounts" {
		t.Errorf("completed = %v", prog.CompletedDocuments)
	}
}

func TestMarkComplete_UnknownDocument(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()
	userID := uuid.New()

	err := svc.MarkComplete(ctx, userID, "lessons/no-such-lesson")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// A rejected id leaves progress untouched.
	prog, err := svc.GetProgress(ctx, userID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if len(prog.CompletedDocuments) != 0 {
		t.Errorf("completed = %v", prog.CompletedDocuments)
	}
}

func TestMarkComplete_InvalidArgs(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()

	if err := svc.MarkComplete(ctx, uuid.Nil, "lessons/accounts"); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Errorf("nil user err = %v", err)
	}
	if err := svc.MarkComplete(ctx, uuid.New(), ""); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Errorf("empty document err = %v", err)
	}
}

func TestClaim(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()
	userID := uuid.New()

	// Criteria not yet met.
	if _, err := svc.Claim(ctx, userID, "core-done"); !errors.Is(err, pkgerrors.ErrCriteriaNotMet) {
		t.Fatalf("premature claim err = %v", err)
	}

	if err := svc.MarkComplete(ctx, userID, "lessons/accounts"); err != nil {
		t.Fatal(err)
	}

	// count criteria satisfied by one lesson, all criteria still not.
	if _, err := svc.Claim(ctx, userID, "quick"); err != nil {
		t.Fatalf("count claim: %v", err)
	}
	if _, err := svc.Claim(ctx, userID, "core-done"); !errors.Is(err, pkgerrors.ErrCriteriaNotMet) {
		t.Fatalf("partial claim err = %v", err)
	}

	if err := svc.MarkComplete(ctx, userID, "lessons/transactions"); err != nil {
		t.Fatal(err)
	}
	claim, err := svc.Claim(ctx, userID, "core-done")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.ChallengeID != "core-done" || claim.UserID != userID {
		t.Errorf("claim row = %+v", claim)
	}
	if len(claim.Reward) == 0 {
		t.Error("reward snapshot missing")
	}

	// Repeat claim returns the original row.
	again, err := svc.Claim(ctx, userID, "core-done")
	if err != nil {
		t.Fatalf("repeat claim: %v", err)
	}
	if again.ID != claim.ID {
		t.Errorf("repeat claim row id = %s, want %s", again.ID, claim.ID)
	}

	prog, err := svc.GetProgress(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.ClaimedChallenges) != 2 {
		t.Errorf("claimed = %v", prog.ClaimedChallenges)
	}
}

func TestClaim_UnknownChallenge(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.Claim(ctx, userID, "no-such-challenge"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	prog, err := svc.GetProgress(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.ClaimedChallenges) != 0 {
		t.Errorf("claimed = %v", prog.ClaimedChallenges)
	}
}

func TestMarkComplete_PublishesOncePerDocument(t *testing.T) {
	svc, hub := newTestProgressService(t)
	ctx := context.Background()
	userID := uuid.New()

	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, sse.UserChannel(userID))
	defer hub.RemoveClient(client)

	for i := 0; i < 2; i++ {
		if err := svc.MarkComplete(ctx, userID, "lessons/accounts"); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case msg := <-client.Outbound:
		if msg.Event != sse.SSEEventDocumentCompleted {
			t.Errorf("event = %q", msg.Event)
		}
	case <-time.After(time.Second):
		t.Fatal("no event for first completion")
	}
	select {
	case msg := <-client.Outbound:
		t.Fatalf("duplicate event for repeat completion: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProgress_PerUserIsolation(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	if err := svc.MarkComplete(ctx, alice, "lessons/accounts"); err != nil {
		t.Fatal(err)
	}

	prog, err := svc.GetProgress(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.CompletedDocuments) != 0 {
		t.Errorf("bob's progress = %v", prog.CompletedDocuments)
	}
}

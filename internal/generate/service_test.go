package generate

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/counter"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/extract"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/llm"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/profiles"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/quota"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/storage/kv"
)

type fakeLLM struct {
	calls     int
	fragments []string
	err       error
	streamErr error
}

func (f *fakeLLM) StreamCompletion(ctx context.Context, prompt string) (llm.Stream, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &fakeStream{fragments: f.fragments, err: f.streamErr}, nil
}

type fakeStream struct {
	fragments []string
	pos       int
	err       error
}

func (s *fakeStream) Recv() (string, error) {
	if s.pos < len(s.fragments) {
		fragment := s.fragments[s.pos]
		s.pos++
		return fragment, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *fakeStream) Close() error { return nil }

type fakeExtractor struct {
	calls   int
	content string
	err     error
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func setupService(t *testing.T, model *fakeLLM, extractor extract.Extractor) (*Service, *profiles.MemoryRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := profiles.NewMemoryRepo()
	svc := &Service{
		Ledger:    quota.NewLedger(repo, 2),
		Counter:   counter.NewService(kv.FromRedis(rdb), "coffeecounter"),
		Extractor: extractor,
		LLM:       model,
	}
	return svc, repo, mr
}

func seedProfile(t *testing.T, repo *profiles.MemoryRepo, profile profiles.Profile) profiles.Profile {
	t.Helper()
	created, err := repo.Create(context.Background(), profile)
	require.NoError(t, err)
	return created
}

func bioRequest(text string) Request {
	return Request{Tone: "Casual", InputKind: InputBio, Text: text}
}

const validBio = "A software engineer who spent five years building espresso machines."

func TestRunInputTooShortSkipsModel(t *testing.T) {
	model := &fakeLLM{}
	svc, repo, _ := setupService(t, model, nil)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1"})

	outcome, err := svc.Run(context.Background(), profile, bioRequest("too short"), nil)

	assert.ErrorIs(t, err, ErrInputTooShort)
	assert.Equal(t, StateErrored, outcome.State)
	assert.Zero(t, model.calls)
}

func TestRunLinkedInURLSkipsExtraction(t *testing.T) {
	model := &fakeLLM{}
	extractor := &fakeExtractor{content: validBio}
	svc, repo, _ := setupService(t, model, extractor)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1"})

	req := Request{Tone: "Professional", InputKind: InputURL, Text: "https://www.linkedin.com/in/someone"}
	outcome, err := svc.Run(context.Background(), profile, req, nil)

	assert.ErrorIs(t, err, extract.ErrUnsupportedDomain)
	assert.Equal(t, StateErrored, outcome.State)
	assert.Zero(t, extractor.calls)
	assert.Zero(t, model.calls)
}

func TestRunQuotaExhaustedSkipsModel(t *testing.T) {
	model := &fakeLLM{}
	svc, repo, _ := setupService(t, model, nil)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1", GenerationsUsed: 2})

	outcome, err := svc.Run(context.Background(), profile, bioRequest(validBio), nil)

	assert.ErrorIs(t, err, quota.ErrExceeded)
	assert.Equal(t, StateErrored, outcome.State)
	assert.Zero(t, model.calls)
}

func TestRunPaidUserBypassesQuotaAndIncrementsCounter(t *testing.T) {
	model := &fakeLLM{fragments: []string{"Q1?\n", "Q2?\n", "Q3?\n"}}
	svc, repo, mr := setupService(t, model, nil)
	profile := seedProfile(t, repo, profiles.Profile{ID: "paid-user", Paid: true, GenerationsUsed: 99})

	outcome, err := svc.Run(context.Background(), profile, bioRequest(validBio), nil)

	require.NoError(t, err)
	assert.Equal(t, StateDone, outcome.State)
	assert.Equal(t, []string{"Q1?", "Q2?", "Q3?"}, outcome.Questions)

	updated, err := repo.GetByID(context.Background(), "paid-user")
	require.NoError(t, err)
	assert.Equal(t, 99, updated.GenerationsUsed)

	val, err := mr.Get("coffeecounter")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestRunUnpaidUserCommitsUsageThenHitsLimit(t *testing.T) {
	model := &fakeLLM{fragments: []string{"Q1?\nQ2?\nQ3?\n"}}
	svc, repo, _ := setupService(t, model, nil)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1", GenerationsUsed: 1})

	outcome, err := svc.Run(context.Background(), profile, bioRequest(validBio), nil)
	require.NoError(t, err)
	assert.Equal(t, StateDone, outcome.State)

	updated, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.GenerationsUsed)

	outcome, err = svc.Run(context.Background(), updated, bioRequest(validBio), nil)
	assert.ErrorIs(t, err, quota.ErrExceeded)
	assert.Equal(t, StateErrored, outcome.State)
	assert.Equal(t, 1, model.calls, "second run must not reach the model")
}

func TestRunClientAbortCancelsWithoutCommit(t *testing.T) {
	model := &fakeLLM{fragments: []string{"Q1?\n", "Q2?\n"}}
	svc, repo, mr := setupService(t, model, nil)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1"})

	emitted := 0
	emit := func(fragment string, questions []string) error {
		emitted++
		if emitted > 1 {
			return errors.New("client disconnected")
		}
		return nil
	}

	outcome, err := svc.Run(context.Background(), profile, bioRequest(validBio), emit)

	require.NoError(t, err)
	assert.Equal(t, StateCancelled, outcome.State)

	updated, getErr := repo.GetByID(context.Background(), "u1")
	require.NoError(t, getErr)
	assert.Zero(t, updated.GenerationsUsed)
	assert.False(t, mr.Exists("coffeecounter"))
}

func TestRunContextCancelledMidStream(t *testing.T) {
	model := &fakeLLM{fragments: []string{"Q1?\n", "Q2?\n"}}
	svc, repo, mr := setupService(t, model, nil)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1"})

	ctx, cancel := context.WithCancel(context.Background())
	emit := func(fragment string, questions []string) error {
		cancel()
		return nil
	}

	outcome, err := svc.Run(ctx, profile, bioRequest(validBio), emit)

	require.NoError(t, err)
	assert.Equal(t, StateCancelled, outcome.State)
	assert.False(t, mr.Exists("coffeecounter"))

	updated, getErr := repo.GetByID(context.Background(), "u1")
	require.NoError(t, getErr)
	assert.Zero(t, updated.GenerationsUsed)
}

func TestRunStreamErrorKeepsPartialQuestions(t *testing.T) {
	model := &fakeLLM{fragments: []string{"Q1?\n"}, streamErr: errors.New("connection reset")}
	svc, repo, _ := setupService(t, model, nil)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1"})

	outcome, err := svc.Run(context.Background(), profile, bioRequest(validBio), nil)

	assert.Error(t, err)
	assert.Equal(t, StateErrored, outcome.State)
	assert.Equal(t, []string{"Q1?"}, outcome.Questions)

	updated, getErr := repo.GetByID(context.Background(), "u1")
	require.NoError(t, getErr)
	assert.Zero(t, updated.GenerationsUsed, "failed stream must not commit usage")
}

func TestRunEmptyModelOutputCompletesWithZeroQuestions(t *testing.T) {
	model := &fakeLLM{fragments: nil}
	svc, repo, _ := setupService(t, model, nil)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1"})

	outcome, err := svc.Run(context.Background(), profile, bioRequest(validBio), nil)

	require.NoError(t, err)
	assert.Equal(t, StateDone, outcome.State)
	assert.Empty(t, outcome.Questions)
}

func TestRunURLInputUsesExtractedContent(t *testing.T) {
	model := &fakeLLM{fragments: []string{"Q1?\n"}}
	extractor := &fakeExtractor{content: strings.Repeat("bio ", 10)}
	svc, repo, _ := setupService(t, model, extractor)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1"})

	req := Request{Tone: "Professional", InputKind: InputURL, Text: "https://example.com/about"}
	outcome, err := svc.Run(context.Background(), profile, req, nil)

	require.NoError(t, err)
	assert.Equal(t, StateDone, outcome.State)
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, 1, model.calls)
}

func TestRunInvalidInputKind(t *testing.T) {
	model := &fakeLLM{}
	svc, repo, _ := setupService(t, model, nil)
	profile := seedProfile(t, repo, profiles.Profile{ID: "u1"})

	req := Request{Tone: "Casual", InputKind: "pdf", Text: validBio}
	outcome, err := svc.Run(context.Background(), profile, req, nil)

	assert.ErrorIs(t, err, ErrInvalidInputKind)
	assert.Equal(t, StateErrored, outcome.State)
	assert.Zero(t, model.calls)
}

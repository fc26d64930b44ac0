package memstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/repository/memory"
	"github.com/secmon-lab/briareos/pkg/service/embedding"
	"github.com/secmon-lab/briareos/pkg/service/memstore"
)

type mockSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.generateContentFn(ctx, input...)
}

func (s *mockSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.generateContentFn(ctx, input...)
}

func (s *mockSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

var _ gollem.Session = &mockSession{}

type mockLLMClient struct {
	session *mockSession
	err     error
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	out := make([][]float64, len(input))
	for i, text := range input {
		v := embedding.HashEmbedding(text, dimension)
		out[i] = make([]float64, len(v))
		for j, f := range v {
			out[i][j] = float64(f)
		}
	}
	return out, nil
}

func jsonSession(body string) *mockSession {
	return &mockSession{
		generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{body}}, nil
		},
	}
}

const testScope = model.MemoryScope("alice@example.com")

func TestAddInteraction_WithoutExtractor(t *testing.T) {
	repo := memory.New()
	store := memstore.New(repo, embedding.New(nil))
	ctx := context.Background()

	err := store.AddInteraction(ctx, testScope, []model.Message{
		model.HumanMessage("Our Stripe webhooks fail"),
		model.AssistantMessage("We rotated the signing secret"),
	}, map[string]any{"ticket_id": 1})
	gt.NoError(t, err).Required()

	hits, err := store.ListAll(ctx, testScope, 10)
	gt.NoError(t, err).Required()
	gt.Array(t, hits).Length(1)
	gt.Value(t, hits[0].Memory).Equal("user: Our Stripe webhooks fail\nassistant: We rotated the signing secret")
	gt.Bool(t, hits[0].Score == nil).True()
	gt.Value(t, hits[0].Metadata["ticket_id"]).Equal(any(1))
}

func TestAddInteraction_WithExtractor(t *testing.T) {
	t.Run("stores each extracted fact", func(t *testing.T) {
		repo := memory.New()
		llm := &mockLLMClient{session: jsonSession(`{"facts":["Uses Stripe for billing","Uses stripe for billing"," ","Located in EU"]}`)}
		store := memstore.New(repo, embedding.New(llm), memstore.WithFactExtractor(llm))
		ctx := context.Background()

		gt.NoError(t, store.AddInteraction(ctx, testScope, []model.Message{
			model.HumanMessage("We are an EU Stripe shop"),
		}, nil)).Required()

		hits, err := store.ListAll(ctx, testScope, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(2)

		texts := []string{hits[0].Memory, hits[1].Memory}
		gt.Array(t, texts).Has("Uses Stripe for billing")
		gt.Array(t, texts).Has("Located in EU")
	})

	t.Run("max facts is honored", func(t *testing.T) {
		repo := memory.New()
		llm := &mockLLMClient{session: jsonSession(`{"facts":["a","b","c"]}`)}
		store := memstore.New(repo, embedding.New(nil), memstore.WithFactExtractor(llm), memstore.WithMaxFacts(2))
		ctx := context.Background()

		gt.NoError(t, store.AddInteraction(ctx, testScope, []model.Message{model.HumanMessage("x")}, nil)).Required()
		hits, err := store.ListAll(ctx, testScope, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(2)
	})

	t.Run("extraction failure falls back to raw interaction", func(t *testing.T) {
		repo := memory.New()
		llm := &mockLLMClient{err: errors.New("quota exceeded")}
		store := memstore.New(repo, embedding.New(nil), memstore.WithFactExtractor(llm))
		ctx := context.Background()

		gt.NoError(t, store.AddInteraction(ctx, testScope, []model.Message{model.HumanMessage("hello there")}, nil)).Required()
		hits, err := store.ListAll(ctx, testScope, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1)
		gt.Value(t, hits[0].Memory).Equal("user: hello there")
	})

	t.Run("invalid JSON falls back to raw interaction", func(t *testing.T) {
		repo := memory.New()
		llm := &mockLLMClient{session: jsonSession(`not json`)}
		store := memstore.New(repo, embedding.New(nil), memstore.WithFactExtractor(llm))
		ctx := context.Background()

		gt.NoError(t, store.AddInteraction(ctx, testScope, []model.Message{model.HumanMessage("hi")}, nil)).Required()
		hits, err := store.ListAll(ctx, testScope, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1)
	})
}

func TestSearch(t *testing.T) {
	repo := memory.New()
	store := memstore.New(repo, embedding.New(nil))
	ctx := context.Background()

	for _, text := range []string{
		"Customer integrates with Shopify storefront",
		"Billing disputes escalated to finance",
	} {
		gt.NoError(t, store.AddInteraction(ctx, testScope, []model.Message{model.HumanMessage(text)}, nil)).Required()
	}
	gt.NoError(t, store.AddInteraction(ctx, "other@example.com",
		[]model.Message{model.HumanMessage("Shopify storefront for someone else")}, nil)).Required()

	hits, err := store.Search(ctx, "shopify storefront", testScope, 5)
	gt.NoError(t, err).Required()
	gt.Array(t, hits).Length(2)
	gt.Bool(t, strings.Contains(hits[0].Memory, "Shopify")).True()
	gt.Bool(t, hits[0].Score != nil).True()
	gt.Bool(t, *hits[0].Score >= *hits[1].Score).True()
}

func TestAddResolution(t *testing.T) {
	repo := memory.New()
	store := memstore.New(repo, embedding.New(nil))
	ctx := context.Background()

	err := store.AddResolution(ctx, testScope, "Webhook 502", "POST /v1/hooks fails",
		"Please retry after the fix.",
		[]model.EntityLink{"endpoint:/v1/hooks", "http_status:502"})
	gt.NoError(t, err).Required()

	hits, err := store.ListAll(ctx, testScope, 0)
	gt.NoError(t, err).Required()
	gt.Array(t, hits).Length(1)
	gt.Value(t, hits[0].Metadata[model.MemoryMetaType]).Equal(any(memstore.MemoryTypeResolution))
	gt.Bool(t, strings.Contains(hits[0].Memory, "Linked entities: endpoint:/v1/hooks, http_status:502")).True()
}

func TestResolutionMessages(t *testing.T) {
	msgs := memstore.ResolutionMessages("Login", "Cannot sign in", "Reset your password.", nil)
	gt.Array(t, msgs).Length(2)
	gt.Value(t, msgs[0].Content).Equal("Ticket subject: Login\nProblem: Cannot sign in")
	gt.Value(t, msgs[1].Content).Equal("Resolution accepted by support agent:\nReset your password.")
}

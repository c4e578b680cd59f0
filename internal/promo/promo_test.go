package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"pandapos/internal/database"
	"pandapos/internal/models"
	"pandapos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel answers every prompt with a canned reply
type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

type recordingMailer struct {
	sent []Message
	fail map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	if m.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newPromoStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.Open(database.Options{Driver: "sqlite3", URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	s := store.New(db)

	ctx := context.Background()
	require.NoError(t, s.CreatePromotion(ctx, &models.Promotion{Code: "PANDA20", Description: "20% off your next order", PercentOff: 20, Active: true, MinOrders: 2}))

	expired := time.Now().Add(-time.Hour)
	require.NoError(t, s.CreatePromotion(ctx, &models.Promotion{Code: "OLD", PercentOff: 10, Active: true, MinOrders: 1, ExpiresAt: &expired}))

	place := func(email string, n int) {
		for i := 0; i < n; i++ {
			require.NoError(t, s.PlaceOrder(ctx, &models.Order{
				Source:        models.SourceOnline,
				CustomerEmail: email,
				Items:         []models.OrderItem{{Kind: models.ItemKindSingle, Name: "Fountain Drink", Quantity: 1, UnitPrice: 2.10}},
			}))
		}
	}
	place("alice@example.com", 3)
	place("bob@example.com", 2)
	place("carol@example.com", 1)
	return s
}

func TestTriggerSendsOncePerCustomer(t *testing.T) {
	s := newPromoStore(t)
	mailer := &recordingMailer{}
	trigger := NewTrigger(s, TemplateCopywriter{}, mailer, "promos@example.com", nil)

	var counted int
	trigger.OnSent = func(n int) { counted += n }

	res, err := trigger.Send(context.Background(), "panda20")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, "PANDA20", res.Code)
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "alice@example.com", mailer.sent[0].To)
	assert.Equal(t, "bob@example.com", mailer.sent[1].To)
	assert.Equal(t, "promos@example.com", mailer.sent[0].From)
	assert.Contains(t, mailer.sent[0].Body, "PANDA20")
	assert.Contains(t, mailer.sent[0].Body, "3 times")

	res, err = trigger.Send(context.Background(), "PANDA20")
	require.NoError(t, err)
	assert.Zero(t, res.Sent)
	assert.Len(t, mailer.sent, 2)
	assert.Equal(t, 2, counted)
}

func TestTriggerRetriesFailedDeliveries(t *testing.T) {
	s := newPromoStore(t)
	mailer := &recordingMailer{fail: map[string]bool{"alice@example.com": true}}
	trigger := NewTrigger(s, TemplateCopywriter{}, mailer, "promos@example.com", nil)

	res, err := trigger.Send(context.Background(), "PANDA20")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, []string{"alice@example.com"}, res.Failed)

	mailer.fail = nil
	res, err = trigger.Send(context.Background(), "PANDA20")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, "alice@example.com", mailer.sent[len(mailer.sent)-1].To)
}

func TestTriggerRejectsUnknownAndExpired(t *testing.T) {
	s := newPromoStore(t)
	trigger := NewTrigger(s, TemplateCopywriter{}, &recordingMailer{}, "", nil)

	_, err := trigger.Send(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrUnknownPromotion)

	_, err = trigger.Send(context.Background(), "OLD")
	assert.ErrorIs(t, err, ErrPromotionInactive)
}

func TestLLMCopywriter(t *testing.T) {
	promo := &models.Promotion{Code: "PANDA20", Description: "20% off", PercentOff: 20}
	customer := store.Customer{Email: "alice@example.com", Orders: 5}

	model := &fakeModel{reply: "  Hi there! Use PANDA20 for 20% off.  "}
	subject, body, err := NewLLMCopywriter(model, nil).Draft(context.Background(), promo, customer)
	require.NoError(t, err)
	assert.Equal(t, "20% off your next order with PANDA20", subject)
	assert.Equal(t, "Hi there! Use PANDA20 for 20% off.\n", body)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "ordered 5 times")
}

func TestLLMCopywriterFallsBack(t *testing.T) {
	promo := &models.Promotion{Code: "PANDA20", PercentOff: 20}
	customer := store.Customer{Email: "alice@example.com", Orders: 3}
	_, want, _ := TemplateCopywriter{}.Draft(context.Background(), promo, customer)

	testCases := []struct {
		name  string
		model *fakeModel
	}{
		{"model error", &fakeModel{err: errors.New("rate limited")}},
		{"code dropped", &fakeModel{reply: "Come back soon for a great deal!"}},
		{"empty reply", &fakeModel{reply: "   "}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, body, err := NewLLMCopywriter(tc.model, nil).Draft(context.Background(), promo, customer)
			require.NoError(t, err)
			assert.Equal(t, want, body)
		})
	}
}

func TestTemplateCopywriter(t *testing.T) {
	expires := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
	promo := &models.Promotion{Code: "HOLIDAY", Description: "Holiday special.", PercentOff: 15, ExpiresAt: &expires}

	subject, body, err := TemplateCopywriter{}.Draft(context.Background(), promo, store.Customer{Orders: 4})
	require.NoError(t, err)
	assert.Equal(t, "15% off your next order with HOLIDAY", subject)
	assert.Equal(t, "Thanks for ordering with us 4 times!\n\nHoliday special.\nUse code HOLIDAY at checkout to take 15% off. Valid until December 31, 2026.\n", body)
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), Message{To: "alice@example.com"}))
}

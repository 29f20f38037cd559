package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
)

func TestMigrationFilesAreOrdered(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_init.up.sql", files[0])

	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1], files[i])
	}
}

func TestNullStringHelpers(t *testing.T) {
	assert.False(t, nullString(nil).Valid)

	s := "x"
	ns := nullString(&s)
	assert.True(t, ns.Valid)
	assert.Equal(t, "x", *stringPtr(ns))
	assert.Nil(t, stringPtr(nullString(nil)))
}

// openTestDB connects to TEST_DATABASE_URL or skips the test.
func openTestDB(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, Options{URL: url, MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(ctx)
	require.NoError(t, err)
	return db
}

func TestPostgresConversationLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id := "test-" + uuid.NewString()
	agentID := "m-1"

	require.NoError(t, db.UpsertConversation(ctx, &model.ConversationUpsert{
		ConversationID: id,
		CustomerName:   "Maria",
		AgentName:      "Ana Souza",
		AgentID:        &agentID,
		IsSiteCustomer: true,
	}))
	// A later upsert must not clear the site flag.
	require.NoError(t, db.UpsertConversation(ctx, &model.ConversationUpsert{
		ConversationID: id,
		CustomerName:   "Maria",
		AgentName:      "Ana Souza",
	}))

	require.NoError(t, db.AddTag(ctx, id, "VIP"))
	require.NoError(t, db.AddTag(ctx, id, "VIP"))
	require.NoError(t, db.AddTag(ctx, id, "site"))
	require.NoError(t, db.RemoveTag(ctx, id, "VIP"))

	customerAt := time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)
	customerMsg := &model.Message{
		ConversationID: id, MessageID: id + "-c1", SenderType: model.SenderCustomer,
		SenderName: "Maria", Text: "Oi", Kind: model.KindMessage, Timestamp: customerAt,
	}
	require.NoError(t, db.CreateMessage(ctx, customerMsg))
	require.NoError(t, db.CreateMessage(ctx, customerMsg))

	last, err := db.LastUnansweredCustomerMessage(ctx, id, id+"-a1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, id+"-c1", last.MessageID)

	require.NoError(t, db.SaveResponseTime(ctx, &model.ResponseTime{
		ConversationID: id, CustomerMessageID: id + "-c1", AgentMessageID: id + "-a1",
		Seconds: 120, CustomerMessageTime: customerAt, AgentResponseTime: customerAt.Add(2 * time.Minute),
	}))

	last, err = db.LastUnansweredCustomerMessage(ctx, id, id+"-a1")
	require.NoError(t, err)
	assert.Nil(t, last)

	pending, err := db.AwaitingReply(ctx, "Ana Souza")
	require.NoError(t, err)
	var found *model.PendingConversation
	for i := range pending {
		if pending[i].ConversationID == id {
			found = &pending[i]
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.IsSiteCustomer)
	assert.Equal(t, []string{"site"}, found.Tags)
	assert.Equal(t, "Oi", found.LastMessageText)

	require.NoError(t, db.UpdateConversationStatus(ctx, id, model.StatusClosed))
	stats, err := db.AgentStats(ctx, "Ana Souza")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.GreaterOrEqual(t, stats.ClosedConversations, 1)

	none, err := db.AgentStats(ctx, "nobody-"+id)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPostgresUnansweredStopsAtPreviousReply(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id := "test-" + uuid.NewString()
	base := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.UpsertConversation(ctx, &model.ConversationUpsert{ConversationID: id, CustomerName: "Maria", AgentName: "Ana Souza"}))

	create := func(suffix string, sender model.SenderType, kind model.MessageKind, at time.Time) {
		require.NoError(t, db.CreateMessage(ctx, &model.Message{
			ConversationID: id, MessageID: id + suffix, SenderType: sender,
			SenderName: string(sender), Text: "x", Kind: kind, Timestamp: at,
		}))
	}
	create("-c1", model.SenderCustomer, model.KindMessage, base)
	create("-c2", model.SenderCustomer, model.KindMessage, base.Add(time.Minute))
	create("-a1", model.SenderAgent, model.KindMessage, base.Add(5*time.Minute))

	last, err := db.LastUnansweredCustomerMessage(ctx, id, id+"-a1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, id+"-c2", last.MessageID)

	require.NoError(t, db.SaveResponseTime(ctx, &model.ResponseTime{
		ConversationID: id, CustomerMessageID: id + "-c2", AgentMessageID: id + "-a1",
		Seconds: 240, CustomerMessageTime: base.Add(time.Minute), AgentResponseTime: base.Add(5 * time.Minute),
	}))

	// A follow-up reply must not reach back past a1 to the earlier c1.
	create("-a2", model.SenderAgent, model.KindMessage, base.Add(time.Hour))
	last, err = db.LastUnansweredCustomerMessage(ctx, id, id+"-a2")
	require.NoError(t, err)
	assert.Nil(t, last)

	// Private notes do not count as replies.
	create("-c3", model.SenderCustomer, model.KindMessage, base.Add(2*time.Hour))
	create("-n1", model.SenderAgent, model.KindPrivateNote, base.Add(2*time.Hour+time.Minute))
	create("-a3", model.SenderAgent, model.KindMessage, base.Add(2*time.Hour+2*time.Minute))
	last, err = db.LastUnansweredCustomerMessage(ctx, id, id+"-a3")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, id+"-c3", last.MessageID)
}

package transcript_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/spachava753/msgquery/directory"
	"github.com/spachava753/msgquery/macos/messages"
	"github.com/spachava753/msgquery/macos/messages/messagestest"
	"github.com/spachava753/msgquery/transcript"
)

type clockAt time.Time

func (c clockAt) Now() time.Time { return time.Time(c) }

func newChatService(t *testing.T) *transcript.Service {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chat.db")
	fx := messagestest.Create(t, path)
	jane := fx.AddHandle("+16502530000")
	chat := fx.AddChat("+16502530000", jane)

	// Ten messages three days apart, ending today.
	today := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	for i := 9; i >= 0; i-- {
		sent := today.AddDate(0, 0, -3*i)
		fx.AddMessage(messagestest.Message{
			Handle: jane,
			Chat:   chat,
			Text:   messagestest.String(sent.Format("Jan 2")),
			SentAt: sent,
			FromMe: i%2 == 0,
		})
	}

	store, err := messages.NewStore(messages.Options{Path: path, Location: time.UTC})
	be.Err(t, err, nil)
	t.Cleanup(func() { store.Close() })

	contacts := directory.Fixed(directory.New([]directory.Entry{
		{Name: "Jane Doe", Phones: []string{"(650) 253-0000"}},
	}))
	return transcript.NewService(transcript.Options{
		Contacts: contacts,
		Messages: store,
		Clock:    clockAt(today),
	})
}

func TestChatTranscriptFromDatabase(t *testing.T) {
	svc := newChatService(t)
	ctx := context.Background()

	out, err := svc.ChatTranscript(ctx, transcript.Query{Contact: "Jane Doe"})
	be.Err(t, err, nil)
	be.Equal(t, out.TotalCount, 3)
	be.Equal(t, out.Messages[0].Date, "2024-03-14 12:00:00")
	be.Equal(t, out.Messages[1].Date, "2024-03-17 12:00:00")
	be.Equal(t, out.Messages[2].Date, "2024-03-20 12:00:00")
	be.Equal(t, out.Messages[2].Text, "Mar 20")
	be.True(t, out.Messages[2].IsFromMe)

	out, err = svc.ChatTranscript(ctx, transcript.Query{Contact: "+1 650-253-0000", StartDate: "2024-02-01"})
	be.Err(t, err, nil)
	be.Equal(t, out.TotalCount, 10)

	out, err = svc.ChatTranscript(ctx, transcript.Query{Contact: "jane", EndDate: "2024-02-26"})
	be.Err(t, err, nil)
	be.Equal(t, out.TotalCount, 2)

	_, err = svc.ChatTranscript(ctx, transcript.Query{Contact: "nobody"})
	be.Err(t, err, transcript.ErrContactNotFound)
}

func TestChatTranscriptMissingDatabase(t *testing.T) {
	store, err := messages.NewStore(messages.Options{Path: filepath.Join(t.TempDir(), "chat.db")})
	be.Err(t, err, nil)

	svc := transcript.NewService(transcript.Options{Messages: store})
	_, err = svc.ChatTranscript(context.Background(), transcript.Query{Contact: "650 253 0000"})
	be.Err(t, err, transcript.ErrStoreUnavailable)
}

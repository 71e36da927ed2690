package transcript

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/spachava753/msgquery/directory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeProvider struct {
	messages map[string][]RawMessage
	checkErr error
	fetchErr error
	fetched  []string
}

func (p *fakeProvider) Check() error { return p.checkErr }

func (p *fakeProvider) Messages(ctx context.Context, id string) ([]RawMessage, error) {
	p.fetched = append(p.fetched, id)
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.messages[id], nil
}

func newTestService(provider *fakeProvider, mail Provider) *Service {
	return NewService(Options{
		Contacts: testDirectory(),
		Messages: provider,
		Mail:     mail,
		Region:   "US",
		Clock:    fixedClock{now: time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)},
	})
}

func TestChatTranscriptNormalizesDirectoryNumber(t *testing.T) {
	provider := &fakeProvider{messages: map[string][]RawMessage{
		"+16502530000": messagesOn("2024-03-01 08:00:00", "2024-03-03 08:00:00", "2024-03-09 08:00:00", "2024-03-10 20:00:00"),
	}}
	svc := newTestService(provider, nil)

	out, err := svc.ChatTranscript(context.Background(), Query{Contact: "Jane Doe"})
	be.Err(t, err, nil)
	be.Equal(t, provider.fetched, []string{"+16502530000"})
	be.Equal(t, out.TotalCount, 3)
	be.Equal(t, out.TotalCount, len(out.Messages))
	be.Equal(t, out.Messages[0].Date, "2024-03-03 08:00:00")
	be.Equal(t, out.Messages[2].Date, "2024-03-10 20:00:00")
}

func TestChatTranscriptExplicitWindow(t *testing.T) {
	provider := &fakeProvider{messages: map[string][]RawMessage{
		"+12015550177": messagesOn("2023-12-31 23:00:00", "2024-01-01 00:00:00", "2024-01-31 10:00:00", "2024-02-01 00:00:01"),
	}}
	svc := newTestService(provider, nil)

	out, err := svc.ChatTranscript(context.Background(), Query{Contact: "bob", StartDate: "2024-01-01", EndDate: "2024-01-31"})
	be.Err(t, err, nil)
	be.Equal(t, out.TotalCount, 2)
	be.Equal(t, out.Messages[0].Text, "on 2024-01-01 00:00:00")
	be.Equal(t, out.Messages[1].Text, "on 2024-01-31 10:00:00")
}

func TestChatTranscriptErrorsNeverReachFetch(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(Options{
		Contacts: directory.Fixed(directory.New([]directory.Entry{
			{Name: "Broken Number", Phones: []string{"not a number"}},
		})),
		Messages: provider,
	})

	_, err := svc.ChatTranscript(context.Background(), Query{Contact: "nobody"})
	be.Err(t, err, ErrContactNotFound)

	_, err = svc.ChatTranscript(context.Background(), Query{Contact: "Broken Number"})
	be.Err(t, err, ErrInvalidPhoneNumber)
	be.True(t, !errors.Is(err, ErrContactNotFound))

	provider.checkErr = fmt.Errorf("%w: chat.db missing", ErrStoreUnavailable)
	_, err = svc.ChatTranscript(context.Background(), Query{Contact: "+1 650 253 0000"})
	be.Err(t, err, ErrStoreUnavailable)

	be.Equal(t, len(provider.fetched), 0)
}

func TestChatTranscriptPropagatesFailures(t *testing.T) {
	provider := &fakeProvider{fetchErr: errors.New("disk on fire")}
	svc := newTestService(provider, nil)

	_, err := svc.ChatTranscript(context.Background(), Query{Contact: "Jane Doe"})
	be.Err(t, err, "disk on fire")

	provider.fetchErr = nil
	provider.messages = map[string][]RawMessage{"+16502530000": messagesOn("2024-03-09 10:00:00", "garbage")}
	_, err = svc.ChatTranscript(context.Background(), Query{Contact: "Jane Doe"})
	be.Err(t, err, ErrMalformedTimestamp)

	_, err = svc.ChatTranscript(context.Background(), Query{Contact: "Jane Doe", StartDate: "last week"})
	be.Err(t, err, ErrInvalidDate)
}

func TestChatTranscriptWithoutStore(t *testing.T) {
	svc := NewService(Options{Contacts: testDirectory()})
	_, err := svc.ChatTranscript(context.Background(), Query{Contact: "Jane Doe"})
	be.Err(t, err, ErrStoreUnavailable)
}

func TestEmailTranscript(t *testing.T) {
	mail := &fakeProvider{messages: map[string][]RawMessage{
		"jane@example.com": messagesOn("2024-03-04 10:00:00", "2024-03-08 10:00:00"),
	}}
	svc := newTestService(&fakeProvider{}, mail)

	out, err := svc.EmailTranscript(context.Background(), Query{Contact: "jane"})
	be.Err(t, err, nil)
	be.Equal(t, mail.fetched, []string{"jane@example.com"})
	be.Equal(t, out.TotalCount, 2)

	_, err = svc.EmailTranscript(context.Background(), Query{Contact: "nobody"})
	be.Err(t, err, ErrContactNotFound)

	noMail := newTestService(&fakeProvider{}, nil)
	_, err = noMail.EmailTranscript(context.Background(), Query{Contact: "jane"})
	be.Err(t, err, ErrStoreUnavailable)
}

func TestReloadContactsOnFixedSource(t *testing.T) {
	svc := newTestService(&fakeProvider{}, nil)
	be.Equal(t, svc.ContactCount(), 5)

	n, err := svc.ReloadContacts()
	be.True(t, err != nil)
	be.Equal(t, n, 5)
}

package transcript

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spachava753/msgquery/directory"
	"github.com/spachava753/msgquery/phone"
)

// Options configures a Service.
type Options struct {
	// Contacts supplies the contact directory. Nil means an empty directory.
	Contacts *directory.Source
	// Messages is the phone-keyed message store.
	Messages Provider
	// Mail is the optional email-keyed store used by EmailTranscript.
	Mail Provider
	// Region is the default phone region; empty means phone.DefaultRegion.
	Region string
	// Clock supplies "today" for the default window; nil means RealClock.
	Clock  Clock
	Logger *zap.Logger
}

// Service answers transcript queries.
type Service struct {
	contacts *directory.Source
	resolver *Resolver
	messages Provider
	mail     Provider
	region   string
	clock    Clock
	logger   *zap.Logger
}

// NewService builds a Service from opts.
func NewService(opts Options) *Service {
	if opts.Contacts == nil {
		opts.Contacts = directory.Fixed(nil)
	}
	if opts.Region == "" {
		opts.Region = phone.DefaultRegion
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		contacts: opts.Contacts,
		resolver: NewResolver(opts.Contacts, opts.Region),
		messages: opts.Messages,
		mail:     opts.Mail,
		region:   opts.Region,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
}

// Resolver returns the service's resolver.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// ChatTranscript resolves q.Contact to an E.164 number and returns its Messages
// history within the requested window.
func (s *Service) ChatTranscript(ctx context.Context, q Query) (Transcript, error) {
	s.logger.Debug("chat transcript requested",
		zap.String("contact", q.Contact),
		zap.String("start_date", q.StartDate),
		zap.String("end_date", q.EndDate))

	res, err := s.resolver.ResolvePhone(q.Contact)
	if err != nil {
		s.logger.Warn("contact not resolved", zap.String("contact", q.Contact), zap.Error(err))
		return Transcript{}, err
	}

	// Directory numbers may be stored in any format; raw input is already
	// canonical but goes through the same path.
	id, err := phone.Normalize(res.Value, s.region)
	if err != nil {
		s.logger.Warn("resolved number is not valid",
			zap.String("contact", q.Contact),
			zap.String("number", res.Value),
			zap.Error(err))
		return Transcript{}, fmt.Errorf("contact %q: %w", q.Contact, err)
	}
	s.logger.Debug("contact resolved",
		zap.String("contact", q.Contact),
		zap.String("name", res.Name),
		zap.String("match", string(res.Kind)),
		zap.String("id", id))

	if s.messages == nil {
		return Transcript{}, fmt.Errorf("%w: no message store configured", ErrStoreUnavailable)
	}
	return s.assemble(ctx, s.messages, id, q)
}

// EmailTranscript resolves q.Contact to an email address and returns its mail
// history within the requested window.
func (s *Service) EmailTranscript(ctx context.Context, q Query) (Transcript, error) {
	s.logger.Debug("email transcript requested",
		zap.String("contact", q.Contact),
		zap.String("start_date", q.StartDate),
		zap.String("end_date", q.EndDate))

	res, err := s.resolver.ResolveEmail(q.Contact)
	if err != nil {
		s.logger.Warn("contact not resolved", zap.String("contact", q.Contact), zap.Error(err))
		return Transcript{}, err
	}
	s.logger.Debug("contact resolved",
		zap.String("contact", q.Contact),
		zap.String("name", res.Name),
		zap.String("match", string(res.Kind)),
		zap.String("id", res.Value))

	if s.mail == nil {
		return Transcript{}, fmt.Errorf("%w: no mail store configured", ErrStoreUnavailable)
	}
	return s.assemble(ctx, s.mail, res.Value, q)
}

// ReloadContacts re-reads the contact directory and returns its size.
func (s *Service) ReloadContacts() (int, error) {
	d, err := s.contacts.Reload()
	if err != nil {
		return d.Len(), err
	}
	return d.Len(), nil
}

// ContactCount returns the number of entries in the current directory.
func (s *Service) ContactCount() int {
	return s.contacts.Directory().Len()
}

func (s *Service) assemble(ctx context.Context, provider Provider, id string, q Query) (Transcript, error) {
	if err := provider.Check(); err != nil {
		s.logger.Error("message store unavailable", zap.Error(err))
		return Transcript{}, err
	}

	raw, err := provider.Messages(ctx, id)
	if err != nil {
		s.logger.Error("fetching messages failed", zap.String("id", id), zap.Error(err))
		return Transcript{}, fmt.Errorf("fetching messages for %s: %w", id, err)
	}

	window, err := ParseWindow(q.StartDate, q.EndDate, s.clock.Now())
	if err != nil {
		return Transcript{}, err
	}

	kept, err := Filter(raw, window)
	if err != nil {
		s.logger.Error("filtering messages failed", zap.String("id", id), zap.Error(err))
		return Transcript{}, fmt.Errorf("filtering messages for %s: %w", id, err)
	}

	records := Shape(kept)
	s.logger.Info("transcript assembled",
		zap.String("id", id),
		zap.Int("fetched", len(raw)),
		zap.Int("returned", len(records)))
	return Transcript{Messages: records, TotalCount: len(records)}, nil
}

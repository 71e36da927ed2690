package gmail

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/spachava753/msgquery/transcript"
)

const (
	gmailIMAPHost    = "imap.gmail.com"
	gmailIMAPAddress = "imap.gmail.com:993"
	gmailAllMail     = "[Gmail]/All Mail"

	// EnvAddress and EnvAppPassword name the credential variables read when
	// Options leaves them empty.
	EnvAddress     = "GMAIL_ADDRESS"
	EnvAppPassword = "GMAIL_APP_PASSWORD"

	// KeyringService is the keychain service under which app passwords are
	// stored, keyed by account address.
	KeyringService = "com.github.spachava753.msgquery"

	// DateLayout matches the chat.db rendering so both providers filter alike.
	DateLayout = "2006-01-02 15:04:05"
)

// ErrStoreUnavailable is returned by [Store.Check] when credentials are missing.
var ErrStoreUnavailable = transcript.ErrStoreUnavailable

// Options configures a Store.
type Options struct {
	Address     string
	AppPassword string
	// Mailbox defaults to "[Gmail]/All Mail".
	Mailbox string
	// Location renders message dates; nil means time.Local.
	Location *time.Location
	Logger   *zap.Logger
}

// Store reads the mail exchanged with one address from a Gmail account over
// IMAP. Every Messages call opens its own connection and logs out when done.
type Store struct {
	address     string
	appPassword string
	mailbox     string
	loc         *time.Location
	logger      *zap.Logger
}

type fetchedMessage struct {
	UID           uint32
	Envelope      *imap.Envelope
	InternalDate  time.Time
	BodyStructure *imap.BodyStructure
	TextBody      string
	HTMLBody      string
}

// NewStore returns a Store. Empty credentials fall back to GMAIL_ADDRESS and
// GMAIL_APP_PASSWORD, then to the password saved with SavePassword. Missing
// credentials surface from Check, not here.
func NewStore(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	address := strings.TrimSpace(opts.Address)
	if address == "" {
		address = strings.TrimSpace(os.Getenv(EnvAddress))
	}
	appPassword := opts.AppPassword
	if appPassword == "" {
		appPassword = os.Getenv(EnvAppPassword)
	}
	if appPassword == "" && address != "" {
		if saved, err := keyring.Get(KeyringService, address); err == nil {
			appPassword = saved
		} else if !errors.Is(err, keyring.ErrNotFound) {
			opts.Logger.Debug("keyring lookup failed", zap.String("address", address), zap.Error(err))
		}
	}
	if opts.Mailbox == "" {
		opts.Mailbox = gmailAllMail
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Store{
		address:     address,
		appPassword: strings.ReplaceAll(appPassword, " ", ""),
		mailbox:     opts.Mailbox,
		loc:         opts.Location,
		logger:      opts.Logger,
	}
}

// SavePassword stores an app password for address in the system keyring.
func SavePassword(address string, appPassword string) error {
	address = strings.TrimSpace(address)
	appPassword = strings.ReplaceAll(strings.TrimSpace(appPassword), " ", "")
	if address == "" || appPassword == "" {
		return errors.New("gmail: address and app password are required")
	}
	if err := keyring.Set(KeyringService, address, appPassword); err != nil {
		return fmt.Errorf("gmail: saving app password failed: %w", err)
	}
	return nil
}

// Address returns the account address.
func (s *Store) Address() string {
	return s.address
}

// Check reports whether credentials are configured. It does not dial.
func (s *Store) Check() error {
	if s.address == "" {
		return fmt.Errorf("%w: gmail: %s is required", ErrStoreUnavailable, EnvAddress)
	}
	if s.appPassword == "" {
		return fmt.Errorf("%w: gmail: %s is required", ErrStoreUnavailable, EnvAppPassword)
	}
	return nil
}

// Messages returns every message sent from or to addr, oldest first.
func (s *Store) Messages(ctx context.Context, addr string) ([]transcript.RawMessage, error) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return nil, errors.New("gmail: address is required")
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	imapClient, err := connectIMAP(s.address, s.appPassword)
	if err != nil {
		return nil, err
	}
	defer imapClient.Logout()
	stop := context.AfterFunc(ctx, func() { imapClient.Terminate() })
	defer stop()

	if _, err := imapClient.Select(s.mailbox, true); err != nil {
		return nil, fmt.Errorf("gmail: selecting mailbox %q failed: %w", s.mailbox, err)
	}

	uids, err := imapClient.UidSearch(correspondentCriteria(addr))
	if err != nil {
		return nil, fmt.Errorf("gmail: searching messages failed: %w", err)
	}
	s.logger.Debug("gmail search finished", zap.String("address", addr), zap.Int("uids", len(uids)))

	fetched, err := fetchMessagesByUID(imapClient, uids)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	sortFetched(fetched)

	out := make([]transcript.RawMessage, 0, len(fetched))
	for _, msg := range fetched {
		out = append(out, toRawMessage(msg, s.address, s.loc))
	}
	s.logger.Debug("loaded mail", zap.String("address", addr), zap.Int("messages", len(out)))
	return out, nil
}

// correspondentCriteria matches messages with addr in From or To.
func correspondentCriteria(addr string) *imap.SearchCriteria {
	from := imap.NewSearchCriteria()
	from.Header.Add("FROM", addr)
	to := imap.NewSearchCriteria()
	to.Header.Add("TO", addr)

	criteria := imap.NewSearchCriteria()
	criteria.Or = [][2]*imap.SearchCriteria{{from, to}}
	return criteria
}

func fetchMessagesByUID(imapClient *client.Client, uids []uint32) ([]fetchedMessage, error) {
	if len(uids) == 0 {
		return []fetchedMessage{}, nil
	}
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	bodySection := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchBodyStructure, bodySection.FetchItem()}

	messages := make(chan *imap.Message, len(uids)+8)
	done := make(chan error, 1)
	go func() {
		done <- imapClient.UidFetch(seqSet, items, messages)
	}()

	out := make([]fetchedMessage, 0, len(uids))
	var readErr error
	for msg := range messages {
		if readErr != nil {
			continue
		}
		entry := fetchedMessage{
			UID:           msg.Uid,
			Envelope:      msg.Envelope,
			InternalDate:  msg.InternalDate,
			BodyStructure: msg.BodyStructure,
		}
		if literal := msg.GetBody(bodySection); literal != nil {
			raw, err := io.ReadAll(literal)
			if err != nil {
				readErr = fmt.Errorf("gmail: reading fetched body failed: %w", err)
				continue
			}
			textBody, htmlBody, err := extractBodiesFromRaw(raw)
			if err == nil {
				entry.TextBody = textBody
				entry.HTMLBody = htmlBody
			}
		}
		out = append(out, entry)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("gmail: fetching messages failed: %w", err)
	}
	if readErr != nil {
		return nil, readErr
	}
	return out, nil
}

func sortFetched(messages []fetchedMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		left := envelopeDate(messages[i].Envelope, messages[i].InternalDate)
		right := envelopeDate(messages[j].Envelope, messages[j].InternalDate)
		if left.Equal(right) {
			return messages[i].UID < messages[j].UID
		}
		return left.Before(right)
	})
}

func toRawMessage(msg fetchedMessage, account string, loc *time.Location) transcript.RawMessage {
	out := transcript.RawMessage{
		Date:        envelopeDate(msg.Envelope, msg.InternalDate).In(loc).Format(DateLayout),
		IsFromMe:    sentBy(msg.Envelope, account),
		Attachments: attachmentsFromStructure(msg.BodyStructure),
	}
	text := strings.TrimSpace(msg.TextBody)
	if text == "" {
		text = envelopeSubject(msg.Envelope)
	}
	if text != "" {
		out.Text = &text
	}
	return out
}

func sentBy(env *imap.Envelope, account string) bool {
	for _, addr := range envelopeFrom(env) {
		if addr != nil && strings.EqualFold(strings.TrimSpace(addr.Address()), account) {
			return true
		}
	}
	return false
}

// attachmentsFromStructure lists the parts that carry a filename or an
// attachment disposition. Mail attachments are never on local disk, so the
// path is always nil.
func attachmentsFromStructure(body *imap.BodyStructure) []transcript.AttachmentRef {
	var out []transcript.AttachmentRef
	var walk func(*imap.BodyStructure)
	walk = func(part *imap.BodyStructure) {
		if part == nil {
			return
		}
		if len(part.Parts) > 0 {
			for _, child := range part.Parts {
				walk(child)
			}
			return
		}
		filename, _ := part.Filename()
		filename = strings.TrimSpace(filename)
		if filename == "" && !strings.EqualFold(part.Disposition, "attachment") {
			if part.BodyStructure != nil {
				walk(part.BodyStructure)
			}
			return
		}
		ref := transcript.AttachmentRef{}
		if part.MIMEType != "" {
			mimeType := strings.ToLower(part.MIMEType + "/" + part.MIMESubType)
			ref.MIMEType = &mimeType
		}
		if filename != "" {
			ref.Filename = &filename
		}
		out = append(out, ref)
	}
	walk(body)
	return out
}

func extractBodiesFromRaw(raw []byte) (string, string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", "", err
	}
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", "", err
	}
	textBody, htmlBody, err := extractBodiesFromEntity(textproto.MIMEHeader(msg.Header), body)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(textBody), strings.TrimSpace(htmlBody), nil
}

func extractBodiesFromEntity(header textproto.MIMEHeader, body []byte) (string, string, error) {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil || mediaType == "" {
		mediaType = "text/plain"
	}
	if strings.EqualFold(header.Get("Content-Disposition"), "attachment") ||
		strings.HasPrefix(strings.ToLower(header.Get("Content-Disposition")), "attachment;") {
		return "", "", nil
	}

	decoded, err := decodeTransferEncoding(header.Get("Content-Transfer-Encoding"), body)
	if err != nil {
		return "", "", err
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return "", "", nil
		}
		reader := multipart.NewReader(bytes.NewReader(decoded), boundary)
		plainParts := make([]string, 0, 4)
		htmlParts := make([]string, 0, 2)
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", "", err
			}
			partBody, err := io.ReadAll(part)
			if err != nil {
				return "", "", err
			}
			partText, partHTML, err := extractBodiesFromEntity(textproto.MIMEHeader(part.Header), partBody)
			if err != nil {
				return "", "", err
			}
			if partText != "" {
				plainParts = append(plainParts, partText)
			}
			if partHTML != "" {
				htmlParts = append(htmlParts, partHTML)
			}
		}
		return strings.Join(plainParts, "\n"), strings.Join(htmlParts, "\n"), nil
	}

	switch mediaType {
	case "text/plain":
		return string(decoded), "", nil
	case "text/html":
		return "", string(decoded), nil
	case "message/rfc822":
		nested, err := mail.ReadMessage(bytes.NewReader(decoded))
		if err != nil {
			return "", "", err
		}
		nestedBody, err := io.ReadAll(nested.Body)
		if err != nil {
			return "", "", err
		}
		return extractBodiesFromEntity(textproto.MIMEHeader(nested.Header), nestedBody)
	default:
		return "", "", nil
	}
}

func decodeTransferEncoding(encoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "7bit", "8bit", "binary":
		return body, nil
	case "quoted-printable":
		return io.ReadAll(quotedprintable.NewReader(bytes.NewReader(body)))
	case "base64":
		clean := strings.ReplaceAll(string(body), "\r", "")
		clean = strings.ReplaceAll(clean, "\n", "")
		decoded, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return body, nil
		}
		return decoded, nil
	default:
		return body, nil
	}
}

func envelopeSubject(env *imap.Envelope) string {
	if env == nil {
		return ""
	}
	return strings.TrimSpace(env.Subject)
}

func envelopeFrom(env *imap.Envelope) []*imap.Address {
	if env == nil {
		return nil
	}
	return env.From
}

func envelopeDate(env *imap.Envelope, fallback time.Time) time.Time {
	if env != nil && !env.Date.IsZero() {
		return env.Date
	}
	return fallback
}

func connectIMAP(address string, appPassword string) (*client.Client, error) {
	imapClient, err := client.DialTLS(gmailIMAPAddress, &tls.Config{ServerName: gmailIMAPHost})
	if err != nil {
		return nil, fmt.Errorf("gmail: IMAP dial failed: %w", err)
	}

	if err := imapClient.Authenticate(sasl.NewPlainClient("", address, appPassword)); err != nil {
		imapClient.Logout()
		return nil, fmt.Errorf("gmail: IMAP authentication failed: %w", err)
	}
	return imapClient, nil
}

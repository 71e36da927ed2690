// Package mcpserver exposes transcript queries as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/spachava753/msgquery/transcript"
)

// Name is the server name advertised to clients.
const Name = "iMessage_Query"

// Instructions is the agent guidance sent at initialization and served as the
// get_chat_transcript prompt.
const Instructions = `You are an AI assistant that helps users access their iMessage chat history.

CRITICAL INSTRUCTION: When a user asks for messages with a contact, you MUST IMMEDIATELY execute get_chat_transcript with the contact name. DO NOT ask for phone numbers or any additional information.

Example:
User: "Show me messages with Matthew Day"
You must immediately execute:
get_chat_transcript(contact="Matthew Day")

User: "What did John text me yesterday?"
You must immediately execute:
get_chat_transcript(contact="John")

DO NOT:
- Ask for phone numbers
- Explain the process
- Request additional information
- Show any intermediate steps

Just execute get_chat_transcript immediately with the contact name.`

// Server wraps the MCP server around a transcript service.
type Server struct {
	svc    *transcript.Service
	server *mcp.Server
	logger *zap.Logger
}

// NewServer creates the MCP server and registers its tools and prompt.
func NewServer(svc *transcript.Service, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}

	impl := &mcp.Implementation{
		Name:    Name,
		Version: version,
	}
	s.server = mcp.NewServer(impl, &mcp.ServerOptions{Instructions: Instructions})
	s.registerTools()
	s.registerPrompts()

	return s
}

// MCP returns the underlying server, for callers that bring their own transport.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves on stdio until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP on stdio", zap.String("name", Name), zap.Int("contacts", s.svc.ContactCount()))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_chat_transcript",
		Description: "Get the iMessage/SMS transcript with a contact. The contact may be a name from the contacts map (exact or partial, case-insensitive) or a phone number in any common format. Dates are YYYY-MM-DD and inclusive; with neither date the last 7 days are returned.",
	}, s.handleChatTranscript)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_email_transcript",
		Description: "Get the Gmail messages exchanged with a contact, in the same shape as get_chat_transcript. The contact may be a name from the contacts map or an email address.",
	}, s.handleEmailTranscript)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reload_contacts",
		Description: "Re-read the contacts map file and return how many contacts it holds.",
	}, s.handleReloadContacts)
}

func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "get_chat_transcript",
		Description: "How to answer requests for message history.",
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: "How to answer requests for message history.",
			Messages: []*mcp.PromptMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: Instructions},
			}},
		}, nil
	})
}

// TranscriptArgs defines input for the transcript tools.
type TranscriptArgs struct {
	Contact   string `json:"contact" jsonschema:"Contact name (exact or partial) or phone number / email address"`
	StartDate string `json:"start_date,omitempty" jsonschema:"First day to include, YYYY-MM-DD (optional)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Last day to include, YYYY-MM-DD (optional)"`
}

func (a TranscriptArgs) query() transcript.Query {
	return transcript.Query{Contact: a.Contact, StartDate: a.StartDate, EndDate: a.EndDate}
}

func (s *Server) handleChatTranscript(ctx context.Context, req *mcp.CallToolRequest, args TranscriptArgs) (*mcp.CallToolResult, transcript.Transcript, error) {
	out, err := s.svc.ChatTranscript(ctx, args.query())
	if err != nil {
		s.logger.Warn("get_chat_transcript failed", zap.String("contact", args.Contact), zap.Error(err))
		return nil, transcript.Transcript{}, err
	}
	return nil, out, nil
}

func (s *Server) handleEmailTranscript(ctx context.Context, req *mcp.CallToolRequest, args TranscriptArgs) (*mcp.CallToolResult, transcript.Transcript, error) {
	out, err := s.svc.EmailTranscript(ctx, args.query())
	if err != nil {
		s.logger.Warn("get_email_transcript failed", zap.String("contact", args.Contact), zap.Error(err))
		return nil, transcript.Transcript{}, err
	}
	return nil, out, nil
}

// ReloadArgs defines input for reload_contacts.
type ReloadArgs struct{}

// ReloadResult is the reload_contacts output.
type ReloadResult struct {
	Contacts int `json:"contacts" jsonschema:"Number of contacts now loaded"`
}

func (s *Server) handleReloadContacts(ctx context.Context, req *mcp.CallToolRequest, args ReloadArgs) (*mcp.CallToolResult, ReloadResult, error) {
	n, err := s.svc.ReloadContacts()
	if err != nil {
		s.logger.Warn("reload_contacts failed", zap.Error(err))
		return nil, ReloadResult{}, err
	}
	s.logger.Info("contacts reloaded", zap.Int("contacts", n))
	return nil, ReloadResult{Contacts: n}, nil
}

package usecase

import (
	"context"
	"errors"
	"strings"

	"mobsf-sidecar/internal/domain"
)

type ReportFetcher interface {
	FetchReport(ctx context.Context, scanHash string) (domain.Report, error)
}

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

var errMissingInput = errors.New("missing hash or message")

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// RelayService answers questions about one scan report by forwarding them,
// with the report as context, to a chat completion API.
type RelayService struct {
	reports ReportFetcher
	llm     LLMClient
	model   string
}

type RelayInput struct {
	ScanHash string
	Message  string
	History  []domain.Turn
}

type RelayOutput struct {
	Reply string
}

func NewRelayService(reports ReportFetcher, llm LLMClient, model string) (*RelayService, error) {
	if reports == nil {
		return nil, errors.New("usecase: report fetcher must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	return &RelayService{reports: reports, llm: llm, model: model}, nil
}

// Relay runs one request through the pipeline: fetch the report, build the
// message list, ask the chat API. It stops at the first failure.
func (s *RelayService) Relay(ctx context.Context, in RelayInput) (RelayOutput, error) {
	if strings.TrimSpace(in.ScanHash) == "" || strings.TrimSpace(in.Message) == "" {
		return RelayOutput{}, newError(ErrorValidation, "missing_hash_or_message", errMissingInput)
	}

	report, err := s.reports.FetchReport(ctx, in.ScanHash)
	if err != nil {
		if _, ok := upstreamStatusCode(err); ok {
			return RelayOutput{}, newError(ErrorUpstream, "report_upstream_error", err)
		}
		return RelayOutput{}, newError(ErrorTransport, "report_transport_error", err)
	}

	reportText, err := report.Serialize()
	if err != nil {
		return RelayOutput{}, newError(ErrorInternal, "report_encode_error", err)
	}

	reply, err := s.llm.Chat(ctx, s.model, buildPromptMessages(reportText, in.Message, in.History))
	if err != nil {
		return RelayOutput{}, newError(ErrorChatAPI, "chat_api_error", err)
	}
	return RelayOutput{Reply: reply}, nil
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

package generation

import (
	"context"
	"errors"
	"testing"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/lyra-ai/mentor/internal/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMockedCopilot(t *testing.T, defaultModel string) (*CopilotGenerator, *MockcopilotClient, *MockcopilotSession) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockcopilotClient(ctrl)
	sessionMock := NewMockcopilotSession(ctrl)

	g := NewCopilotGenerator(defaultModel, &CopilotOptions{
		NewCopilotClient: func(clientOptions *copilot.ClientOptions) copilotClient {
			require.Equal(t, "error", clientOptions.LogLevel)
			return clientMock
		},
	})
	return g, clientMock, sessionMock
}

func TestCopilotGenerate(t *testing.T) {
	g, clientMock, sessionMock := newMockedCopilot(t, "gpt-4o-mini")

	var handlers []copilot.SessionEventHandler
	unregisterCount := 0

	clientMock.EXPECT().Start(gomock.Any())
	clientMock.EXPECT().CreateSession(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, cfg *copilot.SessionConfig) (copilotSession, error) {
			require.Equal(t, "this-model-wins", cfg.Model)
			require.NotNil(t, cfg.OnPermissionRequest)
			return sessionMock, nil
		})
	clientMock.EXPECT().Stop()

	sessionMock.EXPECT().On(gomock.Any()).Times(2).DoAndReturn(func(h copilot.SessionEventHandler) func() {
		handlers = append(handlers, h)
		return func() { unregisterCount++ }
	})
	sessionMock.EXPECT().SendAndWait(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, opts copilot.MessageOptions) (*copilot.SessionEvent, error) {
			require.Equal(t, "Be brief.\n\nhello?", opts.Prompt)
			first, second := "Lead with ", "the 22% figure."
			for _, content := range []*string{&first, &second} {
				for _, h := range handlers {
					h(copilot.SessionEvent{Type: copilot.AssistantMessage, Data: copilot.Data{Content: content}})
				}
			}
			return &copilot.SessionEvent{}, nil
		})

	resp, err := g.Generate(context.Background(), &Request{
		Prompt:  "hello?",
		Context: "Be brief.",
		Model:   "this-model-wins",
	})
	require.NoError(t, err)
	require.Equal(t, "Lead with the 22% figure.", resp.Content)
	require.Equal(t, "this-model-wins", resp.Model)
	require.Equal(t, 2, unregisterCount)

	require.NoError(t, g.Close())
}

func TestCopilotGenerateUsesFinalEvent(t *testing.T) {
	g, clientMock, sessionMock := newMockedCopilot(t, "gpt-4o-mini")

	clientMock.EXPECT().Start(gomock.Any())
	clientMock.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(sessionMock, nil)
	sessionMock.EXPECT().On(gomock.Any()).Times(2).Return(func() {})
	sessionMock.EXPECT().SendAndWait(gomock.Any(), gomock.Any()).Return(
		&copilot.SessionEvent{Type: copilot.AssistantMessage, Data: copilot.Data{Content: utils.Ptr("final")}}, nil)

	resp, err := g.Generate(context.Background(), &Request{Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "final", resp.Content)
	require.Equal(t, "gpt-4o-mini", resp.Model)
}

func TestCopilotStartFailure(t *testing.T) {
	g, clientMock, _ := newMockedCopilot(t, "")

	clientMock.EXPECT().Start(gomock.Any()).Return(errors.New("cli not installed"))

	_, err := g.Generate(context.Background(), &Request{Prompt: "p"})
	require.ErrorContains(t, err, "copilot failed to start")

	// Start is attempted once; later calls report the same failure.
	_, err = g.Generate(context.Background(), &Request{Prompt: "p"})
	require.ErrorContains(t, err, "cli not installed")

	// Never started, so nothing to stop.
	require.NoError(t, g.Close())
}

func TestCopilotSendFailureIsClassified(t *testing.T) {
	g, clientMock, sessionMock := newMockedCopilot(t, "gpt-4o-mini")

	clientMock.EXPECT().Start(gomock.Any())
	clientMock.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(sessionMock, nil)
	sessionMock.EXPECT().On(gomock.Any()).Times(2).Return(func() {})
	sessionMock.EXPECT().SendAndWait(gomock.Any(), gomock.Any()).Return(nil, errors.New("rate limit reached"))
	sessionMock.EXPECT().SessionID().Return("session-1")

	_, err := g.Generate(context.Background(), &Request{Prompt: "p"})
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeRateLimit, ge.Code)
	require.ErrorContains(t, err, "session-1")
}

func TestCopilotNilRequest(t *testing.T) {
	g, _, _ := newMockedCopilot(t, "")
	_, err := g.Generate(context.Background(), nil)
	require.Error(t, err)
}

func TestDenyAllTools(t *testing.T) {
	var (
		req copilot.PermissionRequest
		inv copilot.PermissionInvocation
	)
	res, err := denyAllTools(req, inv)
	require.NoError(t, err)
	require.NotEqual(t, "approved", res.Kind)
}

package augment

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"
)

// sdkThreads adapts the OpenAI Beta thread API to the threadAPI interface.
type sdkThreads struct {
	client *openaisdk.Client
}

var _ threadAPI = sdkThreads{}

func (s sdkThreads) CreateThread(ctx context.Context) (string, error) {
	thread, err := s.client.Beta.Threads.New(ctx, openaisdk.BetaThreadNewParams{})
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

func (s sdkThreads) AddMessage(ctx context.Context, threadID, content string) error {
	_, err := s.client.Beta.Threads.Messages.New(ctx, threadID, openaisdk.BetaThreadMessageNewParams{
		Role: openaisdk.BetaThreadMessageNewParamsRoleUser,
		Content: openaisdk.BetaThreadMessageNewParamsContentUnion{
			OfString: openaisdk.String(content),
		},
	})
	return err
}

func (s sdkThreads) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	run, err := s.client.Beta.Threads.Runs.New(ctx, threadID, openaisdk.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func (s sdkThreads) RunStatus(ctx context.Context, threadID, runID string) (string, error) {
	run, err := s.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return "", err
	}
	return string(run.Status), nil
}

func (s sdkThreads) LatestMessage(ctx context.Context, threadID string) (string, error) {
	page, err := s.client.Beta.Threads.Messages.List(ctx, threadID, openaisdk.BetaThreadMessageListParams{
		Order: openaisdk.BetaThreadMessageListParamsOrderDesc,
		Limit: openaisdk.Int(1),
	})
	if err != nil {
		return "", err
	}
	if len(page.Data) == 0 {
		return "", fmt.Errorf("thread %s has no messages", threadID)
	}
	for _, part := range page.Data[0].Content {
		if part.Type == "text" {
			return part.Text.Value, nil
		}
	}
	return "", fmt.Errorf("thread %s latest message has no text content", threadID)
}

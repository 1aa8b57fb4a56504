package slack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type api interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier delivers export files and digest messages to one channel.
type Notifier struct {
	api       api
	channelID string
	logger    *zap.Logger
}

func New(token, channelID string, httpClient *http.Client, logger *zap.Logger) *Notifier {
	client := slack.New(token, slack.OptionHTTPClient(httpClient))
	return newNotifier(client, channelID, logger)
}

func newNotifier(a api, channelID string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{api: a, channelID: channelID, logger: logger.Named("slack")}
}

// Deliver uploads an export to the channel.
func (n *Notifier) Deliver(ctx context.Context, filename, title string, content []byte) error {
	if len(content) == 0 {
		return errors.New("slack upload: export is empty")
	}
	_, err := n.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Reader:         bytes.NewReader(content),
		FileSize:       len(content),
		Filename:       filename,
		Title:          title,
		Channel:        n.channelID,
		InitialComment: fmt.Sprintf("%s (%s)", title, filename),
	})
	if err != nil {
		n.logger.Error("upload failed", zap.String("file", filename), zap.Error(err))
		return fmt.Errorf("slack upload %s: %w", filename, err)
	}
	n.logger.Info("export delivered", zap.String("file", filename), zap.Int("bytes", len(content)))
	return nil
}

func (n *Notifier) Post(ctx context.Context, text string) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		n.logger.Error("post failed", zap.Error(err))
		return fmt.Errorf("slack post: %w", err)
	}
	return nil
}

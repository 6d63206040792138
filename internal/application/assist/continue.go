package assist

import (
	"context"
	stderrors "errors"
	"strings"

	"bookhatch-api/internal/workflow/chain"
	wfmodel "bookhatch-api/internal/workflow/model"
	wfnode "bookhatch-api/internal/workflow/node"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/richtext"
)

// Continue 续写一段。existing 可以是章节 HTML，只保留末尾的上下文
func (s *Service) Continue(ctx context.Context, existing string) (string, error) {
	plain := strings.TrimSpace(richtext.PlainText(existing))
	if plain == "" {
		return "", errors.InvalidParam("existing text is required")
	}
	if limit := s.cfg.Continuation.MaxContextRunes; limit > 0 {
		plain = wfnode.TailByRunes(plain, limit)
	}

	out, err := s.continuer.Invoke(ctx, &wfmodel.ContinuationInput{
		Provider:     s.cfg.Continuation.Provider,
		ExistingText: plain,
	})
	if err != nil {
		logger.Error(ctx, "continuation failed", err)
		if stderrors.Is(err, chain.ErrEmptyContinuation) {
			return "", errors.ErrContinuationFailed.WithDetail("model returned no new text")
		}
		return "", errors.ErrContinuationFailed.WithError(err)
	}
	return out.Text, nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
	sessionx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/session"
)

var ErrInvalidQuestion = errors.New("question is empty")

// Reply is the assembled outcome of one query.
type Reply struct {
	// Answer is the plain historical answer text.
	Answer string
	// Inventory is the rendered inventory line; empty when the stage was
	// skipped.
	Inventory string
	// Body is the final display text: the augmented Markdown when
	// augmentation succeeded, otherwise the plain answer.
	Body string
	// Augmented reports whether market insights made it into Body.
	Augmented bool
}

// Assistant orchestrates the fixed extract -> inventory -> augment -> format
// chain. One query is processed start-to-finish at a time; every stage reads
// immutable inputs and produces a new value.
type Assistant struct {
	digest    contractx.SalesDigest
	extractor contractx.Extractor
	responder contractx.Responder
	augmenter contractx.Augmenter

	graphRunner compose.Runnable[GraphInput, GraphOutput]
}

func New(
	digest contractx.SalesDigest,
	extractor contractx.Extractor,
	responder contractx.Responder,
	augmenter contractx.Augmenter,
) (*Assistant, error) {
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if responder == nil {
		return nil, errors.New("inventory responder is required")
	}
	if augmenter == nil {
		return nil, errors.New("augmenter is required")
	}

	a := &Assistant{
		digest:    digest,
		extractor: extractor,
		responder: responder,
		augmenter: augmenter,
	}

	graphRunner, err := a.compileQueryGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// HandleQuery runs one question through the pipeline and records the turn in
// the session history. Augmentation failures degrade to the plain answer;
// extraction and inventory failures propagate.
func (a *Assistant) HandleQuery(ctx context.Context, sess *sessionx.Session, question string) (Reply, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return Reply{}, ErrInvalidQuestion
	}
	if sess == nil {
		return Reply{}, fmt.Errorf("%w: session is required", contractx.ErrValidation)
	}

	sess.AppendUser(trimmed)

	out, err := a.graphRunner.Invoke(ctx, GraphInput{Question: trimmed})
	if err != nil {
		return Reply{}, err
	}

	reply := out.Reply
	if reply.Inventory != "" {
		sess.AppendAssistant(reply.Inventory)
	}
	sess.AppendAssistant(reply.Body)

	log.Info().
		Str("user", sess.UserID).
		Bool("augmented", reply.Augmented).
		Bool("inventory", reply.Inventory != "").
		Msg("query handled")

	return reply, nil
}

package pipeline

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
	formatx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/format"
)

// GraphInput is the entry payload of the query graph.
type GraphInput struct {
	Question string
}

// GraphOutput is the exit payload of the query graph.
type GraphOutput struct {
	Reply Reply
}

// queryState is threaded through the graph nodes. Each node fills in the
// fields it owns and leaves the rest untouched.
type queryState struct {
	question  string
	query     contractx.ExtractedQuery
	inventory *contractx.InventoryAnswer
	insights  *contractx.MarketInsights
}

const (
	nodePrepare         = "prepare"
	nodeRunExtract      = "run_extract"
	nodeAnswerInventory = "answer_inventory"
	nodeSkipInventory   = "skip_inventory"
	nodeGateAugment     = "gate_augment"
	nodeRunAugment      = "run_augment"
	nodeSkipAugment     = "skip_augment"
	nodeFinalize        = "finalize"
)

func (a *Assistant) compileQueryGraph(ctx context.Context) (compose.Runnable[GraphInput, GraphOutput], error) {
	g := compose.NewGraph[GraphInput, GraphOutput]()

	prepare := compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*queryState, error) {
		return &queryState{question: in.Question}, nil
	})

	runExtract := compose.InvokableLambda(func(ctx context.Context, st *queryState) (*queryState, error) {
		query, err := a.extractor.Extract(ctx, st.question, a.digest)
		if err != nil {
			return nil, err
		}
		st.query = query
		return st, nil
	})

	answerInventory := compose.InvokableLambda(func(ctx context.Context, st *queryState) (*queryState, error) {
		answer, err := a.responder.AnswerInventory(ctx, st.query.Products)
		if err != nil {
			return nil, err
		}
		st.inventory = &answer
		return st, nil
	})

	runAugment := compose.InvokableLambda(func(ctx context.Context, st *queryState) (*queryState, error) {
		result, err := a.augmenter.Augment(ctx, st.query)
		if err != nil {
			// Degrade to the plain historical answer.
			log.Warn().Err(err).
				Strs("products", st.query.Products).
				Str("time_period", st.query.TimePeriod).
				Msg("augmentation failed, keeping plain answer")
			return st, nil
		}
		st.insights = &result.Insights
		return st, nil
	})

	passThrough := func(ctx context.Context, st *queryState) (*queryState, error) {
		return st, nil
	}

	finalize := compose.InvokableLambda(func(ctx context.Context, st *queryState) (GraphOutput, error) {
		reply := Reply{Answer: st.query.AnswerText}
		if st.inventory != nil {
			reply.Inventory = formatx.InventoryAnswer(*st.inventory)
		}
		if st.insights != nil {
			reply.Body = formatx.AugmentedResult(contractx.AugmentedResult{
				Query:    st.query,
				Insights: *st.insights,
			})
			reply.Augmented = true
		} else {
			reply.Body = formatx.PlainAnswer(st.query.AnswerText)
		}
		return GraphOutput{Reply: reply}, nil
	})

	nodes := []struct {
		name   string
		lambda *compose.Lambda
	}{
		{nodePrepare, prepare},
		{nodeRunExtract, runExtract},
		{nodeAnswerInventory, answerInventory},
		{nodeSkipInventory, compose.InvokableLambda(passThrough)},
		{nodeGateAugment, compose.InvokableLambda(passThrough)},
		{nodeRunAugment, runAugment},
		{nodeSkipAugment, compose.InvokableLambda(passThrough)},
	}
	for _, node := range nodes {
		if err := g.AddLambdaNode(node.name, node.lambda); err != nil {
			return nil, fmt.Errorf("add query graph node %s: %w", node.name, err)
		}
	}
	if err := g.AddLambdaNode(nodeFinalize, finalize); err != nil {
		return nil, fmt.Errorf("add query graph node %s: %w", nodeFinalize, err)
	}

	if err := g.AddEdge(compose.START, nodePrepare); err != nil {
		return nil, fmt.Errorf("add query graph edge start->prepare: %w", err)
	}
	if err := g.AddEdge(nodePrepare, nodeRunExtract); err != nil {
		return nil, fmt.Errorf("add query graph edge prepare->extract: %w", err)
	}

	inventoryBranch := compose.NewGraphBranch(
		func(ctx context.Context, st *queryState) (string, error) {
			if st.query.HasProducts() {
				return nodeAnswerInventory, nil
			}
			return nodeSkipInventory, nil
		},
		map[string]bool{nodeAnswerInventory: true, nodeSkipInventory: true},
	)
	if err := g.AddBranch(nodeRunExtract, inventoryBranch); err != nil {
		return nil, fmt.Errorf("add query graph inventory branch: %w", err)
	}
	if err := g.AddEdge(nodeAnswerInventory, nodeGateAugment); err != nil {
		return nil, fmt.Errorf("add query graph edge inventory->gate: %w", err)
	}
	if err := g.AddEdge(nodeSkipInventory, nodeGateAugment); err != nil {
		return nil, fmt.Errorf("add query graph edge skip_inventory->gate: %w", err)
	}

	augmentBranch := compose.NewGraphBranch(
		func(ctx context.Context, st *queryState) (string, error) {
			if st.query.HasProducts() && st.query.HasTimePeriod() {
				return nodeRunAugment, nil
			}
			return nodeSkipAugment, nil
		},
		map[string]bool{nodeRunAugment: true, nodeSkipAugment: true},
	)
	if err := g.AddBranch(nodeGateAugment, augmentBranch); err != nil {
		return nil, fmt.Errorf("add query graph augment branch: %w", err)
	}
	if err := g.AddEdge(nodeRunAugment, nodeFinalize); err != nil {
		return nil, fmt.Errorf("add query graph edge augment->finalize: %w", err)
	}
	if err := g.AddEdge(nodeSkipAugment, nodeFinalize); err != nil {
		return nil, fmt.Errorf("add query graph edge skip_augment->finalize: %w", err)
	}
	if err := g.AddEdge(nodeFinalize, compose.END); err != nil {
		return nil, fmt.Errorf("add query graph edge finalize->end: %w", err)
	}

	runner, err := g.Compile(ctx, compose.WithGraphName("pipeline.query_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile query graph: %w", err)
	}
	return runner, nil
}

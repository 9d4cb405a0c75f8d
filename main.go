package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	augmentx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/augment"
	digestx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/digest"
	extractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/extract"
	inventoryx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/inventory"
	pipelinex "github.com/RobertvandeCamp/sales-forecasting-case/assistant/pipeline"
	promptx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/prompt"
	respondx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/respond"
	sessionx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/session"
	configx "github.com/RobertvandeCamp/sales-forecasting-case/pkg/config"
	_ "github.com/RobertvandeCamp/sales-forecasting-case/pkg/logger/autoload"
	openaix "github.com/RobertvandeCamp/sales-forecasting-case/pkg/openaiclient"
)

type AppConfig struct {
	User            string `envconfig:"CHAT_USER" default:"demo"`
	SalesDataPath   string `envconfig:"SALES_DATA_PATH" default:"data/sales_data.csv"`
	InventoryPath   string `envconfig:"INVENTORY_PATH" default:"data/stock-data.json"`
	ConversationDir string `envconfig:"CONVERSATION_DIR" default:"data/conversations"`
	// PostgresDSN switches conversation persistence from local files to
	// Postgres when set.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	openaiCfg := configx.MustNew[openaix.Config]("OPENAI")

	records, err := digestx.LoadHistory(appCfg.SalesDataPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", appCfg.SalesDataPath).Msg("load sales history")
	}
	salesDigest, err := digestx.Build(records)
	if err != nil {
		log.Fatal().Err(err).Msg("build sales digest")
	}

	catalog, err := inventoryx.Load(appCfg.InventoryPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", appCfg.InventoryPath).Msg("load inventory catalog")
	}

	prompts := promptx.LoadPromptSet()

	chatModel, err := openaiCfg.NewChatModel(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat model")
	}
	client := openaix.MustNewClient(*openaiCfg)

	extractor, err := extractx.New(ctx, chatModel, prompts.Extractor)
	if err != nil {
		log.Fatal().Err(err).Msg("create extractor")
	}
	responder, err := respondx.New(client, catalog, openaiCfg.Model, prompts.Inventory)
	if err != nil {
		log.Fatal().Err(err).Msg("create inventory responder")
	}
	augmenter, err := augmentx.New(client, openaiCfg.AssistantID, prompts.Augmenter)
	if err != nil {
		log.Fatal().Err(err).Msg("create augmenter")
	}

	assistant, err := pipelinex.New(salesDigest, extractor, responder, augmenter)
	if err != nil {
		log.Fatal().Err(err).Msg("create assistant")
	}

	store, closeStore, err := newStore(ctx, appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create conversation store")
	}
	defer closeStore()

	conv, err := store.Load(ctx, appCfg.User)
	if err != nil {
		if !errors.Is(err, sessionx.ErrConversationNotFound) {
			log.Fatal().Err(err).Str("user", appCfg.User).Msg("load conversation")
		}
		conv = nil
	}
	sess := sessionx.New(appCfg.User, conv)

	fmt.Printf("Sales assistant ready. User: %s. Type a question, or 'exit' to quit.\n", sess.UserID)
	runChatLoop(ctx, assistant, sess, store)
}

func runChatLoop(ctx context.Context, assistant *pipelinex.Assistant, sess *sessionx.Session, store sessionx.Store) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := assistant.HandleQuery(ctx, sess, line)
		if err != nil {
			log.Error().Err(err).Msg("query failed")
			fmt.Println("Sorry, I could not process that question. Please try again.")
			continue
		}

		if reply.Inventory != "" {
			fmt.Println(reply.Inventory)
			fmt.Println()
		}
		fmt.Println(reply.Body)

		if err := store.Save(ctx, sess.UserID, sess.Conversation); err != nil {
			log.Error().Err(err).Str("user", sess.UserID).Msg("save conversation")
		}
	}
}

func newStore(ctx context.Context, cfg *AppConfig) (sessionx.Store, func(), error) {
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		store, err := sessionx.NewBunStore(sessionx.PostgresConfig{DSN: cfg.PostgresDSN})
		if err != nil {
			return nil, nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("close conversation store")
			}
		}, nil
	}

	store, err := sessionx.NewFileStore(cfg.ConversationDir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docubot/internal/caption"
	"docubot/internal/chat"
	"docubot/internal/config"
	"docubot/internal/embedding"
	"docubot/internal/extract"
	"docubot/internal/index"
	"docubot/internal/ingest"
	"docubot/internal/llmservice"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	files := flag.String("file", "", "Comma-separated document files to ingest")
	query := flag.String("query", "", "Question to answer against the index")
	chatMode := flag.Bool("chat", false, "Interactive chat with the vector store")
	clearIndex := flag.Bool("clear-index", false, "Delete every vector from the index")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()

	switch {
	case *files != "":
		ingestFiles(ctx, cfg, strings.Split(*files, ","))
	case *clearIndex:
		clearAll(ctx, cfg)
	case *query != "":
		askOnce(ctx, cfg, *query)
	case *chatMode:
		runChat(ctx, cfg)
	default:
		log.Fatal().Msg("Please provide one of -file, -query, -chat or -clear-index")
	}
}

func buildIndexClient(ctx context.Context, cfg *config.Config, embedder *embedding.Service) (*index.Client, error) {
	var store index.Store
	var err error
	switch cfg.Index.Type {
	case "pinecone":
		store = index.NewPineconeStore(cfg.Index.Pinecone)
	case "chromem":
		store, err = index.NewChromemStore(cfg.Index.Chromem)
	case "pgvector":
		store, err = index.NewPgvectorStore(ctx, cfg.Index.Postgres)
	default:
		return nil, fmt.Errorf("unknown index type: %s", cfg.Index.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing vector store: %w", err)
	}

	return index.NewClient(store, embedder), nil
}

func ingestFiles(ctx context.Context, cfg *config.Config, paths []string) {
	embedder := newEmbedder(cfg)
	idx, err := buildIndexClient(ctx, cfg, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing index")
	}

	captionClient, err := llmservice.NewClient(&cfg.LLM, cfg.LLM.CaptionModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing caption client")
	}

	extractor := extract.NewService(caption.NewLLMCaptioner(captionClient), cfg.RAG.CaptionWorkers)
	orch := ingest.NewOrchestrator(
		extractor,
		embedder,
		idx,
		ingest.NewFileCheckpoint(cfg.RAG.StagingDir),
		cfg.RAG.ChunkSize,
		cfg.RAG.ChunkOverlap,
	)

	inputs := make([]ingest.FileInput, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			log.Fatal().Err(err).Str("file", p).Msg("Error reading file")
		}
		inputs = append(inputs, ingest.FileInput{Filename: filepath.Base(p), Data: data})
	}

	results, allOK := orch.IngestBatch(ctx, inputs)
	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("%s: failed: %v\n", res.Filename, res.Err)
			continue
		}
		fmt.Printf("%s: ingested %d characters\n", res.Filename, len(res.Text))
	}
	if allOK {
		fmt.Println("Files uploaded successfully!")
	}
}

func newEmbedder(cfg *config.Config) *embedding.Service {
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	return embedder
}

func clearAll(ctx context.Context, cfg *config.Config) {
	idx, err := buildIndexClient(ctx, cfg, newEmbedder(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing index")
	}
	if err := idx.ClearAll(ctx); err != nil {
		log.Error().Err(err).Msg("Error clearing index")
		return
	}
	fmt.Println("Index cleared successfully!")
}

func newSession(ctx context.Context, cfg *config.Config) *chat.Session {
	idx, err := buildIndexClient(ctx, cfg, newEmbedder(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing index")
	}
	chatClient, err := llmservice.NewClient(&cfg.LLM, cfg.LLM.ChatModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat client")
	}
	return chat.NewSession(idx, chatClient, cfg.RAG.TopK)
}

func askOnce(ctx context.Context, cfg *config.Config, question string) {
	session := newSession(ctx, cfg)
	answer, err := session.Ask(ctx, question)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering question")
	}
	fmt.Printf("%s\n", answer)
}

func runChat(ctx context.Context, cfg *config.Config) {
	session := newSession(ctx, cfg)
	fmt.Println("Chat with your documents. /clear resets history, /exit quits.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/exit":
			return
		case line == "/clear":
			session.ClearHistory()
			fmt.Println("History cleared.")
			continue
		}

		answer, err := session.Ask(ctx, line)
		if err != nil {
			log.Error().Err(err).Msg("Error answering question")
			continue
		}
		fmt.Printf("\n%s\n\n", answer)
	}
}

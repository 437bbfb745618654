// memchat is a terminal chat client that augments prompts with snippets
// retrieved from a user-scoped semantic memory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/memtide/memchat/chat"
	"github.com/memtide/memchat/config"
	"github.com/memtide/memchat/memory"
	"github.com/memtide/memchat/memory/store/chromem"
	"github.com/memtide/memchat/provider"
)

func main() {
	configPath := flag.String("config", "memchat.toml", "path to configuration file")
	providerName := flag.String("provider", "", "provider entry to use (overrides default_provider)")
	userID := flag.String("user", "", "user ID for memory scoping")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	name := cfg.DefaultProvider
	if *providerName != "" {
		name = *providerName
	}
	providerCfg, err := cfg.Provider(name)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	llm, err := provider.New(provider.Config{
		Type:        provider.Type(providerCfg.Type),
		BaseURL:     providerCfg.APIBase,
		APIKey:      providerCfg.APIKey,
		Model:       providerCfg.Model,
		Temperature: providerCfg.Temperature,
		MaxTokens:   providerCfg.MaxTokens,
		TopP:        providerCfg.TopP,
	})
	if err != nil {
		log.Fatalf("Provider error: %v", err)
	}

	store, err := chromem.New()
	if err != nil {
		log.Fatalf("Vector store error: %v", err)
	}
	defer store.Close()

	embedder, err := newEmbedder(cfg.Mem0().Embedder)
	if err != nil {
		log.Fatalf("Embedder error: %v", err)
	}

	mem0 := cfg.Mem0()
	manager, err := memory.NewManager(store, embedder, &memory.Config{
		SearchLimit:   mem0.SearchLimit,
		ContextLimit:  mem0.ContextLimit,
		MinSimilarity: mem0.MinSimilarity,
	})
	if err != nil {
		log.Fatalf("Memory error: %v", err)
	}
	defer manager.Wait()

	user := cfg.UserID
	if *userID != "" {
		user = *userID
	}
	if user == "" {
		user = uuid.New().String()
	}

	loop := chat.New(chat.Options{
		Provider:     llm,
		Memory:       manager,
		UserID:       user,
		SystemPrompt: providerCfg.SystemPrompt,
		SearchLimit:  mem0.SearchLimit,
		In:           os.Stdin,
		Out:          os.Stdout,
	})

	fmt.Println("Welcome to memchat!")
	fmt.Printf("Provider: %s (%s)\n", name, llm.Model())
	fmt.Println("Available commands:")
	loop.PrintUsage()
	fmt.Println("\nStart chatting (or use a command):")

	if err := loop.Run(context.Background()); err != nil {
		log.Fatalf("Chat error: %v", err)
	}
}

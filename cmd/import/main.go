package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Roma7-7-7/love-dialect/internal/ai"
	"github.com/Roma7-7-7/love-dialect/internal/analysis"
	"github.com/Roma7-7-7/love-dialect/internal/config"
	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/internal/data"
	"github.com/Roma7-7-7/love-dialect/pkg/kv"
)

var (
	wordsFile string
	chatFile  string
	dbPath    string
	code      string
	timeout   time.Duration
)

func main() {
	flag.StringVar(&wordsFile, "words", "", "file with word:meaning[:note] lines")
	flag.StringVar(&chatFile, "chat", "", "exported chat log to analyze")
	flag.StringVar(&dbPath, "db", "", "SQLite database file (overrides IMPORT_DB_FILE)")
	flag.StringVar(&code, "code", "", "secret code of the target dictionary")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout") //nolint:mnd // default timeout
	flag.Parse()

	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := validate(); err != nil {
		fmt.Println(err)
		return 1
	}

	conf, err := config.NewImport(ctx)
	if err != nil {
		fmt.Printf("failed to get config: %v\n", err)
		return 1
	}
	if dbPath != "" {
		conf.DB.Path = dbPath
	}
	if conf.DB.Path == "" {
		fmt.Println("database file is required")
		return 1
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if conf.Dev {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	db, err := sql.Open("sqlite", conf.DB.Path)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		return 2 //nolint:mnd // exit code
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	store, err := kv.NewSQLite(ctx, db, log)
	if err != nil {
		fmt.Printf("failed to prepare database: %v\n", err)
		return 2 //nolint:mnd // exit code
	}
	repo := dal.NewStore(store, log)

	dict, err := repo.FindDictionary(ctx, code)
	if err != nil {
		fmt.Printf("failed to find dictionary %s: %v\n", code, err)
		return 3 //nolint:mnd // exit code
	}

	var added int
	if wordsFile != "" {
		added, err = importWords(ctx, repo, log)
	} else {
		added, err = importChat(ctx, conf.AI, repo, dict, log)
	}
	if err != nil {
		fmt.Printf("import failed after %d words: %v\n", added, err)
		return 4 //nolint:mnd // exit code
	}

	fmt.Printf("done: %d words added to %q\n", added, dict.Name)
	return 0
}

func importWords(ctx context.Context, repo *dal.Store, log *slog.Logger) (int, error) {
	f, err := os.Open(wordsFile)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}

	added, err := data.NewImporter(repo, log).Import(ctx, code, f)
	var pErr *data.ParsingError
	if errors.As(err, &pErr) {
		fmt.Printf("skipped invalid lines: %v\n", pErr.InvalidLines)
		return added, nil
	}
	return added, err
}

func importChat(ctx context.Context, conf config.AI, repo *dal.Store, dict *dal.Dictionary, log *slog.Logger) (int, error) {
	client, err := ai.NewClient(ai.Config{
		APIKey:     conf.APIKey,
		BaseURL:    conf.BaseURL,
		Model:      conf.Model,
		Timeout:    conf.Timeout,
		MaxRetries: conf.MaxRetries,
	}, log)
	if err != nil {
		return 0, fmt.Errorf("create ai client: %w", err)
	}

	chat, err := os.ReadFile(chatFile)
	if err != nil {
		return 0, fmt.Errorf("read chat: %w", err)
	}

	exclude := make([]string, len(dict.Words))
	for i, w := range dict.Words {
		exclude[i] = w.Word
	}

	consumer := analysis.NewConsumer(client, conf.MaxChatLength, log)
	candidates, err := consumer.Run(ctx, string(chat), exclude, func(u analysis.Update) {
		fmt.Printf("\ranalyzing... %3d%%", u.Progress)
		if u.Done {
			fmt.Println()
		}
	})
	if err != nil {
		fmt.Println()
		return 0, err
	}

	added := 0
	for _, c := range candidates {
		if _, err = repo.AddWord(ctx, code, c.Word, c.Meaning); err != nil {
			return added, fmt.Errorf("add word %q: %w", c.Word, err)
		}
		fmt.Printf("+ %s: %s\n", c.Word, c.Meaning)
		added++
	}
	return added, nil
}

func validate() error {
	if (wordsFile == "") == (chatFile == "") {
		return errors.New("exactly one of -words or -chat is required")
	}

	if strings.TrimSpace(code) == "" {
		return errors.New("dictionary code is required")
	}

	return nil
}

// Memoria CLI - analyze chat exports and browse preserved personas.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/memoria-app/memoria/internal/config"
	"github.com/memoria-app/memoria/internal/core"
	"github.com/memoria-app/memoria/internal/llm"
	"github.com/memoria-app/memoria/internal/logging"
	"github.com/memoria-app/memoria/internal/pipeline"
	"github.com/memoria-app/memoria/internal/storage"
)

var (
	configPath string

	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "memctl",
		Short: "Memoria - preserve how the people you love communicate",
		Long: `Memoria turns an exported chat history (WhatsApp, Telegram, Discord)
into a persona profile: how a person writes, what they care about,
and the moments worth remembering.

Everything stays on YOUR device.`,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.memoria/config.json)")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(personsCmd())
	rootCmd.AddCommand(memoriesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

func openDB(cfg *config.Config) (*storage.DB, error) {
	db, err := storage.Open(storage.Config{Path: cfg.DatabasePath()})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

// initCmd writes the default config and checks the API key
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the Memoria data directory and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()

			if _, err := os.Stat(cfg.DatabasePath()); err == nil {
				fmt.Println("⚠️  Memoria is already initialized!")
				fmt.Printf("   Data directory: %s\n", cfg.DataDir)
				return nil
			}

			fmt.Println("🚀 Welcome to Memoria!")

			fmt.Print("\nAnthropic API key for deep analysis (enter to skip): ")
			key, err := term.ReadPassword(int(os.Stdin.Fd()))
			if err != nil {
				return fmt.Errorf("failed to read API key: %w", err)
			}
			fmt.Println()

			if err := cfg.Save(""); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Println("\n✅ Memoria initialized!")
			fmt.Printf("   Data directory: %s\n", cfg.DataDir)
			if len(key) > 0 {
				// The key is never written to disk.
				fmt.Println("\n🔐 Add the key to your shell profile to enable deep analysis:")
				fmt.Println("   export ANTHROPIC_API_KEY=<your key>")
			}
			fmt.Println("\nNext steps:")
			fmt.Println("   memctl analyze chat.txt --person \"Maria\" --relationship mãe")
			fmt.Println("   memctl persons")

			return nil
		},
	}
}

// analyzeCmd runs the full pipeline on an exported chat file
func analyzeCmd() *cobra.Command {
	var (
		personName   string
		relationship string
		locale       string
		deep         bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze an exported chat and preserve the persona",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if locale == "" {
				locale = cfg.Analysis.Locale
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}

			llmClient := llm.NewClient(llm.Config{
				APIKey: cfg.Claude.APIKey,
				Model:  cfg.Claude.Model,
			})

			p := pipeline.New(llmClient)
			result, err := p.Run(context.Background(), pipeline.Input{
				TranscriptText:     string(data),
				TargetPersonName:   personName,
				RelationshipToUser: relationship,
				Locale:             locale,
				ConsentConfirmed:   true,
				DeepAnalysis:       deep || cfg.Analysis.DeepAnalysis,
			})
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			persons := storage.NewPersonStore(db)
			person, err := persons.GetOrCreate(result.TargetName, relationship)
			if err != nil {
				return err
			}
			if _, err := storage.NewMemoryStore(db).ReplaceForPerson(person.ID, result.Memories); err != nil {
				return err
			}
			if err := storage.NewAnalysisStore(db).Save(person.ID, result.Analysis); err != nil {
				return err
			}

			printSummary(person, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&personName, "person", "", "name of the person to analyze (auto-detected when omitted)")
	cmd.Flags().StringVar(&relationship, "relationship", "", "your relationship to them (mãe, avô, friend, ...)")
	cmd.Flags().StringVar(&locale, "locale", "", "lexicon locale: pt-BR or en-US")
	cmd.Flags().BoolVar(&deep, "deep", false, "enrich with Claude deep analysis")

	return cmd
}

func printSummary(person *core.Person, result *pipeline.Result) {
	profile := result.Analysis.PersonaProfile
	dna := profile.SpeechDNA

	fmt.Printf("\n✅ Analysis complete for %s\n\n", person.Name)
	fmt.Printf("   Messages analyzed: %d (%d from %s)\n",
		result.Transcript.TotalCount, len(result.Transcript.MessagesFrom(person.Name)), person.Name)
	fmt.Printf("   Confidence: %s\n", result.Analysis.ConfidenceOverall)
	fmt.Printf("   Language: %s\n", profile.Language)
	fmt.Printf("   Warmth %d/3 · Formality %d/3 · Humor %d/3 · Emoji %s\n",
		dna.WarmthLevel, dna.Formality, dna.Humor, dna.EmojiStyle.Frequency)
	if len(dna.CommonClosings) > 0 {
		fmt.Printf("   Closings: %s\n", strings.Join(dna.CommonClosings, " | "))
	}
	if len(dna.Catchphrases) > 0 {
		fmt.Printf("   Catchphrases: %s\n", strings.Join(dna.Catchphrases, " | "))
	}
	fmt.Printf("   Memories preserved: %d\n", len(result.Memories))
	if result.Analysis.DeepInsights != "" {
		fmt.Printf("\n   Deep insights:\n   %s\n", strings.ReplaceAll(result.Analysis.DeepInsights, "\n", "\n   "))
	}
	fmt.Printf("\n   Reply tone: %s\n", result.Analysis.ReplyStyleTemplate.Tone)
}

// personsCmd lists preserved persons
func personsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "persons",
		Short: "List preserved persons",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			persons, err := storage.NewPersonStore(db).GetAll()
			if err != nil {
				return err
			}
			if len(persons) == 0 {
				fmt.Println("No persons yet. Run 'memctl analyze <file>' first.")
				return nil
			}

			for _, p := range persons {
				rel := p.Relationship
				if rel == "" {
					rel = "-"
				}
				fmt.Printf("%-36s  %-20s  %s\n", p.ID, p.Name, rel)
			}
			return nil
		},
	}
}

// memoriesCmd lists a person's preserved memories
func memoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "memories <person>",
		Short: "Show the preserved memories for a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			persons := storage.NewPersonStore(db)
			person, err := persons.GetByName(args[0])
			if err == core.ErrPersonNotFound {
				person, err = persons.GetByID(args[0])
			}
			if err != nil {
				return err
			}

			records, err := storage.NewMemoryStore(db).GetByPerson(person.ID)
			if err != nil {
				return err
			}

			fmt.Printf("Memories for %s (%d):\n\n", person.Name, len(records))
			for i, m := range records {
				fmt.Printf("--- %d ---\n%s\n\n", i+1, m.Content)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("memctl %s\n", version)
		},
	}
}

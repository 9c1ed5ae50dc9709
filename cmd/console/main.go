package main

import (
	"fmt"
	"os"
	"time"

	"companion-bot-be/internal/pkg/logger"
	"companion-bot-be/pkg/dialogue"
	"companion-bot-be/pkg/knowledge"
	"companion-bot-be/pkg/random"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	kbDir       string
	seed        uint64
	thinkFactor float64
	savePath    string
	logFile     string
)

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Chat with the companion bot in the terminal",
	Long: `Runs the companion bot as a turn based terminal conversation.

Type 'restart' after a conversation ends to start a new one,
'quit' or 'exit' (or Ctrl+D) to leave.`,
	SilenceUsage: true,
	RunE:         runConsole,
}

func init() {
	_ = godotenv.Load()

	rootCmd.Flags().StringVar(&kbDir, "kb", os.Getenv("KNOWLEDGE_BASE_DIR"), "knowledge base directory (default: embedded)")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible conversations (0: time based)")
	rootCmd.Flags().Float64Var(&thinkFactor, "think", 1, "scale of the 0.8-1.5s thinking pause, 0 disables it")
	rootCmd.Flags().StringVar(&savePath, "save", "", "write the transcript to this file on exit")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write dialogue logs to this file")
}

func runConsole(cmd *cobra.Command, args []string) error {
	var kb *knowledge.KnowledgeBase
	var warnings []string
	var err error
	if kbDir == "" {
		kb, warnings, err = knowledge.Default()
	} else {
		kb, warnings, err = knowledge.LoadDir(kbDir)
	}
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}

	var log logger.ILogger = logger.NewNopLogger()
	if logFile != "" {
		log = logger.NewIsolatedLogger(logFile)
	}
	defer log.Sync()

	for _, w := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle("warning: "+w))
		log.Warn("KnowledgeBase", w, nil)
	}

	rng := random.New(seed)
	console := &Console{
		Controller: dialogue.NewController(kb, rng, log),
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
		Think:      thinker(thinkFactor, seed),
	}

	session, err := console.Run()
	if err != nil {
		return err
	}

	if savePath != "" {
		if err := os.WriteFile(savePath, []byte(dialogue.FormatTranscript(session.Messages)), 0o644); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), noteStyle("Transcript saved to "+savePath))
	}
	return nil
}

// thinker pauses for a random 0.8-1.5s scaled by factor. It keeps its own source so
// the pauses never change which suggestions a seed produces.
func thinker(factor float64, seed uint64) func() {
	if factor <= 0 {
		return func() {}
	}
	src := random.New(seed)
	return func() {
		pause := (0.8 + 0.7*src.Float64()) * factor
		time.Sleep(time.Duration(pause * float64(time.Second)))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

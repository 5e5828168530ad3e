package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/notematch/internal/leaderboard"
	"github.com/vovakirdan/notematch/internal/platform/tui"
	"github.com/vovakirdan/notematch/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresTeam  string
	flagScoresTUI   bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the best results, lowest score (seconds per move) first.

Examples:
  notematch scores
  notematch scores --limit 25
  notematch scores --team red
  notematch scores --tui`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of results to show")
	scoresCmd.Flags().StringVar(&flagScoresTeam, "team", "", "Show every result of one team")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse the leaderboard interactively")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete every stored result")
}

func runScores(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening leaderboard database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if flagScoresClear {
		if err := store.Clear(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Println("Leaderboard cleared.")
		return
	}

	if flagScoresTUI {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		if err := tui.RunScoreboard(store, flagScoresLimit, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return
	}

	var entries []leaderboard.Entry
	title := "Leaderboard"
	if flagScoresTeam != "" {
		title = fmt.Sprintf("Results - %s", flagScoresTeam)
		entries, err = store.TeamEntries(ctx, flagScoresTeam)
	} else {
		entries, err = store.Top(ctx, flagScoresLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		return
	}

	fmt.Println(title)
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No results recorded yet.")
		fmt.Println()
		fmt.Println("Play 'notematch play' to set the pace!")
		return
	}

	fmt.Printf("  %-4s  %-16s  %-6s  %-5s  %-8s  %s\n", "Rank", "Team", "Time", "Moves", "Score", "Date")
	fmt.Printf("  %-4s  %-16s  %-6s  %-5s  %-8s  %s\n", "----", "----", "----", "-----", "-----", "----")
	for i, e := range entries {
		fmt.Printf("  %-4d  %-16s  %-6s  %-5d  %-8.2f  %s\n",
			i+1, e.TeamID, fmt.Sprintf("%d:%02d", e.TimeTaken/60, e.TimeTaken%60), e.Moves, e.Score,
			e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if st, err := store.Stats(ctx); err == nil && st.Games > 0 {
		fmt.Printf("Games: %d  Teams: %d  Best: %.2f  Average: %.2f s/move, %.1f moves\n",
			st.Games, st.Teams, st.BestScore, st.AvgScore, st.AvgMoves)
	}
}

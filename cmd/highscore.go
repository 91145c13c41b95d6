package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/they4kman/minefield/highscore"
)

var highscoreCmd = &cobra.Command{
	Use:   "highscore",
	Short: "Show or reset the stored high score",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := highscore.Open(storeURI)
		if err != nil {
			return err
		}
		defer highscore.Close(store)

		score, err := highscore.Load(cmd.Context(), store)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), score)
		return nil
	},
}

var highscoreResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set the stored high score back to zero",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := highscore.Open(storeURI)
		if err != nil {
			return err
		}
		defer highscore.Close(store)

		if err := highscore.Save(cmd.Context(), store, 0); err != nil {
			return err
		}
		log.Info("high score reset")
		return nil
	},
}

func init() {
	highscoreCmd.AddCommand(highscoreResetCmd)
}

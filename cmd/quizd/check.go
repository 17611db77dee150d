package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the quiz directory and report problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		c, diags, err := quiz.NewDirLoader(cfg.QuizDir).Load(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, d := range diags {
			fmt.Fprintln(out, d)
		}
		for _, name := range c.Names() {
			def, _ := c.Lookup(name)
			fmt.Fprintf(out, "%s: %d questions\n", name, len(def.Questions))
		}
		if c.Len() == 0 {
			return fmt.Errorf("no usable quizzes in %s", cfg.QuizDir)
		}
		if strict, _ := cmd.Flags().GetBool("strict"); strict && len(diags) > 0 {
			return fmt.Errorf("%d problems found", len(diags))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("quiz-dir", "", "Quiz directory (overrides QUIZ_DIR)")
	checkCmd.Flags().Bool("strict", false, "Fail when any diagnostic is reported")
}

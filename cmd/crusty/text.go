package main

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"crusty-text/internal/ingest"
	"crusty-text/internal/summary"
	"crusty-text/internal/textbuf"
	"crusty-text/internal/wordfreq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) wordsCmd() *cobra.Command {
	var top int
	var create bool

	cmd := &cobra.Command{
		Use:   "words [file]",
		Short: "Print the most frequent words of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			read := ingest.ReadAll
			if create {
				read = ingest.ReadOrCreate
			}
			buf, err := read(ingest.DirSource{}, args[0])
			if err != nil {
				if errors.Is(err, ingest.ErrNotFound) {
					a.logger.Warn("File missing, pass --create to start an empty one", zap.String("file", args[0]))
				}
				return err
			}

			if !cmd.Flags().Changed("top") {
				top = a.cfg.TopWords
			}
			words := wordfreq.CountBuffer(buf)
			out := cmd.OutOrStdout()
			for _, e := range words.Top(top) {
				fmt.Fprintf(out, "%d\t%s\n", e.Count, e.Token)
			}
			a.logger.Debug("Counted words",
				zap.String("file", args[0]),
				zap.Int("total", words.Total()),
				zap.Int("distinct", len(words)))
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "Number of words to print (0 for all)")
	cmd.Flags().BoolVar(&create, "create", false, "Create the file if it does not exist")
	return cmd
}

func (a *app) lastCmd() *cobra.Command {
	var delim string

	cmd := &cobra.Command{
		Use:   "last [file]",
		Short: "Print the last token of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, size := utf8.DecodeRuneInString(delim)
			if size == 0 || size != len(delim) {
				return fmt.Errorf("delimiter must be a single character, got %q", delim)
			}

			buf, err := ingest.ReadAll(ingest.DirSource{}, args[0])
			if err != nil {
				return err
			}
			v := buf.Borrow()
			defer v.Release()

			fmt.Fprintln(cmd.OutOrStdout(), textbuf.LastToken(v, r))
			return nil
		},
	}
	cmd.Flags().StringVar(&delim, "delim", " ", "Token delimiter")
	return cmd
}

func (a *app) longerCmd() *cobra.Command {
	var announce string

	cmd := &cobra.Command{
		Use:   "longer [a] [b]",
		Short: "Print the longer of two strings (the second wins ties)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, second := textbuf.New(args[0]), textbuf.New(args[1])
			x, y := first.Borrow(), second.Borrow()
			defer x.Release()
			defer y.Release()

			out := cmd.OutOrStdout()
			var got textbuf.View
			if announce != "" {
				var err error
				if got, err = textbuf.LongerWithAnnouncement(out, x, y, announce); err != nil {
					return err
				}
			} else {
				got = textbuf.Longer(x, y)
			}
			fmt.Fprintln(out, got)
			return nil
		},
	}
	cmd.Flags().StringVar(&announce, "announce", "", "Announcement to print first")
	return cmd
}

func (a *app) notifyCmd() *cobra.Command {
	var recommend bool

	cmd := &cobra.Command{
		Use:   "notify [records.yaml]",
		Short: "Print a notification for every record in a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := ingest.ReadAll(ingest.DirSource{}, args[0])
			if err != nil {
				return err
			}
			records, err := summary.NewRegistry().Decode([]byte(buf.String()))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, line := range summary.NotifyAll(records) {
				fmt.Fprintln(out, line)
			}
			if recommend {
				for _, rec := range records {
					if r, ok := rec.(summary.Recommendable); ok {
						fmt.Fprintln(out, summary.Recommend(r))
					}
				}
			}
			a.logger.Debug("Rendered notifications", zap.Int("records", len(records)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&recommend, "recommend", false, "Also print recommendations for records that have a title")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
	"github.com/deepankarm/fieldstream/pkg/llmstream"
)

func newExtractCmd(a *app) *cobra.Command {
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "extract [FILE]",
		Short: "Stream the field of a saved or piped model output",
		Long: `Extract reads model output from FILE, or standard input when FILE is
omitted or "-", and writes the field's text to standard output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer f.Close()
				in = f
			}
			if chunkSize <= 0 {
				chunkSize = a.cfg.Server.ChunkSize
			}
			return a.extract(cmd, llmstream.FromReader(in, chunkSize))
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "bytes per chunk (default from config)")
	return cmd
}

func (a *app) extract(cmd *cobra.Command, src fieldstream.TextStream) error {
	opts, err := a.streamOptions()
	if err != nil {
		return err
	}

	s := fieldstream.Extract(src, opts...)
	out := cmd.OutOrStdout()
	for {
		text, err := s.Next(cmd.Context())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, text); err != nil {
			return err
		}
	}

	st := s.Stats()
	a.logger.Info("extraction finished",
		zap.Stringer("mode", st.Mode),
		zap.Int("chunks", st.Chunks),
		zap.Int("deltas", st.Deltas),
		zap.Int("resyncs", st.Resyncs),
		zap.Bool("truncated", st.Truncated),
	)
	return nil
}

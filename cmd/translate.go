package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/global"
	"github.com/zasai/zas-translate/languages"
)

func newTranslateCmd() *cobra.Command {
	var (
		from   string
		to     []string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "translate <file.html>",
		Short: "Translate an HTML file from the command line",
		Long: `Translate an HTML file into one or more languages using the configured
providers. With a single target and no --out the result is written to stdout,
otherwise every translation is written to <out>/<name>.<lang>.html.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.EqualFold(from, "auto") && !languages.IsSupported(from) {
				return fmt.Errorf("unsupported source language %q", from)
			}
			targets, err := languages.ValidateTargets(to)
			if err != nil {
				return err
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			global.RedisDB = config.OpenRedis(cfg)
			engine, chain, err := newEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer chain.Close()

			results, err := engine.TranslateAll(cmd.Context(), string(src), from, targets)
			if err != nil {
				return err
			}

			if len(results) == 1 && outDir == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), results[0].Translated)
				return err
			}
			if outDir == "" {
				outDir = filepath.Dir(args[0])
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			for _, r := range results {
				path := filepath.Join(outDir, fmt.Sprintf("%s.%s.html", base, r.Code))
				if err := os.WriteFile(path, []byte(r.Translated), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d segments (%d cached) -> %s\n", r.Code, r.Segments, r.Cached, path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "auto", "source language code")
	cmd.Flags().StringSliceVarP(&to, "to", "t", nil, "target language codes, comma separated")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

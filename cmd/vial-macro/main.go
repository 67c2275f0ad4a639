package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ObiWanKeoni/vial-gui/internal/layout"
	"github.com/ObiWanKeoni/vial-gui/pkg/vialmacro"
)

var (
	rootCmd = &cobra.Command{
		Use:   "vial-macro",
		Short: "Inspect and transfer keyboard macro buffers",
		Long:  "vial-macro decodes, encodes and syncs the macro buffer of Vial keyboards.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	decodeCmd = &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decode a hex dump of a macro buffer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := vialmacro.Options{Protocol: protocolVersion, Count: macroCount}
			ctx := cmd.Context()
			if len(args) == 0 {
				return runInteractive(ctx, opts)
			}
			return runDecode(ctx, opts, args[0])
		},
	}

	encodeCmd = &cobra.Command{
		Use:   "encode <layout-file>",
		Short: "Encode a macro layout file to a hex buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			macros, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			opts := vialmacro.Options{Protocol: protocolVersion, Count: macroCount}
			data, err := vialmacro.EncodeLayout(cmd.Context(), macros, opts)
			if err != nil {
				return err
			}
			fmt.Println(strings.ToUpper(hex.EncodeToString(data)))
			return nil
		},
	}

	protocolVersion string
	macroCount      int
	verbose         bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&protocolVersion, "protocol", "", "macro protocol version (1 or 2, default 2)")
	rootCmd.PersistentFlags().IntVar(&macroCount, "count", 0, "device macro count (0 derives it from the input)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(decodeCmd, encodeCmd, dumpCmd, restoreCmd)
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}

func runInteractive(ctx context.Context, opts vialmacro.Options) error {
	scanner := bufio.NewScanner(os.Stdin)
	logrus.Info("vial-macro decode mode. Paste a hex macro buffer and press Enter (Ctrl+D to exit).")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := runDecode(ctx, opts, line); err != nil {
			logrus.WithError(err).Error("failed to decode macro buffer")
		}
	}
	return scanner.Err()
}

func runDecode(ctx context.Context, opts vialmacro.Options, raw string) error {
	result, err := vialmacro.DecodeHexWithOptions(ctx, raw, opts)
	if err != nil {
		return err
	}
	fmt.Println(result.String())
	return nil
}

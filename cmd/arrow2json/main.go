// Command arrow2json prints the rows of an Arrow IPC file or stream as
// JSON documents, one per line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/softwareheritage/ar-row-go/arrowjson"
)

var rootCmd = &cobra.Command{
	Use:     "arrow2json [file]",
	Short:   "Render Arrow record batches as line-delimited JSON",
	Example: "arrow2json graph.arrow\n  orc-to-arrow export.orc | arrow2json",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return convertStream(os.Stdin, os.Stdout)
		}
		return convertFile(args[0], os.Stdout)
	},
}

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		level.Error(logger).Log("msg", "conversion failed", "err", err)
		os.Exit(1)
	}
}

// convertFile reads the IPC file format, which carries a footer and
// random-access record index.
func convertFile(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fr, err := ipc.NewFileReader(f)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if err := arrowjson.Write(w, rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// convertStream reads the footer-less IPC stream format, as produced by
// pipes.
func convertStream(r io.Reader, w io.Writer) error {
	sr, err := ipc.NewReader(r)
	if err != nil {
		return err
	}
	defer sr.Release()

	for sr.Next() {
		if err := arrowjson.Write(w, sr.Record()); err != nil {
			return err
		}
	}
	return sr.Err()
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dfxmlgo/dfxml"
)

var (
	catCompact bool
	catJSON    bool
)

var catCmd = &cobra.Command{
	Use:   "cat FILE",
	Short: "Normalize a DFXML document to stdout",
	Long: `cat decodes a DFXML document and re-encodes it in canonical schema
order. With --json it emits one JSON object per file record instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := dfxml.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		if catJSON {
			return dfxml.ExportJSONLines(os.Stdout, r)
		}

		doc, err := dfxml.Parse(r)
		if err != nil {
			return err
		}
		logger.Debug("parsed document",
			zap.String("path", args[0]),
			zap.String("version", doc.Version))

		var opts []dfxml.EncodeOption
		if catCompact {
			opts = append(opts, dfxml.Compact())
		}
		return dfxml.NewEncoder(os.Stdout, opts...).Encode(doc)
	},
}

func init() {
	catCmd.Flags().BoolVar(&catCompact, "compact", false, "emit without whitespace")
	catCmd.Flags().BoolVar(&catJSON, "json", false, "emit file records as JSON Lines")
	rootCmd.AddCommand(catCmd)
}

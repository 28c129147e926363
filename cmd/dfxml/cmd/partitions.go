package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dfxmlgo/dfxml"
)

var partitionsCmd = &cobra.Command{
	Use:   "partitions FILE",
	Short: "List the storage layout of a DFXML document",
	Long: `partitions streams a DFXML document and prints one line per disk
image, partition system, partition and volume, indented by nesting depth.
File records are not loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := dfxml.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		defer w.Flush()

		depth := 0
		dec := dfxml.NewDecoder(r)
		for {
			ev, err := dec.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			switch ev.Kind {
			case dfxml.DiskImageOpened, dfxml.PartitionSystemOpened,
				dfxml.PartitionOpened, dfxml.VolumeOpened:
				printLayoutLine(w, depth, ev.Node)
				depth++
			case dfxml.DiskImageClosed, dfxml.PartitionSystemClosed,
				dfxml.PartitionClosed, dfxml.VolumeClosed:
				depth--
			case dfxml.DocumentClosed:
				return nil
			}
		}
	},
}

func printLayoutLine(w *tabwriter.Writer, depth int, n dfxml.Node) {
	pad := ""
	for i := 0; i < depth; i++ {
		pad += "  "
	}
	detail := ""
	switch v := n.(type) {
	case *dfxml.DiskImage:
		detail = v.ImageFilename
	case *dfxml.PartitionSystem:
		detail = v.PSType
	case *dfxml.Partition:
		if v.PartitionOffset != nil {
			detail = fmt.Sprintf("offset=%d", *v.PartitionOffset)
		}
	case *dfxml.Volume:
		detail = v.FTypeStr
		if v.PartitionOffset != nil {
			detail = fmt.Sprintf("%s offset=%d", detail, *v.PartitionOffset)
		}
	}
	fmt.Fprintf(w, "%s%s\t%s\n", pad, n.Kind(), detail)
}

func init() {
	rootCmd.AddCommand(partitionsCmd)
}

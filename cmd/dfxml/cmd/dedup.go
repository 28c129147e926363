package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dfxmlgo/dfxml"
)

var dedupHash string

var dedupCmd = &cobra.Command{
	Use:   "dedup FILE",
	Short: "Report files sharing a hash digest",
	Long: `dedup streams the file records of a DFXML document, groups them by
the chosen hash digest, and prints each group that holds more than one
file. Records without the chosen digest are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ht, err := dfxml.ParseHashType(dedupHash)
		if err != nil {
			return err
		}
		r, err := dfxml.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		groups := map[string][]string{}
		skipped := 0
		err = dfxml.ParseFiles(r, func(f *dfxml.File) error {
			digest := f.Hashes.Get(ht)
			if digest == "" {
				skipped++
				return nil
			}
			groups[digest] = append(groups[digest], f.Filename)
			return nil
		})
		if err != nil {
			return err
		}
		logger.Debug("grouped file records",
			zap.Int("groups", len(groups)),
			zap.Int("skipped", skipped))

		digests := make([]string, 0, len(groups))
		for digest, names := range groups {
			if len(names) > 1 {
				digests = append(digests, digest)
			}
		}
		sort.Strings(digests)
		for _, digest := range digests {
			fmt.Printf("%s\n", digest)
			for _, name := range groups[digest] {
				fmt.Printf("  %s\n", name)
			}
		}
		return nil
	},
}

func init() {
	dedupCmd.Flags().StringVar(&dedupHash, "hash", "md5", "hash algorithm to group by")
	rootCmd.AddCommand(dedupCmd)
}

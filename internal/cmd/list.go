package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/texture"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered textures",
	Long:  "List every registered texture composer with its display name and default parameters.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("params", false, "Show default parameters for each texture")

	if err := viper.BindPFlag("list.params", listCmd.Flags().Lookup("params")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func runList(cmd *cobra.Command, args []string) error {
	showParams := viper.GetBool("list.params")

	for _, name := range texture.Names() {
		def, ok := texture.Lookup(name)
		if !ok {
			continue
		}

		display := ""
		if b, err := params.Bind(def.Defaults, nil); err == nil {
			display = b.Meta("$name")
		}
		animated := ""
		if tex, err := def.Build(nil); err == nil && tex.Time != nil {
			animated = " (animated)"
		}
		fmt.Printf("%-18s %s%s\n", name, display, animated)

		if showParams {
			keys := make([]string, 0, len(def.Defaults))
			for key := range def.Defaults {
				if strings.HasPrefix(key, params.MetaSigil) {
					continue
				}
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Printf("    %-16s %v\n", key, def.Defaults[key])
			}
		}
	}
	return nil
}

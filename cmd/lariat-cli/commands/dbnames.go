package commands

import (
	"log"

	"lariat/cmd/lariat-cli/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dbnamesCmd)
	rootCmd.AddCommand(layoutsCmd)
}

var dbnamesCmd = &cobra.Command{
	Use:   "dbnames",
	Short: "Lists the databases available for XML publishing.",
	Run: func(cmd *cobra.Command, args []string) {
		names, err := client.DatabaseNames(cmd.Context())
		if err != nil {
			log.Fatal(err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Database"})
		for _, name := range names {
			t.AppendRow(table.Row{name})
		}
		t.Render()
	},
}

var layoutsCmd = &cobra.Command{
	Use:   "layouts <db>",
	Short: "Lists the layouts of a database.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		names, err := client.LayoutNames(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Layout"})
		for _, name := range names {
			t.AppendRow(table.Row{name})
		}
		t.Render()
	},
}

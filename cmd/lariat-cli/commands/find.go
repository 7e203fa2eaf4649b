package commands

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"lariat/cmd/lariat-cli/utils"
	"lariat/lib/fmquery"
	"lariat/lib/fmxml"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	flagWhere []string
	flagSort  []string
	flagMax   int
	flagSkip  int
)

func init() {
	findCmd.Flags().StringArrayVar(&flagWhere, "where", nil, "filter as field=op=value (op: eq, neq, cn, bw, ew, gt, gte, lt, lte)")
	findCmd.Flags().StringArrayVar(&flagSort, "sort", nil, "sort as field or field:descend")
	findCmd.Flags().IntVar(&flagMax, "max", 0, "maximum number of records")
	findCmd.Flags().IntVar(&flagSkip, "skip", 0, "number of records to skip")
	rootCmd.AddCommand(findCmd)
}

// buildFindQuery renders the find flags into a wire query against an
// arbitrary layout, without requiring a model type.
func buildFindQuery(db, layout string) (*fmquery.Query, error) {
	command := "-findall"
	if len(flagWhere) > 0 {
		command = "-find"
	}

	query := fmquery.New(command)
	query.SetParam("-db", db)
	query.SetParam("-lay", layout)

	for _, where := range flagWhere {
		parts := strings.SplitN(where, "=", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid --where %q, expected field=op=value", where)
		}
		field, op, value := parts[0], parts[1], parts[2]
		query.SetFieldParam(field, value)
		query.SetFieldParam(field+".op", op)
	}

	for i, s := range flagSort {
		field, order := s, "ascend"
		if name, o, found := strings.Cut(s, ":"); found {
			field, order = name, o
		}
		query.SetParam(fmt.Sprintf("-sortfield.%d", i+1), field)
		query.SetParam(fmt.Sprintf("-sortorder.%d", i+1), order)
	}

	if flagMax > 0 {
		query.SetParam("-max", flagMax)
	}
	if flagSkip > 0 {
		query.SetParam("-skip", flagSkip)
	}

	return query, nil
}

// columnOrder collects every field name appearing in the result, sorted,
// so sparse records still line up.
func columnOrder(records []fmxml.Record) []string {
	seen := map[string]bool{}
	var columns []string
	for _, record := range records {
		for _, field := range record.Fields {
			if !seen[field.Name] {
				seen[field.Name] = true
				columns = append(columns, field.Name)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

var findCmd = &cobra.Command{
	Use:   "find <db> <layout>",
	Short: "Finds records on a layout and prints them as a table.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		query, err := buildFindQuery(args[0], args[1])
		if err != nil {
			log.Fatal(err)
		}

		records, _, err := client.RunQuery(cmd.Context(), query)
		if err != nil {
			log.Fatal(err)
		}

		columns := columnOrder(records)

		t := utils.NewTable()
		header := table.Row{"record-id"}
		for _, c := range columns {
			header = append(header, c)
		}
		t.AppendHeader(header)

		for _, record := range records {
			row := table.Row{record.ID}
			for _, c := range columns {
				row = append(row, record.Field(c, ""))
			}
			t.AppendRow(row)
		}
		t.Render()
	},
}

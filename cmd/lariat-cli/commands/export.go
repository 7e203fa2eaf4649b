package commands

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

func init() {
	exportCmd.Flags().StringArrayVar(&flagWhere, "where", nil, "filter as field=op=value (op: eq, neq, cn, bw, ew, gt, gte, lt, lte)")
	exportCmd.Flags().IntVar(&flagMax, "max", 0, "maximum number of records")
	exportCmd.Flags().IntVar(&flagSkip, "skip", 0, "number of records to skip")
	rootCmd.AddCommand(exportCmd)
}

// quoteIdent quotes a layout/field name as a sqlite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var exportCmd = &cobra.Command{
	Use:   "export <db> <layout> <sqlite-file>",
	Short: "Dumps the records of a layout into a local sqlite database, for static site build pipelines.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		db, layout, outfile := args[0], args[1], args[2]

		query, err := buildFindQuery(db, layout)
		if err != nil {
			log.Fatal(err)
		}
		records, metadata, err := client.RunQuery(cmd.Context(), query)
		if err != nil {
			log.Fatal(err)
		}
		if metadata == nil {
			log.Fatal("response contained no layout metadata")
		}

		columns := columnOrder(records)
		if len(columns) == 0 {
			for name := range metadata.Fields {
				columns = append(columns, strings.ToLower(name))
			}
		}

		sqlite, err := sql.Open("sqlite", outfile)
		if err != nil {
			log.Fatal(err)
		}
		defer sqlite.Close()

		columnDefs := []string{"record_id INTEGER PRIMARY KEY", "mod_id INTEGER"}
		for _, c := range columns {
			columnDefs = append(columnDefs, quoteIdent(c)+" TEXT")
		}
		schema := fmt.Sprintf(
			"DROP TABLE IF EXISTS %s;\nCREATE TABLE %s (%s);",
			quoteIdent(layout), quoteIdent(layout), strings.Join(columnDefs, ", "),
		)
		_, err = sqlite.Exec(schema)
		if err != nil {
			log.Fatal(err)
		}

		placeholders := make([]string, 0, len(columns)+2)
		insertCols := []string{"record_id", "mod_id"}
		for _, c := range columns {
			insertCols = append(insertCols, quoteIdent(c))
		}
		for range insertCols {
			placeholders = append(placeholders, "?")
		}
		insert := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(layout),
			strings.Join(insertCols, ", "),
			strings.Join(placeholders, ", "),
		)

		tx, err := sqlite.Begin()
		if err != nil {
			log.Fatal(err)
		}
		for _, record := range records {
			row := []any{record.ID, record.ModID}
			for _, c := range columns {
				row = append(row, record.Field(c, ""))
			}
			_, err = tx.Exec(insert, row...)
			if err != nil {
				tx.Rollback()
				log.Fatal(err)
			}
		}
		if err := tx.Commit(); err != nil {
			log.Fatal(err)
		}

		slog.Info("exported records", "layout", layout, "count", len(records), "file", outfile)
	},
}

// CLI tool to bulk-load the food catalog from a CSV file.
// Expected columns: category, description, kcal, protein_g, carbs_g, fat_g
// (one header row, nutritional values per 100 g).
// Usage: go run ./cmd/seed-foods path/to/foods.csv (from the repo root)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: seed-foods <foods.csv>\n")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading CSV: %v\n", err)
		os.Exit(1)
	}
	if len(records) < 2 {
		fmt.Fprintf(os.Stderr, "No data rows in %s\n", os.Args[1])
		os.Exit(1)
	}

	// Skip the header row; fail on the first malformed line rather than
	// loading a partial catalog.
	rows := make([][]interface{}, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != 6 {
			fmt.Fprintf(os.Stderr, "Line %d: expected 6 columns, got %d\n", i+2, len(rec))
			os.Exit(1)
		}
		vals := make([]float64, 4)
		for j, raw := range rec[2:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				fmt.Fprintf(os.Stderr, "Line %d: invalid numeric value %q\n", i+2, raw)
				os.Exit(1)
			}
			vals[j] = v
		}
		rows = append(rows, []interface{}{rec[0], rec[1], vals[0], vals[1], vals[2], vals[3]})
	}

	count, err := conn.CopyFrom(ctx,
		pgx.Identifier{"foods"},
		[]string{"category", "description", "kcal", "protein_g", "carbs_g", "fat_g"},
		pgx.CopyFromRows(rows))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading foods: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d food(s) loaded.\n", count)
}

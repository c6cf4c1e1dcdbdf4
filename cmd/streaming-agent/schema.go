package main

import (
	"github.com/spf13/cobra"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the introspected catalog schema",
	Long: `Schema connects to the catalog database and prints the schema
description the agent embeds in SQL generation prompts: every public
table with its columns, types, and foreign key relationships.`,
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pool, err := catalog.Open(ctx, appConfig.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	description, err := catalog.NewIntrospector(pool).Describe(ctx)
	if err != nil {
		return err
	}

	cmd.Println(description)
	return nil
}

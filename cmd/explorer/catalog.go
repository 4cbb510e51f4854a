package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pokefinder-cloud/internal/explorer"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Page through a catalog collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		source, _ := cmd.Flags().GetString("source")
		page, _ := cmd.Flags().GetInt("page")

		store, err := explorer.NewEntityListStore(client, newLogger())
		if err != nil {
			return err
		}
		provenance := explorer.Provenance(strings.ToUpper(source))
		if err := store.LoadPage(cmd.Context(), provenance, page); err != nil {
			return err
		}
		collection := store.Collection(provenance)
		fmt.Printf("page %d of %d (%d entities)\n", collection.Page, collection.TotalPages(), collection.Count)
		printEntities(collection.Results)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search by name, type or category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		store, err := explorer.NewEntityListStore(client, newLogger())
		if err != nil {
			return err
		}
		if err := store.Query(cmd.Context(), args[0]); err != nil {
			return err
		}
		results := store.SearchResults()
		if len(results) == 0 {
			fmt.Println("no matches")
			return nil
		}
		printEntities(results)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one entity in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		entity, err := client.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printEntityDetail(entity)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an entity from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle an entity's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		entity, err := client.ToggleFavorite(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		state := "unfavorited"
		if entity.IsFavorite {
			state = "favorited"
		}
		fmt.Printf("%s %s\n", state, entity.Name)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Bulk-import entities from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		count, err := client.UploadCSV(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("imported %d entities\n", count)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Ingest entities from the upstream catalog API",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		count, err := client.FetchFromAPI(cmd.Context(), limit)
		if err != nil {
			return err
		}
		fmt.Printf("fetched %d entities\n", count)
		return nil
	},
}

func init() {
	listCmd.Flags().String("source", "CSV", "collection to list (CSV or API)")
	listCmd.Flags().Int("page", 1, "page number")
	fetchCmd.Flags().Int("limit", 0, "maximum entities to ingest")
	rootCmd.AddCommand(listCmd, searchCmd, getCmd, deleteCmd, favoriteCmd, importCmd, fetchCmd)
}

func printEntities(entities []explorer.Entity) {
	for _, entity := range entities {
		location := entity.LocationName
		if location == "" && entity.HasCoordinate() {
			location = fmt.Sprintf("%.4f, %.4f", entity.Coordinate.Latitude, entity.Coordinate.Longitude)
		}
		favorite := " "
		if entity.IsFavorite {
			favorite = "*"
		}
		fmt.Printf("%s %-8s %-16s %-12s %s\n", favorite, entity.ID, entity.Name, entity.TypePrimary, location)
	}
}

func printEntityDetail(entity *explorer.Entity) {
	fmt.Printf("%s (%s)\n", entity.Name, entity.ID)
	types := entity.TypePrimary
	if entity.TypeSecondary != "" {
		types += "/" + entity.TypeSecondary
	}
	fmt.Printf("  type:      %s\n", types)
	if entity.Category != "" {
		fmt.Printf("  category:  %s\n", entity.Category)
	}
	if entity.HasCoordinate() {
		fmt.Printf("  location:  %.4f, %.4f", entity.Coordinate.Latitude, entity.Coordinate.Longitude)
		if entity.LocationName != "" {
			fmt.Printf(" (%s)", entity.LocationName)
		}
		fmt.Println()
	}
	if len(entity.Moves) > 0 {
		fmt.Printf("  moves:     %s\n", strings.Join(entity.Moves, ", "))
	}
	if len(entity.Abilities) > 0 {
		fmt.Printf("  abilities: %s\n", strings.Join(entity.Abilities, ", "))
	}
	for stat, value := range entity.Stats {
		fmt.Printf("  %-9s %d\n", stat+":", value)
	}
	fmt.Printf("  source:    %s\n", entity.Source)
	if entity.IsFavorite {
		fmt.Println("  favorite")
	}
}

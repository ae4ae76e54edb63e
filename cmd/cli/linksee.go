package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modera/catalog-service/internal/database"
	"github.com/modera/catalog-service/internal/linker"
)

// linkSeeAllCmd represents the link-see-all command
var linkSeeAllCmd = &cobra.Command{
	Use:   "link-see-all <categoryId>",
	Short: "Link sibling leaf category products to a See All category",
	Long: `Attach every product of the active sibling leaf categories to the given
"See All" category, skipping links that already exist.`,
	Example: `  catalog-service link-see-all 9b8a7c6d-1234-4abc-8def-001122334455`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLinkSeeAll,
}

func init() {
	rootCmd.AddCommand(linkSeeAllCmd)
}

func runLinkSeeAll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	categoryID := args[0]

	store := database.NewStore(database.Pool())
	lnk := linker.New(store, *logger)

	result, err := lnk.LinkSiblingsToSeeAll(ctx, categoryID)
	if err != nil {
		if errors.Is(err, linker.ErrCategoryNotFound) {
			return fmt.Errorf("category not found: %s", categoryID)
		}
		return fmt.Errorf("see-all linking failed: %w", err)
	}

	logger.Info().
		Int("siblings", result.SiblingCategoriesProcessed).
		Int("linked", result.TotalProductsLinked).
		Msg("See All linking finished")

	return nil
}

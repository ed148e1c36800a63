package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"quizmaster/internal/config"
	"quizmaster/internal/domain"
)

// NewGrantCmd adds cheat sheets to a player's inventory.
func NewGrantCmd(configPath *string) *cobra.Command {
	var (
		player string
		rarity int
		count  int
	)
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant cheat sheets to a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if player == "" || count <= 0 {
				return fmt.Errorf("--player and a positive --count are required")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			service, cleanup, err := buildService(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			delta := domain.InventoryDelta{Rarity: domain.Rarity(rarity), Delta: count}
			if err := service.ApplyInventory(ctx, player, delta); err != nil {
				return err
			}
			inv, err := service.Inventory(ctx, player)
			if err != nil {
				return err
			}
			log.Printf("%s now holds %d cheat sheets of rarity %d", player, inv[delta.Rarity], rarity)
			return nil
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "player id")
	cmd.Flags().IntVar(&rarity, "rarity", int(domain.RarityCommon), "cheat sheet rarity")
	cmd.Flags().IntVar(&count, "count", 1, "number of cheat sheets")
	return cmd
}

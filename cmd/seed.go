package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"gaspos.GO/config"
	catalogEntity "gaspos.GO/model/entity/catalog"
	counterpartyEntity "gaspos.GO/model/entity/counterparty"
	catalogRepo "gaspos.GO/model/repository/catalog"
	counterpartyRepo "gaspos.GO/model/repository/counterparty"
	inventoryRepo "gaspos.GO/model/repository/inventory"
)

var seedStore uint

var seedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Seed global brands and a demo store with stock and counterparties",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}

		brandNames := []string{"Bashundhara", "Omera", "Jamuna", "Beximco", "TotalGaz"}
		brandIDs := make([]uint, 0, len(brandNames))
		for _, name := range brandNames {
			var brand catalogEntity.Brand
			err := db.Where(catalogEntity.Brand{Name: name, Origin: catalogEntity.OriginGlobal}).
				FirstOrCreate(&brand).Error
			if err != nil {
				fmt.Printf("Seeding brand %s failed: %v\n", name, err)
				os.Exit(1)
			}
			brandIDs = append(brandIDs, brand.BrandID)
		}
		fmt.Printf("Seeded %d global brands\n", len(brandIDs))

		catalog := catalogRepo.NewCatalogRepository(db)
		if err := catalog.ReplaceSubscriptions(seedStore, brandIDs[:3]); err != nil {
			fmt.Printf("Subscribing store %d failed: %v\n", seedStore, err)
			os.Exit(1)
		}

		inventory := inventoryRepo.NewInventoryRepository(db)
		for _, brandID := range brandIDs[:3] {
			for _, size := range []string{"12kg", "35kg"} {
				row, err := catalog.ResolveRow(seedStore, brandID, "cylinder",
					map[string]interface{}{"size": size, "valve": "22mm"})
				if err != nil {
					fmt.Printf("Resolving row failed: %v\n", err)
					os.Exit(1)
				}
				_, err = inventory.AdjustCounts(nil, row.RowID, inventoryRepo.CountsDelta{Full: 20, Empty: 5})
				if err != nil {
					fmt.Printf("Stocking row %d failed: %v\n", row.RowID, err)
					os.Exit(1)
				}
				_, err = inventory.SetPrices(seedStore, row.RowID, inventoryRepo.PriceUpdate{
					BuyPackaged:  ptr(decimal.NewFromInt(2600)),
					SellPackaged: ptr(decimal.NewFromInt(3000)),
					BuyRefill:    ptr(decimal.NewFromInt(1200)),
					SellRefill:   ptr(decimal.NewFromInt(1450)),
				})
				if err != nil {
					fmt.Printf("Pricing row %d failed: %v\n", row.RowID, err)
					os.Exit(1)
				}
			}
		}
		fmt.Printf("Seeded cylinder rows with stock and prices (%s)\n", config.AppConfig.Currency)

		counterparties := counterpartyRepo.NewCounterpartyRepository(db)
		demo := []counterpartyEntity.Counterparty{
			{StoreID: seedStore, Kind: counterpartyEntity.KindCustomer, Name: "Walk-in Rahim", Phone: "01711000001"},
			{StoreID: seedStore, Kind: counterpartyEntity.KindShop, Name: "Karim Traders", Phone: "01711000002"},
			{StoreID: seedStore, Kind: counterpartyEntity.KindStaff, Name: "Delivery Staff Alam"},
		}
		for i := range demo {
			if err := counterparties.Create(&demo[i]); err != nil {
				fmt.Printf("Seeding counterparty %s failed: %v\n", demo[i].Name, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Seeded %d counterparties for store %d\n", len(demo), seedStore)
	},
}

func ptr[T any](v T) *T { return &v }

func init() {
	seedCmd.Flags().UintVar(&seedStore, "store", 1, "Store ID to seed")
	rootCmd.AddCommand(seedCmd)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"gaspos.GO/config"
	ledgerEntity "gaspos.GO/model/entity/ledger"
	ledgerRepo "gaspos.GO/model/repository/ledger"
)

var verifyStore uint

var ledgerVerifyCmd = &cobra.Command{
	Use:   "ledger:verify",
	Short: "Replay the settlement log and report arithmetic drift",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		repo := ledgerRepo.NewLedgerRepository(db)

		storeIDs := []uint{verifyStore}
		if verifyStore == 0 {
			storeIDs, err = repo.StoreIDs()
			if err != nil {
				fmt.Printf("Listing stores failed: %v\n", err)
				os.Exit(1)
			}
		}

		var entries, bad int
		for _, storeID := range storeIDs {
			all, err := repo.AllEntries(storeID)
			if err != nil {
				fmt.Printf("Store %d: %v\n", storeID, err)
				os.Exit(1)
			}
			for _, e := range all {
				entries++
				for _, problem := range verifyEntry(&e) {
					bad++
					fmt.Printf("  [drift] store %d entry %s: %s\n", storeID, e.EntryID, problem)
				}
			}

			refs, err := repo.CounterpartyRefs(storeID)
			if err != nil {
				fmt.Printf("Store %d: %v\n", storeID, err)
				os.Exit(1)
			}
			for _, ref := range refs {
				balance, err := repo.ReplayBalance(storeID, ref)
				if err != nil {
					fmt.Printf("Store %d %s/%s: %v\n", storeID, ref.Kind, ref.ID, err)
					continue
				}
				fmt.Printf("  store %d %s %s balance: %s %s\n", storeID, ref.Kind, ref.ID, balance, config.AppConfig.Currency)
			}
		}

		fmt.Printf("\n%d entries verified, %d problems found\n", entries, bad)
		if bad > 0 {
			os.Exit(1)
		}
	},
}

// verifyEntry checks one entry's internal arithmetic: line totals, the
// final/paid/due relation and due sign.
func verifyEntry(e *ledgerEntity.LedgerEntry) []string {
	var problems []string

	lineSum := decimal.Zero
	for _, l := range e.Lines {
		want := l.UnitPrice.Mul(decimal.NewFromInt(l.Qty))
		if !l.LineTotal.Equal(want) {
			problems = append(problems,
				fmt.Sprintf("line %d total %s, want %s", l.Position, l.LineTotal, want))
		}
		lineSum = lineSum.Add(l.LineTotal)
	}

	switch e.Kind {
	case ledgerEntity.KindSale, ledgerEntity.KindPurchase, ledgerEntity.KindReturn:
		if !e.FinalAmount.Equal(lineSum) {
			problems = append(problems,
				fmt.Sprintf("final %s does not match line sum %s", e.FinalAmount, lineSum))
		}
	}

	if !e.FinalAmount.Sub(e.PaidAmount).Equal(e.DueAmount) {
		problems = append(problems,
			fmt.Sprintf("due %s != final %s - paid %s", e.DueAmount, e.FinalAmount, e.PaidAmount))
	}
	if e.Kind == ledgerEntity.KindSale && e.DueAmount.IsNegative() {
		problems = append(problems, fmt.Sprintf("negative due %s on sale", e.DueAmount))
	}
	return problems
}

func init() {
	ledgerVerifyCmd.Flags().UintVar(&verifyStore, "store", 0, "Verify a single store (default all)")
	rootCmd.AddCommand(ledgerVerifyCmd)
}

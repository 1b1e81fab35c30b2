package jobs

import (
	"log"

	"gaspos.GO/config"
	"gaspos.GO/cron"
	ledgerRepo "gaspos.GO/model/repository/ledger"
)

func init() {
	cron.Register("balancereconcilejob", "0 3 * * *", ReconcileBalances)
}

// ReconcileBalances replays every counterparty balance from the ledger and
// drops the cached value so the next read recomputes. Cached balances are
// only ever a read-through front; this job bounds how long a stale entry
// can survive a missed invalidation.
func ReconcileBalances(args ...string) {
	db, err := config.NewDB()
	if err != nil {
		log.Printf("balance reconcile: db: %v", err)
		return
	}
	repo := ledgerRepo.NewLedgerRepository(db)

	storeIDs, err := repo.StoreIDs()
	if err != nil {
		log.Printf("balance reconcile: stores: %v", err)
		return
	}

	var checked, invalidated int
	for _, storeID := range storeIDs {
		refs, err := repo.CounterpartyRefs(storeID)
		if err != nil {
			log.Printf("balance reconcile: store %d refs: %v", storeID, err)
			continue
		}
		for _, ref := range refs {
			cached, err := repo.OutstandingBalance(storeID, ref)
			if err != nil {
				log.Printf("balance reconcile: store %d %s/%s: %v", storeID, ref.Kind, ref.ID, err)
				continue
			}
			replayed, err := repo.ReplayBalance(storeID, ref)
			if err != nil {
				log.Printf("balance reconcile: store %d %s/%s: %v", storeID, ref.Kind, ref.ID, err)
				continue
			}
			checked++
			if !cached.Equal(replayed) {
				log.Printf("balance reconcile: drift store %d %s/%s: cached %s, ledger %s",
					storeID, ref.Kind, ref.ID, cached, replayed)
				repo.InvalidateBalance(storeID, ref)
				invalidated++
			}
		}
	}
	log.Printf("balance reconcile: %d balances checked, %d stale cache entries dropped", checked, invalidated)
}

package workers

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const sweepInterval = 10 * time.Minute

// StartOverdueWorker marks pending tasks past their due date as overdue
// on a fixed interval. It runs for the lifetime of the process.
func StartOverdueWorker(db *pgxpool.Pool) {
	ticker := time.NewTicker(sweepInterval)

	go func() {
		sweepOverdueTasks(db)
		for range ticker.C {
			sweepOverdueTasks(db)
		}
	}()
}

func sweepOverdueTasks(db *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := db.Exec(ctx, `
	UPDATE tasks
	SET status = 'overdue', updated_at = NOW()
	WHERE status = 'pending' AND due_date IS NOT NULL AND due_date < NOW()
	`)
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return
	}

	if n := result.RowsAffected(); n > 0 {
		log.Printf("Overdue sweep: marked %d tasks overdue", n)
	}
}

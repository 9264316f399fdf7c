package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/appetiteclub/pos/internal/auth"
	posmongo "github.com/appetiteclub/pos/internal/mongo"
	"github.com/appetiteclub/pos/internal/occupancy"
	"github.com/appetiteclub/pos/internal/settings"
	"github.com/appetiteclub/pos/pkg"
)

// Reconcile runs one repair pass as the system actor and writes the report
// to out. Table events are published when NATS is reachable.
func Reconcile(ctx context.Context, config *apt.Config, logger apt.Logger, out io.Writer) error {
	cfg := settings.Load(config, logger)

	db, disconnect, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer disconnect()

	var publisher events.Publisher
	if natsURL := config.GetStringOrDef("nats.url", ""); natsURL != "" {
		pub, err := pkg.NewNATSPublisher(natsURL)
		if err != nil {
			logger.Error("cannot connect to NATS, table events will not be published", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	reconciler := occupancy.NewReconciler(
		posmongo.NewTableRepo(db),
		posmongo.NewOrderRepo(db),
		publisher,
		occupancy.Config{StaleAfter: cfg.StaleAfter},
		logger,
	)

	report, err := reconciler.Reconcile(ctx, auth.System())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("cannot write report: %w", err)
	}
	return nil
}

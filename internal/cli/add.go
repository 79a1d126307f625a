package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"tracklite/internal/models"
)

// Add records one entry under the current identity (guest before sign-in)
// and queues a background sync when a scheduler is running.
func (a *App) Add(ctx context.Context) error {
	category, err := GetSimpleText(a.reader, "Category (e.g. water, steps)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if category == "" {
		printlnFn("Category is required")
		return nil
	}

	value, err := GetFloat(a.reader, "Value", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	unit, err := GetSimpleText(a.reader, "Unit (e.g. ml, count)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	l := models.NewEventLog(a.currentOwner(), category, value, unit, time.Now(), "")
	if err := a.store.Logs.Insert(ctx, l); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn(fmt.Sprintf("Recorded %g %s of %s", value, unit, category))

	if a.online && a.schedCancel != nil {
		a.engine.RequestSync()
	}
	return nil
}

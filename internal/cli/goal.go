package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"tracklite/internal/local/goals"
	"tracklite/internal/models"
)

// Goal sets, clears or shows per-category targets.
func (a *App) Goal(ctx context.Context) error {
	action, err := GetSimpleText(a.reader, "Action [set/clear/list]", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	switch strings.ToLower(action) {
	case "set":
		return a.setGoal(ctx)
	case "clear":
		return a.clearGoal(ctx)
	case "list", "":
		return a.listGoals(ctx)
	default:
		printlnFn(fmt.Sprintf("Unknown action: %s", action))
		return nil
	}
}

func (a *App) setGoal(ctx context.Context) error {
	category, err := GetSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	target, err := GetFloat(a.reader, "Target", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	unit, err := GetSimpleText(a.reader, "Unit", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	g := models.NewGoal(a.currentOwner(), category, target, unit)
	if err := a.store.Goals.Set(ctx, g); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn(fmt.Sprintf("Goal for %s set to %g %s", category, target, unit))
	return nil
}

func (a *App) clearGoal(ctx context.Context) error {
	category, err := GetSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := a.store.Goals.SoftDelete(ctx, a.currentOwner(), category); err != nil {
		if errors.Is(err, goals.ErrNotFound) {
			printlnFn("No goal for " + category)
			return nil
		}
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("Goal for " + category + " cleared")
	return nil
}

func (a *App) listGoals(ctx context.Context) error {
	owner := a.currentOwner()
	cats, err := a.store.Goals.Categories(ctx, owner)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(cats) == 0 {
		printlnFn("No goals set")
		return nil
	}
	for _, c := range cats {
		g, err := a.store.Goals.Get(ctx, owner, c)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		printlnFn(fmt.Sprintf("%s: %g %s", g.Category, g.Target, g.Unit))
	}
	return nil
}

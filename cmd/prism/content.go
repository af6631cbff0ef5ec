package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"prismtech.dev/internal/collection"
	"prismtech.dev/internal/models"
	"prismtech.dev/internal/services"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect and reorder content collections",
}

var contentListCmd = &cobra.Command{
	Use:       "list <collection>",
	Short:     "Print a collection in display order",
	Args:      cobra.ExactArgs(1),
	ValidArgs: collectionNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer backend.Close()

		rows, err := listRows(cmd.Context(), reg.Content, args[0])
		if err != nil {
			return err
		}
		return printRows(cmd.OutOrStdout(), rows)
	},
}

var contentMoveCmd = &cobra.Command{
	Use:   "move <collection> <id> <up|down>",
	Short: "Move one entry a place up or down",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		direction, err := parseDirection(args[2])
		if err != nil {
			return err
		}

		backend, reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer backend.Close()

		rows, err := moveRows(cmd.Context(), reg.Content, args[0], args[1], direction)
		if err != nil {
			return err
		}
		return printRows(cmd.OutOrStdout(), rows)
	},
}

var collectionNames = []string{
	services.ServicesCollection,
	services.ProjectsCollection,
	services.PricingCollection,
	services.TeamCollection,
}

func init() {
	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentMoveCmd)
}

// row is one printed line of a collection
type row struct {
	Order int
	ID    string
	Label string
}

func toRows[E any, P collection.Entity[E]](items []E, label func(e *E) string) []row {
	out := make([]row, len(items))
	for i := range items {
		meta := P(&items[i]).Meta()
		out[i] = row{Order: meta.Order, ID: meta.ID, Label: label(&items[i])}
	}
	return out
}

func serviceLabel(s *models.Service) string {
	return s.Title
}

func projectLabel(p *models.Project) string {
	return p.Title + " [" + p.Status + "]"
}

func pricingLabel(t *models.PricingTier) string {
	return fmt.Sprintf("%s (%.2f %s)", t.Name, t.Price, t.Currency)
}

func teamLabel(m *models.TeamMember) string {
	return m.Name + ", " + m.Role
}

func listRows(ctx context.Context, c *services.ContentService, name string) ([]row, error) {
	switch name {
	case services.ServicesCollection:
		items, err := c.Services.List(ctx)
		return toRows[models.Service](items, serviceLabel), err
	case services.ProjectsCollection:
		items, err := c.Projects.List(ctx)
		return toRows[models.Project](items, projectLabel), err
	case services.PricingCollection:
		items, err := c.Pricing.List(ctx)
		return toRows[models.PricingTier](items, pricingLabel), err
	case services.TeamCollection:
		items, err := c.Team.List(ctx)
		return toRows[models.TeamMember](items, teamLabel), err
	default:
		return nil, fmt.Errorf("unknown collection %q (want one of %v)", name, collectionNames)
	}
}

func moveRows(ctx context.Context, c *services.ContentService, name, id string, direction int) ([]row, error) {
	switch name {
	case services.ServicesCollection:
		items, err := c.Services.Move(ctx, id, direction)
		return toRows[models.Service](items, serviceLabel), err
	case services.ProjectsCollection:
		items, err := c.Projects.Move(ctx, id, direction)
		return toRows[models.Project](items, projectLabel), err
	case services.PricingCollection:
		items, err := c.Pricing.Move(ctx, id, direction)
		return toRows[models.PricingTier](items, pricingLabel), err
	case services.TeamCollection:
		items, err := c.Team.Move(ctx, id, direction)
		return toRows[models.TeamMember](items, teamLabel), err
	default:
		return nil, fmt.Errorf("unknown collection %q (want one of %v)", name, collectionNames)
	}
}

func parseDirection(s string) (int, error) {
	switch s {
	case "up":
		return -1, nil
	case "down":
		return 1, nil
	default:
		return 0, fmt.Errorf("invalid direction %q (want up or down)", s)
	}
}

func printRows(w io.Writer, rows []row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tID\tENTRY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Order, r.ID, r.Label)
	}
	return tw.Flush()
}

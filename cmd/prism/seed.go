package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"prismtech.dev/internal/collection"
	"prismtech.dev/internal/models"
	"prismtech.dev/internal/services"
)

// seedServices defines the starter services page
var seedServices = []models.Service{
	{Title: "Web Applications", Description: "Fast, accessible web apps built on modern stacks.", Icon: "code", Featured: true},
	{Title: "Content Management", Description: "Headless CMS setups your team can actually edit.", Icon: "layout", Featured: true},
	{Title: "Security Reviews", Description: "Threat modelling, audits and hardening for production systems.", Icon: "shield"},
	{Title: "Cloud Operations", Description: "Infrastructure as code, CI/CD and observability.", Icon: "cloud"},
}

// seedProjects covers one project per category
var seedProjects = []models.Project{
	{Title: "Booking Portal", Description: "Self-service booking for a regional clinic network.", Category: models.CategoryWebApp, Status: models.StatusCompleted, Featured: true, ClientName: "Northwind Health"},
	{Title: "Newsroom CMS", Description: "Editorial workflow and publishing for a local paper.", Category: models.CategoryCMS, Status: models.StatusInProgress, Featured: true, ClientName: "Daily Ledger"},
	{Title: "Payments Audit", Description: "PCI scoping and remediation for an online shop.", Category: models.CategoryCybersecurity, Status: models.StatusCompleted, ClientName: "Fabrikam"},
	{Title: "Platform Migration", Description: "Lift of legacy VMs onto managed containers.", Category: models.CategoryCloud, Status: models.StatusDraft, ClientName: "Contoso"},
}

// seedPricing defines the default pricing table
var seedPricing = []models.PricingTier{
	{
		Name:        "Starter",
		Description: "For small sites getting off the ground.",
		Price:       49,
		Features: []models.Feature{
			{Text: "Up to 5 pages", Included: true},
			{Text: "Contact form", Included: true},
			{Text: "Priority support"},
		},
	},
	{
		Name:        "Growth",
		Description: "For teams that publish every week.",
		Price:       149,
		Popular:     true,
		Featured:    true,
		Features: []models.Feature{
			{Text: "Unlimited pages", Included: true, Highlight: true},
			{Text: "CMS training", Included: true},
			{Text: "Priority support", Included: true},
		},
		AddOns: []models.AddOn{{Name: "Monthly security scan", Price: 29}},
	},
	{
		Name:          "Enterprise",
		Description:   "Custom scope, SLAs and dedicated engineers.",
		BillingPeriod: models.BillingCustom,
		ButtonText:    "Contact Us",
		ButtonLink:    "/contact",
	},
}

// seedTeam defines the starter about page
var seedTeam = []models.TeamMember{
	{Name: "Alex Rivera", Role: "Founder & Lead Engineer", Bio: "Builds the things and answers the emails."},
	{Name: "Sam Chen", Role: "Security Engineer", Bio: "Breaks the things before anyone else can."},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill empty collections with starter content",
	Long: `Creates the starter services, projects, pricing tiers and team members.
Collections that already hold data are skipped.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	backend, reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	c := reg.Content

	steps := []struct {
		name string
		run  func(context.Context) (int, error)
	}{
		{services.ServicesCollection, func(ctx context.Context) (int, error) { return seed(ctx, c.Services, seedServices) }},
		{services.ProjectsCollection, func(ctx context.Context) (int, error) { return seed(ctx, c.Projects, seedProjects) }},
		{services.PricingCollection, func(ctx context.Context) (int, error) { return seed(ctx, c.Pricing, seedPricing) }},
		{services.TeamCollection, func(ctx context.Context) (int, error) { return seed(ctx, c.Team, seedTeam) }},
	}
	for _, step := range steps {
		fmt.Fprintf(out, "Seeding %s...\n", step.name)
		n, err := step.run(ctx)
		if err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
		if n == 0 {
			fmt.Fprintln(out, "  already has content, skipped")
			continue
		}
		fmt.Fprintf(out, "  Created %d entries\n", n)
	}

	fmt.Fprintln(out, "Done!")
	return nil
}

// seed creates items in order when the collection is empty
func seed[E any, P collection.Entity[E]](ctx context.Context, s *collection.Store[E, P], items []E) (int, error) {
	n, err := s.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	for i, item := range items {
		P(&item).Meta().Order = i
		if _, err := s.Create(ctx, item); err != nil {
			return i, err
		}
	}
	return len(items), nil
}
